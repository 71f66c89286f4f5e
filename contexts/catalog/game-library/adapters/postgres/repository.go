package postgresadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
	"improvdb/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) WithinCatalogTransaction(ctx context.Context, fn func(tx ports.CatalogTransaction) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := &Repository{db: tx, logger: r.logger}
		return fn(scoped)
	})
	if err != nil {
		if isRetryableTxFailure(err) {
			return domainerrors.ErrTransactionConflict
		}
		return err
	}
	return nil
}

func (r *Repository) CreateGame(ctx context.Context, game entities.Game) error {
	row := gameModelFromEntity(game)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSlugConflict
		}
		return r.logError("game_library_repo_create_game_failed", err,
			"game_id", row.ID,
			"slug", row.Slug,
		)
	}
	return nil
}

func (r *Repository) GetGame(ctx context.Context, gameID string) (entities.Game, error) {
	var row gameModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(gameID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Game{}, domainerrors.ErrGameNotFound
		}
		return entities.Game{}, r.logError("game_library_repo_get_game_failed", err,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetLiveGameBySlug(ctx context.Context, slug string) (entities.Game, error) {
	var row gameModel
	err := r.db.WithContext(ctx).
		Where("slug = ?", strings.TrimSpace(slug)).
		Where("status = ?", string(entities.StatusActive)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Game{}, domainerrors.ErrGameNotFound
		}
		return entities.Game{}, r.logError("game_library_repo_get_game_by_slug_failed", err,
			"slug", strings.TrimSpace(slug),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SlugInUse(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&gameModel{}).
		Where("slug = ?", strings.TrimSpace(slug)).
		Where("status = ?", string(entities.StatusActive)).
		Count(&count).Error; err != nil {
		return false, r.logError("game_library_repo_slug_in_use_failed", err,
			"slug", strings.TrimSpace(slug),
		)
	}
	return count > 0, nil
}

type gameCursor struct {
	Name   string `json:"name"`
	GameID string `json:"game_id"`
}

func (r *Repository) ListGames(
	ctx context.Context,
	filter ports.GameFilter,
	cursor string,
	pageSize int,
) (ports.GamePage, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	tx := r.db.WithContext(ctx).
		Model(&gameModel{}).
		Where("status = ?", string(entities.StatusActive))

	if len(filter.DurationIDs) > 0 {
		tx = tx.Where("duration_id IN ?", filter.DurationIDs)
	}
	if len(filter.PlayerCountIDs) > 0 {
		tx = tx.Where("player_count_id IN ?", filter.PlayerCountIDs)
	}
	if len(filter.TagIDs) > 0 {
		tx = tx.Where("jsonb_exists_any(tag_ids, ARRAY[?])", filter.TagIDs)
	}

	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return ports.GamePage{}, domainerrors.ErrInvalidInput
		}
		tx = tx.Where("(name, id) > (?, ?)", after.Name, after.GameID)
	}

	var rows []gameModel
	if err := tx.Order("name ASC, date_modified DESC NULLS LAST, id ASC").
		Limit(pageSize + 1).
		Find(&rows).Error; err != nil {
		return ports.GamePage{}, r.logError("game_library_repo_list_games_failed", err)
	}

	page := ports.GamePage{}
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		page.Cursor = encodeCursor(gameCursor{Name: last.Name, GameID: last.ID})
	}
	items := make([]entities.Game, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	page.Items = items
	return page, nil
}

func (r *Repository) ListLiveGames(ctx context.Context) ([]entities.Game, error) {
	var rows []gameModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusActive)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("game_library_repo_list_live_games_failed", err)
	}
	items := make([]entities.Game, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FirstLiveGameFrom(ctx context.Context, fromID string) (entities.Game, bool, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusActive))
	if fromID != "" {
		tx = tx.Where("id >= ?", fromID)
	}

	var row gameModel
	err := tx.Order("id ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Game{}, false, nil
		}
		return entities.Game{}, false, r.logError("game_library_repo_first_live_game_failed", err)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) MarkGameDeleted(ctx context.Context, gameID string, actor string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&gameModel{}).
		Where("id = ?", strings.TrimSpace(gameID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusDeleted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("game_library_repo_mark_game_deleted_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrGameNotFound
	}
	return nil
}

func (r *Repository) CreateTag(ctx context.Context, tag entities.Tag) error {
	row := tagModelFromEntity(tag)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrTransactionConflict
		}
		return r.logError("game_library_repo_create_tag_failed", err, "tag_id", row.ID)
	}
	return nil
}

func (r *Repository) GetTag(ctx context.Context, tagID string) (entities.Tag, error) {
	var row tagModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(tagID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Tag{}, domainerrors.ErrTagNotFound
		}
		return entities.Tag{}, r.logError("game_library_repo_get_tag_failed", err,
			"tag_id", strings.TrimSpace(tagID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListLiveTags(ctx context.Context) ([]entities.Tag, error) {
	var rows []tagModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusActive)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("game_library_repo_list_live_tags_failed", err)
	}
	items := make([]entities.Tag, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkTagDeleted(ctx context.Context, tagID string, actor string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&tagModel{}).
		Where("id = ?", strings.TrimSpace(tagID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusDeleted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("game_library_repo_mark_tag_deleted_failed", result.Error,
			"tag_id", strings.TrimSpace(tagID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTagNotFound
	}
	return nil
}

func (r *Repository) CreateMetadata(ctx context.Context, metadata entities.GameMetadata) error {
	row := metadataModelFromEntity(metadata)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("game_library_repo_create_metadata_failed", err, "metadata_id", row.ID)
	}
	return nil
}

func (r *Repository) GetMetadata(ctx context.Context, metadataID string) (entities.GameMetadata, error) {
	var row metadataModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(metadataID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.GameMetadata{}, domainerrors.ErrMetadataNotFound
		}
		return entities.GameMetadata{}, r.logError("game_library_repo_get_metadata_failed", err,
			"metadata_id", strings.TrimSpace(metadataID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListLiveMetadata(ctx context.Context, metadataType entities.MetadataType) ([]entities.GameMetadata, error) {
	var rows []metadataModel
	if err := r.db.WithContext(ctx).
		Where("type = ?", string(metadataType)).
		Where("status = ?", string(entities.StatusActive)).
		Order("min + max ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("game_library_repo_list_live_metadata_failed", err,
			"type", string(metadataType),
		)
	}
	items := make([]entities.GameMetadata, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkMetadataDeleted(ctx context.Context, metadataID string, actor string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&metadataModel{}).
		Where("id = ?", strings.TrimSpace(metadataID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusDeleted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("game_library_repo_mark_metadata_deleted_failed", result.Error,
			"metadata_id", strings.TrimSpace(metadataID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMetadataNotFound
	}
	return nil
}

func (r *Repository) CreateNote(ctx context.Context, note entities.Note) error {
	row := noteModelFromEntity(note)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("game_library_repo_create_note_failed", err, "note_id", row.ID)
	}
	return nil
}

func (r *Repository) GetNote(ctx context.Context, noteID string) (entities.Note, error) {
	var row noteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(noteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Note{}, domainerrors.ErrNoteNotFound
		}
		return entities.Note{}, r.logError("game_library_repo_get_note_failed", err,
			"note_id", strings.TrimSpace(noteID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPublicNotesByParents(ctx context.Context, parentIDs []string) ([]entities.Note, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var rows []noteModel
	if err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Where("public = ?", true).
		Where("status = ?", string(entities.StatusActive)).
		Order("date_added ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("game_library_repo_list_public_notes_failed", err)
	}
	items := make([]entities.Note, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkNoteDeleted(ctx context.Context, noteID string, actor string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&noteModel{}).
		Where("id = ?", strings.TrimSpace(noteID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusDeleted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("game_library_repo_mark_note_deleted_failed", result.Error,
			"note_id", strings.TrimSpace(noteID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNoteNotFound
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event events.DocumentEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return r.logError("game_library_repo_append_outbox_marshal_failed", err,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	row := outboxModel{
		OutboxID:  event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: event.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("game_library_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("game_library_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("game_library_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTransactionConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "catalog/game-library",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("game library repository operation failed", fields...)
	return err
}

type gameModel struct {
	ID            string                      `gorm:"column:id;primaryKey"`
	Name          string                      `gorm:"column:name"`
	Slug          string                      `gorm:"column:slug"`
	Description   string                      `gorm:"column:description"`
	DurationID    string                      `gorm:"column:duration_id"`
	PlayerCountID string                      `gorm:"column:player_count_id"`
	TagIDs        datatypes.JSONSlice[string] `gorm:"column:tag_ids"`
	Status        string                      `gorm:"column:status"`
	AddedUser     string                      `gorm:"column:added_user"`
	DateAdded     time.Time                   `gorm:"column:date_added"`
	ModifiedUser  string                      `gorm:"column:modified_user"`
	DateModified  *time.Time                  `gorm:"column:date_modified"`
	DeletedUser   string                      `gorm:"column:deleted_user"`
	DateDeleted   *time.Time                  `gorm:"column:date_deleted"`
}

func (gameModel) TableName() string {
	return "games"
}

func gameModelFromEntity(game entities.Game) gameModel {
	row := gameModel{
		ID:            strings.TrimSpace(game.GameID),
		Name:          game.Name,
		Slug:          strings.TrimSpace(game.Slug),
		Description:   game.Description,
		DurationID:    strings.TrimSpace(game.DurationID),
		PlayerCountID: strings.TrimSpace(game.PlayerCountID),
		TagIDs:        datatypes.NewJSONSlice(game.TagIDs),
		Status:        string(game.Status),
		AddedUser:     strings.TrimSpace(game.AddedUser),
		DateAdded:     game.DateAdded.UTC(),
		ModifiedUser:  strings.TrimSpace(game.ModifiedUser),
		DateModified:  normalizeOptionalTime(game.DateModified),
		DeletedUser:   strings.TrimSpace(game.DeletedUser),
		DateDeleted:   normalizeOptionalTime(game.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m gameModel) toEntity() entities.Game {
	return entities.Game{
		GameID:        m.ID,
		Name:          m.Name,
		Slug:          m.Slug,
		Description:   m.Description,
		DurationID:    m.DurationID,
		PlayerCountID: m.PlayerCountID,
		TagIDs:        []string(m.TagIDs),
		Status:        entities.RecordStatus(m.Status),
		AddedUser:     m.AddedUser,
		DateAdded:     m.DateAdded.UTC(),
		ModifiedUser:  m.ModifiedUser,
		DateModified:  normalizeOptionalTime(m.DateModified),
		DeletedUser:   m.DeletedUser,
		DateDeleted:   normalizeOptionalTime(m.DateDeleted),
	}
}

type tagModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name"`
	Description  string     `gorm:"column:description"`
	Status       string     `gorm:"column:status"`
	AddedUser    string     `gorm:"column:added_user"`
	DateAdded    time.Time  `gorm:"column:date_added"`
	ModifiedUser string     `gorm:"column:modified_user"`
	DateModified *time.Time `gorm:"column:date_modified"`
	DeletedUser  string     `gorm:"column:deleted_user"`
	DateDeleted  *time.Time `gorm:"column:date_deleted"`
}

func (tagModel) TableName() string {
	return "tags"
}

func tagModelFromEntity(tag entities.Tag) tagModel {
	row := tagModel{
		ID:           strings.TrimSpace(tag.TagID),
		Name:         tag.Name,
		Description:  tag.Description,
		Status:       string(tag.Status),
		AddedUser:    strings.TrimSpace(tag.AddedUser),
		DateAdded:    tag.DateAdded.UTC(),
		ModifiedUser: strings.TrimSpace(tag.ModifiedUser),
		DateModified: normalizeOptionalTime(tag.DateModified),
		DeletedUser:  strings.TrimSpace(tag.DeletedUser),
		DateDeleted:  normalizeOptionalTime(tag.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m tagModel) toEntity() entities.Tag {
	return entities.Tag{
		TagID:        m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Status:       entities.RecordStatus(m.Status),
		AddedUser:    m.AddedUser,
		DateAdded:    m.DateAdded.UTC(),
		ModifiedUser: m.ModifiedUser,
		DateModified: normalizeOptionalTime(m.DateModified),
		DeletedUser:  m.DeletedUser,
		DateDeleted:  normalizeOptionalTime(m.DateDeleted),
	}
}

type metadataModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Name         string     `gorm:"column:name"`
	Type         string     `gorm:"column:type"`
	Min          int        `gorm:"column:min"`
	Max          int        `gorm:"column:max"`
	Status       string     `gorm:"column:status"`
	AddedUser    string     `gorm:"column:added_user"`
	DateAdded    time.Time  `gorm:"column:date_added"`
	ModifiedUser string     `gorm:"column:modified_user"`
	DateModified *time.Time `gorm:"column:date_modified"`
	DeletedUser  string     `gorm:"column:deleted_user"`
	DateDeleted  *time.Time `gorm:"column:date_deleted"`
}

func (metadataModel) TableName() string {
	return "game_metadata"
}

func metadataModelFromEntity(metadata entities.GameMetadata) metadataModel {
	row := metadataModel{
		ID:           strings.TrimSpace(metadata.MetadataID),
		Name:         metadata.Name,
		Type:         string(metadata.Type),
		Min:          metadata.Min,
		Max:          metadata.Max,
		Status:       string(metadata.Status),
		AddedUser:    strings.TrimSpace(metadata.AddedUser),
		DateAdded:    metadata.DateAdded.UTC(),
		ModifiedUser: strings.TrimSpace(metadata.ModifiedUser),
		DateModified: normalizeOptionalTime(metadata.DateModified),
		DeletedUser:  strings.TrimSpace(metadata.DeletedUser),
		DateDeleted:  normalizeOptionalTime(metadata.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m metadataModel) toEntity() entities.GameMetadata {
	return entities.GameMetadata{
		MetadataID:   m.ID,
		Name:         m.Name,
		Type:         entities.MetadataType(m.Type),
		Min:          m.Min,
		Max:          m.Max,
		Status:       entities.RecordStatus(m.Status),
		AddedUser:    m.AddedUser,
		DateAdded:    m.DateAdded.UTC(),
		ModifiedUser: m.ModifiedUser,
		DateModified: normalizeOptionalTime(m.DateModified),
		DeletedUser:  m.DeletedUser,
		DateDeleted:  normalizeOptionalTime(m.DateDeleted),
	}
}

type noteModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	ParentType   string     `gorm:"column:parent_type"`
	ParentID     string     `gorm:"column:parent_id"`
	Text         string     `gorm:"column:text"`
	Public       bool       `gorm:"column:public"`
	Status       string     `gorm:"column:status"`
	AddedUser    string     `gorm:"column:added_user"`
	DateAdded    time.Time  `gorm:"column:date_added"`
	ModifiedUser string     `gorm:"column:modified_user"`
	DateModified *time.Time `gorm:"column:date_modified"`
	DeletedUser  string     `gorm:"column:deleted_user"`
	DateDeleted  *time.Time `gorm:"column:date_deleted"`
}

func (noteModel) TableName() string {
	return "notes"
}

func noteModelFromEntity(note entities.Note) noteModel {
	row := noteModel{
		ID:           strings.TrimSpace(note.NoteID),
		ParentType:   string(note.ParentType),
		ParentID:     strings.TrimSpace(note.ParentID),
		Text:         note.Text,
		Public:       note.Public,
		Status:       string(note.Status),
		AddedUser:    strings.TrimSpace(note.AddedUser),
		DateAdded:    note.DateAdded.UTC(),
		ModifiedUser: strings.TrimSpace(note.ModifiedUser),
		DateModified: normalizeOptionalTime(note.DateModified),
		DeletedUser:  strings.TrimSpace(note.DeletedUser),
		DateDeleted:  normalizeOptionalTime(note.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m noteModel) toEntity() entities.Note {
	return entities.Note{
		NoteID:       m.ID,
		ParentType:   entities.NoteParentType(m.ParentType),
		ParentID:     m.ParentID,
		Text:         m.Text,
		Public:       m.Public,
		Status:       entities.RecordStatus(m.Status),
		AddedUser:    m.AddedUser,
		DateAdded:    m.DateAdded.UTC(),
		ModifiedUser: m.ModifiedUser,
		DateModified: normalizeOptionalTime(m.DateModified),
		DeletedUser:  m.DeletedUser,
		DateDeleted:  normalizeOptionalTime(m.DateDeleted),
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "game_library_outbox"
}

func encodeCursor(cursor gameCursor) string {
	raw, _ := json.Marshal(cursor)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(value string) (gameCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return gameCursor{}, err
	}
	var cursor gameCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return gameCursor{}, err
	}
	return cursor, nil
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isRetryableTxFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	// serialization_failure and deadlock_detected
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

var (
	_ ports.GameRepository     = (*Repository)(nil)
	_ ports.TagRepository      = (*Repository)(nil)
	_ ports.MetadataRepository = (*Repository)(nil)
	_ ports.NoteRepository     = (*Repository)(nil)
	_ ports.OutboxWriter       = (*Repository)(nil)
	_ ports.OutboxRepository   = (*Repository)(nil)
	_ ports.UnitOfWork         = (*Repository)(nil)
)
