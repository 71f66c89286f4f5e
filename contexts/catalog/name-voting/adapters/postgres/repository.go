package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
	"improvdb/internal/shared/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

// WithinVoteTransaction wraps fn in a database transaction. Serialization
// failures, deadlocks and constraint hits on commit surface as
// ErrTransactionConflict so callers can retry.
func (r *Repository) WithinVoteTransaction(ctx context.Context, fn func(tx ports.VoteTransaction) error) error {
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

func (r *Repository) CreateName(ctx context.Context, name entities.Name) error {
	row := nameModelFromEntity(name)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrTransactionConflict
		}
		return r.logError("name_voting_repo_create_name_failed", err,
			"game_id", row.GameID,
			"name_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetName(ctx context.Context, gameID string, nameID string) (entities.Name, error) {
	var row nameModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(nameID)).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Name{}, domainerrors.ErrNameNotFound
		}
		return entities.Name{}, r.logError("name_voting_repo_get_name_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"name_id", strings.TrimSpace(nameID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListLiveNames(ctx context.Context, gameID string) ([]entities.Name, error) {
	var rows []nameModel
	if err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("status = ?", string(entities.StatusActive)).
		Order("weight DESC, date_added DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("name_voting_repo_list_live_names_failed", err,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	items := make([]entities.Name, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AdjustWeight(
	ctx context.Context,
	gameID string,
	nameID string,
	delta int,
	actor string,
	at time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&nameModel{}).
		Where("id = ?", strings.TrimSpace(nameID)).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Updates(map[string]any{
			"weight":        gorm.Expr("weight + ?", delta),
			"modified_user": strings.TrimSpace(actor),
			"date_modified": at.UTC(),
		})
	if result.Error != nil {
		if isCheckViolation(result.Error) {
			// The weight >= 0 constraint tripped; a concurrent retraction won.
			return domainerrors.ErrTransactionConflict
		}
		return r.logError("name_voting_repo_adjust_weight_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
			"name_id", strings.TrimSpace(nameID),
			"delta", delta,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNameNotFound
	}
	return nil
}

func (r *Repository) MarkNameDeleted(
	ctx context.Context,
	gameID string,
	nameID string,
	actor string,
	at time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&nameModel{}).
		Where("id = ?", strings.TrimSpace(nameID)).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusDeleted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("name_voting_repo_mark_name_deleted_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
			"name_id", strings.TrimSpace(nameID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNameNotFound
	}
	return nil
}

func (r *Repository) CreateVote(ctx context.Context, vote entities.NameVote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// Partial unique index on (game_id, added_user) for active votes.
			return domainerrors.ErrDuplicateActiveVote
		}
		return r.logError("name_voting_repo_create_vote_failed", err,
			"game_id", row.GameID,
			"vote_id", row.ID,
			"user_id", row.AddedUser,
		)
	}
	return nil
}

func (r *Repository) ListActiveVotes(ctx context.Context, gameID string, userID string) ([]entities.NameVote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("added_user = ?", strings.TrimSpace(userID)).
		Where("status = ?", string(entities.StatusActive)).
		Order("date_added ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("name_voting_repo_list_active_votes_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	items := make([]entities.NameVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountActiveVotesByName(ctx context.Context, gameID string, nameID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("name_id = ?", strings.TrimSpace(nameID)).
		Where("status = ?", string(entities.StatusActive)).
		Count(&count).Error; err != nil {
		return 0, r.logError("name_voting_repo_count_active_votes_failed", err,
			"game_id", strings.TrimSpace(gameID),
			"name_id", strings.TrimSpace(nameID),
		)
	}
	return int(count), nil
}

func (r *Repository) MarkVoteRetracted(
	ctx context.Context,
	gameID string,
	voteID string,
	actor string,
	at time.Time,
) error {
	result := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("id = ?", strings.TrimSpace(voteID)).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("status = ?", string(entities.StatusActive)).
		Updates(map[string]any{
			"status":       string(entities.StatusRetracted),
			"deleted_user": strings.TrimSpace(actor),
			"date_deleted": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("name_voting_repo_mark_vote_retracted_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrVoteNotFound
	}
	return nil
}

func (r *Repository) GetGameHeader(ctx context.Context, gameID string) (entities.GameHeader, error) {
	var row gameHeaderModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(gameID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.GameHeader{}, domainerrors.ErrGameNotFound
		}
		return entities.GameHeader{}, r.logError("name_voting_repo_get_game_header_failed", err,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	return entities.GameHeader{
		GameID:  row.ID,
		Name:    row.Name,
		Slug:    row.Slug,
		Deleted: row.Status != "active",
	}, nil
}

func (r *Repository) UpdateGameName(ctx context.Context, gameID string, name string, actor string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&gameHeaderModel{}).
		Where("id = ?", strings.TrimSpace(gameID)).
		Updates(map[string]any{
			"name":          name,
			"modified_user": strings.TrimSpace(actor),
			"date_modified": at.UTC(),
		})
	if result.Error != nil {
		return r.logError("name_voting_repo_update_game_name_failed", result.Error,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrGameNotFound
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event events.DocumentEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return r.logError("name_voting_repo_append_outbox_marshal_failed", err,
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
		return r.logError("name_voting_repo_append_outbox_insert_failed", create.Error,
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
		return nil, r.logError("name_voting_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("name_voting_repo_mark_outbox_published_failed", result.Error,
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
		"module", "catalog/name-voting",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("name voting repository operation failed", fields...)
	return err
}

type nameModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	GameID       string     `gorm:"column:game_id"`
	Name         string     `gorm:"column:name"`
	Weight       int        `gorm:"column:weight"`
	Status       string     `gorm:"column:status"`
	AddedUser    string     `gorm:"column:added_user"`
	DateAdded    time.Time  `gorm:"column:date_added"`
	ModifiedUser string     `gorm:"column:modified_user"`
	DateModified *time.Time `gorm:"column:date_modified"`
	DeletedUser  string     `gorm:"column:deleted_user"`
	DateDeleted  *time.Time `gorm:"column:date_deleted"`
}

func (nameModel) TableName() string {
	return "game_names"
}

func nameModelFromEntity(name entities.Name) nameModel {
	row := nameModel{
		ID:           strings.TrimSpace(name.NameID),
		GameID:       strings.TrimSpace(name.GameID),
		Name:         name.Text,
		Weight:       name.Weight,
		Status:       string(name.Status),
		AddedUser:    strings.TrimSpace(name.AddedUser),
		DateAdded:    name.DateAdded.UTC(),
		ModifiedUser: strings.TrimSpace(name.ModifiedUser),
		DateModified: normalizeOptionalTime(name.DateModified),
		DeletedUser:  strings.TrimSpace(name.DeletedUser),
		DateDeleted:  normalizeOptionalTime(name.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m nameModel) toEntity() entities.Name {
	return entities.Name{
		NameID:       m.ID,
		GameID:       m.GameID,
		Text:         m.Name,
		Weight:       m.Weight,
		Status:       entities.RecordStatus(m.Status),
		AddedUser:    m.AddedUser,
		DateAdded:    m.DateAdded.UTC(),
		ModifiedUser: m.ModifiedUser,
		DateModified: normalizeOptionalTime(m.DateModified),
		DeletedUser:  m.DeletedUser,
		DateDeleted:  normalizeOptionalTime(m.DateDeleted),
	}
}

type voteModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	GameID      string     `gorm:"column:game_id"`
	NameID      string     `gorm:"column:name_id"`
	AddedUser   string     `gorm:"column:added_user"`
	Status      string     `gorm:"column:status"`
	DateAdded   time.Time  `gorm:"column:date_added"`
	DeletedUser string     `gorm:"column:deleted_user"`
	DateDeleted *time.Time `gorm:"column:date_deleted"`
}

func (voteModel) TableName() string {
	return "name_votes"
}

func voteModelFromEntity(vote entities.NameVote) voteModel {
	row := voteModel{
		ID:          strings.TrimSpace(vote.VoteID),
		GameID:      strings.TrimSpace(vote.GameID),
		NameID:      strings.TrimSpace(vote.NameID),
		AddedUser:   strings.TrimSpace(vote.AddedUser),
		Status:      string(vote.Status),
		DateAdded:   vote.DateAdded.UTC(),
		DeletedUser: strings.TrimSpace(vote.DeletedUser),
		DateDeleted: normalizeOptionalTime(vote.DateDeleted),
	}
	if row.DateAdded.IsZero() {
		row.DateAdded = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.NameVote {
	return entities.NameVote{
		VoteID:      m.ID,
		GameID:      m.GameID,
		NameID:      m.NameID,
		AddedUser:   m.AddedUser,
		Status:      entities.RecordStatus(m.Status),
		DateAdded:   m.DateAdded.UTC(),
		DeletedUser: m.DeletedUser,
		DateDeleted: normalizeOptionalTime(m.DateDeleted),
	}
}

type gameHeaderModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	Name   string `gorm:"column:name"`
	Slug   string `gorm:"column:slug"`
	Status string `gorm:"column:status"`
}

func (gameHeaderModel) TableName() string {
	return "games"
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
	return "name_voting_outbox"
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

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
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
	_ ports.NameRepository   = (*Repository)(nil)
	_ ports.VoteRepository   = (*Repository)(nil)
	_ ports.GameHeaderStore  = (*Repository)(nil)
	_ ports.OutboxWriter     = (*Repository)(nil)
	_ ports.OutboxRepository = (*Repository)(nil)
	_ ports.UnitOfWork       = (*Repository)(nil)
)
