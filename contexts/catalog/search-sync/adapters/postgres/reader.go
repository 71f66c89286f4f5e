package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/catalog/search-sync/ports"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Reader projects catalog tables into the shapes the sync module needs. It
// reads the same tables game-library and name-voting own but never writes
// them; its only writable table is the event dedup ledger.
type Reader struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewReader(db *gorm.DB, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		db:     db,
		logger: logger,
	}
}

func (r *Reader) ListLiveTags(ctx context.Context) ([]ports.TagProjection, error) {
	var rows []tagProjectionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("search_sync_reader_list_tags_failed", err)
	}
	items := make([]ports.TagProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.TagProjection{TagID: row.ID, Name: row.Name})
	}
	return items, nil
}

func (r *Reader) GetGameProjection(ctx context.Context, gameID string) (ports.GameProjection, error) {
	var row gameProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(gameID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.GameProjection{}, ports.ErrGameMissing
		}
		return ports.GameProjection{}, r.logError("search_sync_reader_get_game_failed", err,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	return row.toProjection(), nil
}

func (r *Reader) ListLiveGameProjections(ctx context.Context) ([]ports.GameProjection, error) {
	var rows []gameProjectionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("search_sync_reader_list_games_failed", err)
	}
	items := make([]ports.GameProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items, nil
}

func (r *Reader) ListLiveNameProjections(ctx context.Context, gameID string) ([]ports.NameProjection, error) {
	var rows []nameProjectionModel
	if err := r.db.WithContext(ctx).
		Where("game_id = ?", strings.TrimSpace(gameID)).
		Where("status = ?", "active").
		Order("date_added ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("search_sync_reader_list_names_failed", err,
			"game_id", strings.TrimSpace(gameID),
		)
	}
	items := make([]ports.NameProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.NameProjection{
			NameID: row.ID,
			GameID: row.GameID,
			Text:   row.Name,
		})
	}
	return items, nil
}

func (r *Reader) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("search_sync_reader_reserve_event_failed", create.Error,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return create.RowsAffected == 0, nil
}

func (r *Reader) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "catalog/search-sync",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("search sync reader operation failed", fields...)
	return err
}

type tagProjectionModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	Name   string `gorm:"column:name"`
	Status string `gorm:"column:status"`
}

func (tagProjectionModel) TableName() string {
	return "tags"
}

type gameProjectionModel struct {
	ID     string                      `gorm:"column:id;primaryKey"`
	Slug   string                      `gorm:"column:slug"`
	TagIDs datatypes.JSONSlice[string] `gorm:"column:tag_ids"`
	Status string                      `gorm:"column:status"`
}

func (gameProjectionModel) TableName() string {
	return "games"
}

func (m gameProjectionModel) toProjection() ports.GameProjection {
	return ports.GameProjection{
		GameID:  m.ID,
		Slug:    m.Slug,
		TagIDs:  []string(m.TagIDs),
		Deleted: m.Status != "active",
	}
}

type nameProjectionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	GameID    string    `gorm:"column:game_id"`
	Name      string    `gorm:"column:name"`
	Status    string    `gorm:"column:status"`
	DateAdded time.Time `gorm:"column:date_added"`
}

func (nameProjectionModel) TableName() string {
	return "game_names"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "search_sync_event_dedup"
}

var (
	_ ports.CatalogReader   = (*Reader)(nil)
	_ ports.EventDedupStore = (*Reader)(nil)
)
