package ports

import (
	"context"
	"errors"
	"time"

	"improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/internal/shared/events"
)

// ErrGameMissing is the not-found sentinel CatalogReader implementations
// return; consumers treat it as an orphan signal, not a failure.
var ErrGameMissing = errors.New("game not found in catalog")

// SearchIndex is the hosted-search boundary. Implementations are keyed by
// index name and object id; SaveObject upserts.
type SearchIndex interface {
	Clear(ctx context.Context, index string) error
	SaveObjects(ctx context.Context, index string, records []entities.Record) ([]string, error)
	SaveObject(ctx context.Context, index string, record entities.Record) error
	DeleteObject(ctx context.Context, index string, objectID string) error
	Search(ctx context.Context, index string, query string, hitsPerPage int) ([]entities.Record, error)
}

type TagProjection struct {
	TagID string
	Name  string
}

type GameProjection struct {
	GameID  string
	Slug    string
	TagIDs  []string
	Deleted bool
}

type NameProjection struct {
	NameID string
	GameID string
	Text   string
}

// CatalogReader is the slice of catalog state the sync module reads. It never
// writes; ownership stays with game-library and name-voting.
type CatalogReader interface {
	ListLiveTags(ctx context.Context) ([]TagProjection, error)
	GetGameProjection(ctx context.Context, gameID string) (GameProjection, error)
	ListLiveGameProjections(ctx context.Context) ([]GameProjection, error)
	ListLiveNameProjections(ctx context.Context, gameID string) ([]NameProjection, error)
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, events.DocumentEvent) error,
	) error
}

// EventDedupStore makes at-least-once delivery safe. ReserveEvent returns
// true when the event id was already processed with the same payload.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

type Clock interface {
	Now() time.Time
}
