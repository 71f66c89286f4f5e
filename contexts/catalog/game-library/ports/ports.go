package ports

import (
	"context"
	"time"

	"improvdb/contexts/catalog/game-library/domain/entities"
	"improvdb/internal/shared/events"
)

// GameFilter narrows ListGames. Metadata filters use membership semantics
// (game's bucket id is one of the listed ids); TagIDs matches any overlap
// with the game's tag set.
type GameFilter struct {
	DurationIDs    []string
	PlayerCountIDs []string
	TagIDs         []string
}

// GamePage is one cursor page. Cursor is opaque; empty means the listing is
// exhausted.
type GamePage struct {
	Items  []entities.Game
	Cursor string
}

type GameRepository interface {
	CreateGame(ctx context.Context, game entities.Game) error
	GetGame(ctx context.Context, gameID string) (entities.Game, error)
	// GetLiveGameBySlug ignores deleted games.
	GetLiveGameBySlug(ctx context.Context, slug string) (entities.Game, error)
	// SlugInUse reports whether any live game holds the slug.
	SlugInUse(ctx context.Context, slug string) (bool, error)
	// ListGames pages live games ordered by name then DateModified descending.
	ListGames(ctx context.Context, filter GameFilter, cursor string, pageSize int) (GamePage, error)
	// ListLiveGames streams the full live set, for rebuild-style consumers.
	ListLiveGames(ctx context.Context) ([]entities.Game, error)
	// FirstLiveGameFrom returns the first live game whose id sorts at or
	// after fromID. Passing the empty string starts at the lowest id.
	FirstLiveGameFrom(ctx context.Context, fromID string) (entities.Game, bool, error)
	MarkGameDeleted(ctx context.Context, gameID string, actor string, at time.Time) error
}

type TagRepository interface {
	CreateTag(ctx context.Context, tag entities.Tag) error
	GetTag(ctx context.Context, tagID string) (entities.Tag, error)
	ListLiveTags(ctx context.Context) ([]entities.Tag, error)
	MarkTagDeleted(ctx context.Context, tagID string, actor string, at time.Time) error
}

type MetadataRepository interface {
	CreateMetadata(ctx context.Context, metadata entities.GameMetadata) error
	GetMetadata(ctx context.Context, metadataID string) (entities.GameMetadata, error)
	// ListLiveMetadata returns buckets of the given type sorted by Min+Max.
	ListLiveMetadata(ctx context.Context, metadataType entities.MetadataType) ([]entities.GameMetadata, error)
	MarkMetadataDeleted(ctx context.Context, metadataID string, actor string, at time.Time) error
}

type NoteRepository interface {
	CreateNote(ctx context.Context, note entities.Note) error
	GetNote(ctx context.Context, noteID string) (entities.Note, error)
	// ListPublicNotesByParents returns live public notes whose parent id is in
	// parentIDs, ordered by DateAdded ascending.
	ListPublicNotesByParents(ctx context.Context, parentIDs []string) ([]entities.Note, error)
	MarkNoteDeleted(ctx context.Context, noteID string, actor string, at time.Time) error
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event events.DocumentEvent) error
}

// CatalogTransaction groups the writes one command performs so a state change
// and its outbox row commit together.
type CatalogTransaction interface {
	GameRepository
	TagRepository
	MetadataRepository
	NoteRepository
	OutboxWriter
}

type UnitOfWork interface {
	WithinCatalogTransaction(ctx context.Context, fn func(tx CatalogTransaction) error) error
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.DocumentEvent) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
