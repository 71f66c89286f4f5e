package ports

import (
	"context"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	"improvdb/internal/shared/events"
)

type NameRepository interface {
	CreateName(ctx context.Context, name entities.Name) error
	GetName(ctx context.Context, gameID string, nameID string) (entities.Name, error)
	// ListLiveNames returns active names ordered by weight descending, then
	// DateAdded descending (newest first among ties).
	ListLiveNames(ctx context.Context, gameID string) ([]entities.Name, error)
	// AdjustWeight applies an atomic delta to a name's weight. The store must
	// not read-modify-write; concurrent voters depend on delta semantics.
	AdjustWeight(ctx context.Context, gameID string, nameID string, delta int, actor string, at time.Time) error
	MarkNameDeleted(ctx context.Context, gameID string, nameID string, actor string, at time.Time) error
}

type VoteRepository interface {
	CreateVote(ctx context.Context, vote entities.NameVote) error
	// ListActiveVotes returns the user's live votes in a game ordered by
	// DateAdded ascending. At most one is expected.
	ListActiveVotes(ctx context.Context, gameID string, userID string) ([]entities.NameVote, error)
	CountActiveVotesByName(ctx context.Context, gameID string, nameID string) (int, error)
	MarkVoteRetracted(ctx context.Context, gameID string, voteID string, actor string, at time.Time) error
}

// GameHeaderStore is the slice of the games collection this module touches:
// reading the canonical name and persisting renames. The slug is never
// written here.
type GameHeaderStore interface {
	GetGameHeader(ctx context.Context, gameID string) (entities.GameHeader, error)
	UpdateGameName(ctx context.Context, gameID string, name string, actor string, at time.Time) error
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event events.DocumentEvent) error
}

// VoteTransaction is the repository surface available inside a transactional
// unit. Outbox appends participate so change events commit with the state
// they describe.
type VoteTransaction interface {
	NameRepository
	VoteRepository
	OutboxWriter
}

// UnitOfWork runs fn atomically: every repository call inside either commits
// together or leaves no trace. Commit failures surface as
// ErrTransactionConflict.
type UnitOfWork interface {
	WithinVoteTransaction(ctx context.Context, fn func(tx VoteTransaction) error) error
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
