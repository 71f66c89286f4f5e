package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
	"improvdb/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store backs every name-voting port with in-process maps. Transactions are
// snapshot based: a failed unit restores the pre-transaction state, which is
// enough isolation for tests and local runs.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	names  map[string]entities.Name
	votes  map[string]entities.NameVote
	games  map[string]entities.GameHeader
	outbox map[string]outboxRecord

	gameNameWrites int
}

func NewStore(seedNames []entities.Name, seedVotes []entities.NameVote) *Store {
	names := make(map[string]entities.Name, len(seedNames))
	for _, name := range seedNames {
		names[name.NameID] = name
	}
	votes := make(map[string]entities.NameVote, len(seedVotes))
	for _, vote := range seedVotes {
		votes[vote.VoteID] = vote
	}
	return &Store{
		names:  names,
		votes:  votes,
		games:  make(map[string]entities.GameHeader),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) SetGame(game entities.GameHeader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[strings.TrimSpace(game.GameID)] = game
}

// GameNameWrites counts UpdateGameName calls, letting tests assert that
// resolution skips the write when the canonical name is unchanged.
func (s *Store) GameNameWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameNameWrites
}

func (s *Store) CreateName(_ context.Context, name entities.Name) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nameID := strings.TrimSpace(name.NameID)
	if _, exists := s.names[nameID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	s.names[nameID] = name
	return nil
}

func (s *Store) GetName(_ context.Context, gameID string, nameID string) (entities.Name, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[strings.TrimSpace(nameID)]
	if !ok || name.GameID != strings.TrimSpace(gameID) {
		return entities.Name{}, domainerrors.ErrNameNotFound
	}
	return name, nil
}

func (s *Store) ListLiveNames(_ context.Context, gameID string) ([]entities.Name, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Name, 0)
	for _, name := range s.names {
		if name.GameID == strings.TrimSpace(gameID) && name.Live() {
			items = append(items, name)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Weight != items[j].Weight {
			return items[i].Weight > items[j].Weight
		}
		return items[i].DateAdded.After(items[j].DateAdded)
	})
	return items, nil
}

func (s *Store) AdjustWeight(
	_ context.Context,
	gameID string,
	nameID string,
	delta int,
	actor string,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.names[strings.TrimSpace(nameID)]
	if !ok || name.GameID != strings.TrimSpace(gameID) {
		return domainerrors.ErrNameNotFound
	}
	if name.Weight+delta < 0 {
		return domainerrors.ErrTransactionConflict
	}
	name.Weight += delta
	name.ModifiedUser = actor
	modified := at.UTC()
	name.DateModified = &modified
	s.names[name.NameID] = name
	return nil
}

func (s *Store) MarkNameDeleted(
	_ context.Context,
	gameID string,
	nameID string,
	actor string,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.names[strings.TrimSpace(nameID)]
	if !ok || name.GameID != strings.TrimSpace(gameID) {
		return domainerrors.ErrNameNotFound
	}
	name.Status = entities.StatusDeleted
	name.DeletedUser = actor
	deleted := at.UTC()
	name.DateDeleted = &deleted
	s.names[name.NameID] = name
	return nil
}

func (s *Store) CreateVote(_ context.Context, vote entities.NameVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voteID := strings.TrimSpace(vote.VoteID)
	if _, exists := s.votes[voteID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	for _, existing := range s.votes {
		if existing.GameID == vote.GameID && existing.AddedUser == vote.AddedUser && existing.Live() {
			return domainerrors.ErrDuplicateActiveVote
		}
	}
	s.votes[voteID] = vote
	return nil
}

func (s *Store) ListActiveVotes(_ context.Context, gameID string, userID string) ([]entities.NameVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.NameVote, 0)
	for _, vote := range s.votes {
		if vote.GameID == strings.TrimSpace(gameID) && vote.AddedUser == strings.TrimSpace(userID) && vote.Live() {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DateAdded.Before(items[j].DateAdded)
	})
	return items, nil
}

func (s *Store) CountActiveVotesByName(_ context.Context, gameID string, nameID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, vote := range s.votes {
		if vote.GameID == strings.TrimSpace(gameID) && vote.NameID == strings.TrimSpace(nameID) && vote.Live() {
			count++
		}
	}
	return count, nil
}

func (s *Store) MarkVoteRetracted(
	_ context.Context,
	gameID string,
	voteID string,
	actor string,
	at time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok || vote.GameID != strings.TrimSpace(gameID) {
		return domainerrors.ErrVoteNotFound
	}
	vote.Status = entities.StatusRetracted
	vote.DeletedUser = actor
	deleted := at.UTC()
	vote.DateDeleted = &deleted
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) GetGameHeader(_ context.Context, gameID string) (entities.GameHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return entities.GameHeader{}, domainerrors.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) UpdateGameName(_ context.Context, gameID string, name string, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return domainerrors.ErrGameNotFound
	}
	game.Name = name
	s.games[game.GameID] = game
	s.gameNameWrites++
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, event events.DocumentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	createdAt := event.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[event.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  event.EventID,
			EventType: event.EventType,
			Payload:   payload,
			CreatedAt: createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrTransactionConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

// WithinVoteTransaction serializes transactional units and rolls the whole
// store back to its entry snapshot when fn fails.
func (s *Store) WithinVoteTransaction(_ context.Context, fn func(tx ports.VoteTransaction) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	names  map[string]entities.Name
	votes  map[string]entities.NameVote
	outbox map[string]outboxRecord
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := storeSnapshot{
		names:  make(map[string]entities.Name, len(s.names)),
		votes:  make(map[string]entities.NameVote, len(s.votes)),
		outbox: make(map[string]outboxRecord, len(s.outbox)),
	}
	for k, v := range s.names {
		snap.names[k] = v
	}
	for k, v := range s.votes {
		snap.votes[k] = v
	}
	for k, v := range s.outbox {
		snap.outbox[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = snap.names
	s.votes = snap.votes
	s.outbox = snap.outbox
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.NameRepository   = (*Store)(nil)
	_ ports.VoteRepository   = (*Store)(nil)
	_ ports.GameHeaderStore  = (*Store)(nil)
	_ ports.OutboxWriter     = (*Store)(nil)
	_ ports.OutboxRepository = (*Store)(nil)
	_ ports.UnitOfWork       = (*Store)(nil)
	_ ports.Clock            = (*Store)(nil)
	_ ports.IDGenerator      = (*Store)(nil)
)
