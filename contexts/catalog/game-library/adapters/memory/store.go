package memory

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
	"improvdb/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store backs every game-library port with in-process maps.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	games    map[string]entities.Game
	tags     map[string]entities.Tag
	metadata map[string]entities.GameMetadata
	notes    map[string]entities.Note
	outbox   map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		games:    make(map[string]entities.Game),
		tags:     make(map[string]entities.Tag),
		metadata: make(map[string]entities.GameMetadata),
		notes:    make(map[string]entities.Note),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) CreateGame(_ context.Context, game entities.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gameID := strings.TrimSpace(game.GameID)
	if _, exists := s.games[gameID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	s.games[gameID] = game
	return nil
}

func (s *Store) GetGame(_ context.Context, gameID string) (entities.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return entities.Game{}, domainerrors.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) GetLiveGameBySlug(_ context.Context, slug string) (entities.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug = strings.TrimSpace(slug)
	for _, game := range s.games {
		if game.Slug == slug && game.Live() {
			return game, nil
		}
	}
	return entities.Game{}, domainerrors.ErrGameNotFound
}

func (s *Store) SlugInUse(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug = strings.TrimSpace(slug)
	for _, game := range s.games {
		if game.Slug == slug && game.Live() {
			return true, nil
		}
	}
	return false, nil
}

type gameCursor struct {
	Name   string `json:"name"`
	GameID string `json:"game_id"`
}

func (s *Store) ListGames(
	_ context.Context,
	filter ports.GameFilter,
	cursor string,
	pageSize int,
) (ports.GamePage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if pageSize <= 0 {
		pageSize = 20
	}

	items := make([]entities.Game, 0)
	for _, game := range s.games {
		if game.Live() && matchesFilter(game, filter) {
			items = append(items, game)
		}
	}
	sortGames(items)

	if cursor != "" {
		after, err := decodeCursor(cursor)
		if err != nil {
			return ports.GamePage{}, domainerrors.ErrInvalidInput
		}
		start := sort.Search(len(items), func(i int) bool {
			if items[i].Name != after.Name {
				return items[i].Name > after.Name
			}
			return items[i].GameID > after.GameID
		})
		items = items[start:]
	}

	page := ports.GamePage{}
	if len(items) > pageSize {
		items = items[:pageSize]
		last := items[len(items)-1]
		page.Cursor = encodeCursor(gameCursor{Name: last.Name, GameID: last.GameID})
	}
	page.Items = items
	return page, nil
}

func (s *Store) ListLiveGames(_ context.Context) ([]entities.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Game, 0, len(s.games))
	for _, game := range s.games {
		if game.Live() {
			items = append(items, game)
		}
	}
	sortGames(items)
	return items, nil
}

func (s *Store) FirstLiveGameFrom(_ context.Context, fromID string) (entities.Game, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.games))
	for id, game := range s.games {
		if game.Live() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if id >= fromID {
			return s.games[id], true, nil
		}
	}
	return entities.Game{}, false, nil
}

func (s *Store) MarkGameDeleted(_ context.Context, gameID string, actor string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return domainerrors.ErrGameNotFound
	}
	game.Status = entities.StatusDeleted
	game.DeletedUser = actor
	deleted := at.UTC()
	game.DateDeleted = &deleted
	s.games[game.GameID] = game
	return nil
}

func (s *Store) CreateTag(_ context.Context, tag entities.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tagID := strings.TrimSpace(tag.TagID)
	if _, exists := s.tags[tagID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	s.tags[tagID] = tag
	return nil
}

func (s *Store) GetTag(_ context.Context, tagID string) (entities.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tag, ok := s.tags[strings.TrimSpace(tagID)]
	if !ok {
		return entities.Tag{}, domainerrors.ErrTagNotFound
	}
	return tag, nil
}

func (s *Store) ListLiveTags(_ context.Context) ([]entities.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		if tag.Live() {
			items = append(items, tag)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) MarkTagDeleted(_ context.Context, tagID string, actor string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag, ok := s.tags[strings.TrimSpace(tagID)]
	if !ok {
		return domainerrors.ErrTagNotFound
	}
	tag.Status = entities.StatusDeleted
	tag.DeletedUser = actor
	deleted := at.UTC()
	tag.DateDeleted = &deleted
	s.tags[tag.TagID] = tag
	return nil
}

func (s *Store) CreateMetadata(_ context.Context, metadata entities.GameMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	metadataID := strings.TrimSpace(metadata.MetadataID)
	if _, exists := s.metadata[metadataID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	s.metadata[metadataID] = metadata
	return nil
}

func (s *Store) GetMetadata(_ context.Context, metadataID string) (entities.GameMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	metadata, ok := s.metadata[strings.TrimSpace(metadataID)]
	if !ok {
		return entities.GameMetadata{}, domainerrors.ErrMetadataNotFound
	}
	return metadata, nil
}

func (s *Store) ListLiveMetadata(_ context.Context, metadataType entities.MetadataType) ([]entities.GameMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.GameMetadata, 0)
	for _, metadata := range s.metadata {
		if metadata.Live() && metadata.Type == metadataType {
			items = append(items, metadata)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Min+items[i].Max < items[j].Min+items[j].Max
	})
	return items, nil
}

func (s *Store) MarkMetadataDeleted(_ context.Context, metadataID string, actor string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	metadata, ok := s.metadata[strings.TrimSpace(metadataID)]
	if !ok {
		return domainerrors.ErrMetadataNotFound
	}
	metadata.Status = entities.StatusDeleted
	metadata.DeletedUser = actor
	deleted := at.UTC()
	metadata.DateDeleted = &deleted
	s.metadata[metadata.MetadataID] = metadata
	return nil
}

func (s *Store) CreateNote(_ context.Context, note entities.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	noteID := strings.TrimSpace(note.NoteID)
	if _, exists := s.notes[noteID]; exists {
		return domainerrors.ErrTransactionConflict
	}
	s.notes[noteID] = note
	return nil
}

func (s *Store) GetNote(_ context.Context, noteID string) (entities.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[strings.TrimSpace(noteID)]
	if !ok {
		return entities.Note{}, domainerrors.ErrNoteNotFound
	}
	return note, nil
}

func (s *Store) ListPublicNotesByParents(_ context.Context, parentIDs []string) ([]entities.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		wanted[strings.TrimSpace(id)] = struct{}{}
	}

	items := make([]entities.Note, 0)
	for _, note := range s.notes {
		if !note.Live() || !note.Public {
			continue
		}
		if _, ok := wanted[note.ParentID]; ok {
			items = append(items, note)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DateAdded.Before(items[j].DateAdded)
	})
	return items, nil
}

func (s *Store) MarkNoteDeleted(_ context.Context, noteID string, actor string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[strings.TrimSpace(noteID)]
	if !ok {
		return domainerrors.ErrNoteNotFound
	}
	note.Status = entities.StatusDeleted
	note.DeletedUser = actor
	deleted := at.UTC()
	note.DateDeleted = &deleted
	s.notes[note.NoteID] = note
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

// WithinCatalogTransaction serializes transactional units and rolls the
// store back to its entry snapshot when fn fails.
func (s *Store) WithinCatalogTransaction(_ context.Context, fn func(tx ports.CatalogTransaction) error) error {
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
	games    map[string]entities.Game
	tags     map[string]entities.Tag
	metadata map[string]entities.GameMetadata
	notes    map[string]entities.Note
	outbox   map[string]outboxRecord
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := storeSnapshot{
		games:    make(map[string]entities.Game, len(s.games)),
		tags:     make(map[string]entities.Tag, len(s.tags)),
		metadata: make(map[string]entities.GameMetadata, len(s.metadata)),
		notes:    make(map[string]entities.Note, len(s.notes)),
		outbox:   make(map[string]outboxRecord, len(s.outbox)),
	}
	for k, v := range s.games {
		snap.games[k] = v
	}
	for k, v := range s.tags {
		snap.tags[k] = v
	}
	for k, v := range s.metadata {
		snap.metadata[k] = v
	}
	for k, v := range s.notes {
		snap.notes[k] = v
	}
	for k, v := range s.outbox {
		snap.outbox[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = snap.games
	s.tags = snap.tags
	s.metadata = snap.metadata
	s.notes = snap.notes
	s.outbox = snap.outbox
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func matchesFilter(game entities.Game, filter ports.GameFilter) bool {
	if len(filter.DurationIDs) > 0 && !contains(filter.DurationIDs, game.DurationID) {
		return false
	}
	if len(filter.PlayerCountIDs) > 0 && !contains(filter.PlayerCountIDs, game.PlayerCountID) {
		return false
	}
	if len(filter.TagIDs) > 0 && !overlaps(filter.TagIDs, game.TagIDs) {
		return false
	}
	return true
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func overlaps(wanted []string, have []string) bool {
	for _, id := range wanted {
		if contains(have, id) {
			return true
		}
	}
	return false
}

func sortGames(items []entities.Game) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		left, right := modifiedAt(items[i]), modifiedAt(items[j])
		if !left.Equal(right) {
			return left.After(right)
		}
		return items[i].GameID < items[j].GameID
	})
}

func modifiedAt(game entities.Game) time.Time {
	if game.DateModified != nil {
		return *game.DateModified
	}
	return game.DateAdded
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

var (
	_ ports.GameRepository     = (*Store)(nil)
	_ ports.TagRepository      = (*Store)(nil)
	_ ports.MetadataRepository = (*Store)(nil)
	_ ports.NoteRepository     = (*Store)(nil)
	_ ports.OutboxWriter       = (*Store)(nil)
	_ ports.OutboxRepository   = (*Store)(nil)
	_ ports.UnitOfWork         = (*Store)(nil)
	_ ports.Clock              = (*Store)(nil)
	_ ports.IDGenerator        = (*Store)(nil)
)
