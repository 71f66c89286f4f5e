package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"improvdb/contexts/catalog/search-sync/domain/entities"
	domainerrors "improvdb/contexts/catalog/search-sync/domain/errors"
	"improvdb/contexts/catalog/search-sync/ports"
)

// Index is the in-process search backend: two named indices with
// case-insensitive substring matching on the record name.
type Index struct {
	mu      sync.RWMutex
	indices map[string]map[string]entities.Record
}

func NewIndex() *Index {
	return &Index{
		indices: map[string]map[string]entities.Record{
			entities.TagIndex:  make(map[string]entities.Record),
			entities.GameIndex: make(map[string]entities.Record),
		},
	}
}

func (i *Index) Clear(_ context.Context, index string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.indices[index]; !ok {
		return domainerrors.ErrUnknownIndex
	}
	i.indices[index] = make(map[string]entities.Record)
	return nil
}

func (i *Index) SaveObjects(_ context.Context, index string, records []entities.Record) ([]string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	bucket, ok := i.indices[index]
	if !ok {
		return nil, domainerrors.ErrUnknownIndex
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		bucket[record.ObjectID] = record
		ids = append(ids, record.ObjectID)
	}
	return ids, nil
}

func (i *Index) SaveObject(_ context.Context, index string, record entities.Record) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	bucket, ok := i.indices[index]
	if !ok {
		return domainerrors.ErrUnknownIndex
	}
	bucket[record.ObjectID] = record
	return nil
}

func (i *Index) DeleteObject(_ context.Context, index string, objectID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	bucket, ok := i.indices[index]
	if !ok {
		return domainerrors.ErrUnknownIndex
	}
	delete(bucket, objectID)
	return nil
}

func (i *Index) Search(_ context.Context, index string, query string, hitsPerPage int) ([]entities.Record, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	bucket, ok := i.indices[index]
	if !ok {
		return nil, domainerrors.ErrUnknownIndex
	}
	if hitsPerPage <= 0 {
		hitsPerPage = 20
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	hits := make([]entities.Record, 0)
	for _, record := range bucket {
		if strings.Contains(strings.ToLower(record.Name), needle) {
			hits = append(hits, record)
		}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Name != hits[b].Name {
			return hits[a].Name < hits[b].Name
		}
		return hits[a].ObjectID < hits[b].ObjectID
	})
	if len(hits) > hitsPerPage {
		hits = hits[:hitsPerPage]
	}
	return hits, nil
}

// Contains reports whether the index holds an object with the given id.
func (i *Index) Contains(index string, objectID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	bucket, ok := i.indices[index]
	if !ok {
		return false
	}
	_, found := bucket[objectID]
	return found
}

// Size reports the number of records in one index.
func (i *Index) Size(index string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.indices[index])
}

var _ ports.SearchIndex = (*Index)(nil)

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store seeds catalog projections and tracks event dedup for tests and local
// runs.
type Store struct {
	mu sync.RWMutex

	tags       map[string]ports.TagProjection
	games      map[string]ports.GameProjection
	names      map[string][]ports.NameProjection
	eventDedup map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		tags:       make(map[string]ports.TagProjection),
		games:      make(map[string]ports.GameProjection),
		names:      make(map[string][]ports.NameProjection),
		eventDedup: make(map[string]dedupRecord),
	}
}

func (s *Store) SetTag(tag ports.TagProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag.TagID] = tag
}

func (s *Store) SetGame(game ports.GameProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.GameID] = game
}

func (s *Store) SetName(name ports.NameProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name.GameID] = append(s.names[name.GameID], name)
}

func (s *Store) ListLiveTags(_ context.Context) ([]ports.TagProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.TagProjection, 0, len(s.tags))
	for _, tag := range s.tags {
		items = append(items, tag)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].TagID < items[j].TagID
	})
	return items, nil
}

func (s *Store) GetGameProjection(_ context.Context, gameID string) (ports.GameProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[strings.TrimSpace(gameID)]
	if !ok {
		return ports.GameProjection{}, ports.ErrGameMissing
	}
	return game, nil
}

func (s *Store) ListLiveGameProjections(_ context.Context) ([]ports.GameProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.GameProjection, 0, len(s.games))
	for _, game := range s.games {
		if !game.Deleted {
			items = append(items, game)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].GameID < items[j].GameID
	})
	return items, nil
}

func (s *Store) ListLiveNameProjections(_ context.Context, gameID string) ([]ports.NameProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.NameProjection(nil), s.names[strings.TrimSpace(gameID)]...), nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.eventDedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.eventDedup, key)
		} else {
			return true, nil
		}
	}
	s.eventDedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var (
	_ ports.CatalogReader   = (*Store)(nil)
	_ ports.EventDedupStore = (*Store)(nil)
	_ ports.Clock           = (*Store)(nil)
)
