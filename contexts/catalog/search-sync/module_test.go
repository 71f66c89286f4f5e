package searchsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"improvdb/contexts/catalog/search-sync/domain/entities"
	domainerrors "improvdb/contexts/catalog/search-sync/domain/errors"
	"improvdb/contexts/catalog/search-sync/ports"
	"improvdb/internal/shared/events"
)

// stubSubscriber captures handlers by topic so tests can deliver synthetic
// events without a running bus.
type stubSubscriber struct {
	handlers map[string]func(context.Context, events.DocumentEvent) error
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{
		handlers: make(map[string]func(context.Context, events.DocumentEvent) error),
	}
}

func (s *stubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, events.DocumentEvent) error,
) error {
	s.handlers[topic] = handler
	return nil
}

func (s *stubSubscriber) deliver(t *testing.T, event events.DocumentEvent) {
	t.Helper()
	handler, ok := s.handlers[event.EventType]
	if !ok {
		t.Fatalf("no handler subscribed for %s", event.EventType)
	}
	if err := handler(context.Background(), event); err != nil {
		t.Fatalf("handler for %s failed: %v", event.EventType, err)
	}
}

var _ ports.EventSubscriber = (*stubSubscriber)(nil)

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return raw
}

func tagEvent(t *testing.T, eventID string, eventType string, tagID string, before, after events.TagState) events.DocumentEvent {
	t.Helper()
	event := events.DocumentEvent{
		EventID:    eventID,
		EventType:  eventType,
		Collection: "tags",
		DocumentID: tagID,
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		After:      mustJSON(t, after),
	}
	if eventType == events.TypeTagUpdated {
		event.Before = mustJSON(t, before)
	}
	return event
}

func nameEvent(t *testing.T, eventID string, eventType string, nameID string, gameID string, before, after events.NameState) events.DocumentEvent {
	t.Helper()
	event := events.DocumentEvent{
		EventID:    eventID,
		EventType:  eventType,
		Collection: "names",
		DocumentID: nameID,
		GameID:     gameID,
		OccurredAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		After:      mustJSON(t, after),
	}
	if eventType == events.TypeNameUpdated {
		event.Before = mustJSON(t, before)
	}
	return event
}

func startConsumers(t *testing.T, module Module) {
	t.Helper()
	if err := module.TagConsumer.Start(context.Background()); err != nil {
		t.Fatalf("start tag consumer failed: %v", err)
	}
	if err := module.NameConsumer.Start(context.Background()); err != nil {
		t.Fatalf("start name consumer failed: %v", err)
	}
}

func TestTagConsumerIndexesCreatedTags(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{}, nil)
	startConsumers(t, module)

	subscriber.deliver(t, tagEvent(t, "evt-1", events.TypeTagCreated, "tag-1",
		events.TagState{}, events.TagState{Name: "Warmup"}))
	if !module.Index.Contains(entities.TagIndex, "tag-1") {
		t.Fatalf("expected tag-1 indexed after tag.created")
	}

	// A create event that already carries a tombstone is skipped.
	subscriber.deliver(t, tagEvent(t, "evt-2", events.TypeTagCreated, "tag-2",
		events.TagState{}, events.TagState{Name: "Gone", Deleted: true}))
	if module.Index.Contains(entities.TagIndex, "tag-2") {
		t.Fatalf("expected deleted tag.created to be skipped")
	}
}

func TestTagConsumerRemovesOnDeletionEdge(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{}, nil)
	startConsumers(t, module)

	if err := module.Index.SaveObject(context.Background(), entities.TagIndex, entities.NewTagRecord("tag-1", "Warmup")); err != nil {
		t.Fatalf("seed index failed: %v", err)
	}

	// A rename is not a deletion edge and leaves the record alone.
	subscriber.deliver(t, tagEvent(t, "evt-1", events.TypeTagUpdated, "tag-1",
		events.TagState{Name: "Warmup"}, events.TagState{Name: "Warm-up"}))
	if !module.Index.Contains(entities.TagIndex, "tag-1") {
		t.Fatalf("expected rename to keep the record")
	}

	subscriber.deliver(t, tagEvent(t, "evt-2", events.TypeTagUpdated, "tag-1",
		events.TagState{Name: "Warm-up"}, events.TagState{Name: "Warm-up", Deleted: true}))
	if module.Index.Contains(entities.TagIndex, "tag-1") {
		t.Fatalf("expected deletion edge to tombstone the record")
	}
}

func TestConsumersSkipReplayedEvents(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{}, nil)
	startConsumers(t, module)

	event := tagEvent(t, "evt-1", events.TypeTagCreated, "tag-1",
		events.TagState{}, events.TagState{Name: "Warmup"})
	subscriber.deliver(t, event)

	// Drop the record, then redeliver the same event id: dedup must keep the
	// replay from re-indexing.
	if err := module.Index.DeleteObject(context.Background(), entities.TagIndex, "tag-1"); err != nil {
		t.Fatalf("delete object failed: %v", err)
	}
	subscriber.deliver(t, event)
	if module.Index.Contains(entities.TagIndex, "tag-1") {
		t.Fatalf("expected replayed event to be a no-op")
	}
}

func TestNameConsumerIndexesNamesWithKeyTag(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{
		ShowTagID:     "tag-show",
		ExerciseTagID: "tag-exercise",
		WarmupTagID:   "tag-warmup",
	}, nil)
	startConsumers(t, module)

	module.Store.SetGame(ports.GameProjection{
		GameID: "game-1",
		Slug:   "freeze-tag",
		TagIDs: []string{"tag-warmup", "tag-show"},
	})

	subscriber.deliver(t, nameEvent(t, "evt-1", events.TypeNameCreated, "name-1", "game-1",
		events.NameState{}, events.NameState{Name: "Freeze Tag"}))

	hits, err := module.Handler.Search.Search(context.Background(), entities.GameIndex, "freeze", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %d", len(hits))
	}
	record := hits[0]
	if record.ObjectID != "name-1" || record.GameID != "game-1" || record.GameSlug != "freeze-tag" {
		t.Fatalf("unexpected record %+v", record)
	}
	// Show outranks warmup when both key tags are present.
	if record.KeyTag != "Show" {
		t.Fatalf("expected Show key tag, got %q", record.KeyTag)
	}
}

func TestNameConsumerSkipsOrphanedNames(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{}, nil)
	startConsumers(t, module)

	// Missing parent game: logged and skipped, never an error.
	subscriber.deliver(t, nameEvent(t, "evt-1", events.TypeNameCreated, "name-1", "game-missing",
		events.NameState{}, events.NameState{Name: "Lost Name"}))
	if module.Index.Size(entities.GameIndex) != 0 {
		t.Fatalf("expected orphaned name to stay out of the index")
	}

	// Soft-deleted parent game behaves the same way.
	module.Store.SetGame(ports.GameProjection{GameID: "game-gone", Slug: "gone", Deleted: true})
	subscriber.deliver(t, nameEvent(t, "evt-2", events.TypeNameCreated, "name-2", "game-gone",
		events.NameState{}, events.NameState{Name: "Ghost Name"}))
	if module.Index.Size(entities.GameIndex) != 0 {
		t.Fatalf("expected name on deleted game to stay out of the index")
	}
}

func TestNameConsumerTombstonesOnDeletionEdge(t *testing.T) {
	subscriber := newStubSubscriber()
	module := NewInMemoryModule(subscriber, entities.KeyTagConfig{}, nil)
	startConsumers(t, module)

	record := entities.NewGameRecord("game-1", "freeze-tag", "name-1", "Freeze Tag", "")
	if err := module.Index.SaveObject(context.Background(), entities.GameIndex, record); err != nil {
		t.Fatalf("seed index failed: %v", err)
	}

	subscriber.deliver(t, nameEvent(t, "evt-1", events.TypeNameUpdated, "name-1", "game-1",
		events.NameState{Name: "Freeze Tag"}, events.NameState{Name: "Freeze Tag", Deleted: true}))
	if module.Index.Contains(entities.GameIndex, "name-1") {
		t.Fatalf("expected deletion edge to remove the name record")
	}
}

func TestRebuildIndexesLoadsLiveCatalog(t *testing.T) {
	module := NewInMemoryModule(newStubSubscriber(), entities.KeyTagConfig{
		ExerciseTagID: "tag-exercise",
		WarmupTagID:   "tag-warmup",
	}, nil)

	module.Store.SetTag(ports.TagProjection{TagID: "tag-warmup", Name: "Warmup"})
	module.Store.SetTag(ports.TagProjection{TagID: "tag-exercise", Name: "Exercise"})
	module.Store.SetGame(ports.GameProjection{
		GameID: "game-1",
		Slug:   "zip-zap-zop",
		TagIDs: []string{"tag-warmup", "tag-exercise"},
	})
	module.Store.SetGame(ports.GameProjection{GameID: "game-deleted", Slug: "gone", Deleted: true})
	module.Store.SetName(ports.NameProjection{NameID: "name-1", GameID: "game-1", Text: "Zip Zap Zop"})
	module.Store.SetName(ports.NameProjection{NameID: "name-2", GameID: "game-1", Text: "Energy Circle"})
	module.Store.SetName(ports.NameProjection{NameID: "name-3", GameID: "game-deleted", Text: "Ghost"})

	// Stale records from an earlier incremental run are cleared by the rebuild.
	if err := module.Index.SaveObject(context.Background(), entities.GameIndex, entities.NewGameRecord(
		"game-stale", "stale", "name-stale", "Stale", "",
	)); err != nil {
		t.Fatalf("seed stale record failed: %v", err)
	}

	result, err := module.Rebuild.RebuildIndexes(context.Background())
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if result.TagRecords != 2 {
		t.Fatalf("expected 2 tag records, got %d", result.TagRecords)
	}
	if result.GameRecords != 2 {
		t.Fatalf("expected 2 game records for the live game only, got %d", result.GameRecords)
	}
	if module.Index.Contains(entities.GameIndex, "name-stale") {
		t.Fatalf("expected rebuild to clear stale records")
	}

	hits, err := module.Handler.Search.Search(context.Background(), entities.GameIndex, "zip", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 1 || hits[0].KeyTag != "Exercise" {
		t.Fatalf("expected exercise-classified hit, got %+v", hits)
	}
}

func TestSearchValidatesIndexAndQuery(t *testing.T) {
	module := NewInMemoryModule(newStubSubscriber(), entities.KeyTagConfig{}, nil)

	if _, err := module.Handler.Search.Search(context.Background(), "people", "anything", 0); !errors.Is(err, domainerrors.ErrUnknownIndex) {
		t.Fatalf("expected ErrUnknownIndex, got %v", err)
	}
	if _, err := module.Handler.Search.Search(context.Background(), entities.TagIndex, "   ", 0); !errors.Is(err, domainerrors.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}

	for i := 0; i < 25; i++ {
		record := entities.NewTagRecord(fmt.Sprintf("tag-%02d", i), fmt.Sprintf("Circle Game %02d", i))
		if err := module.Index.SaveObject(context.Background(), entities.TagIndex, record); err != nil {
			t.Fatalf("seed tag failed: %v", err)
		}
	}

	// Matching is case-insensitive and pages cap at 20 by default.
	hits, err := module.Handler.Search.Search(context.Background(), entities.TagIndex, "CIRCLE", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(hits) != 20 {
		t.Fatalf("expected default page of 20 hits, got %d", len(hits))
	}

	narrow, err := module.Handler.Search.Search(context.Background(), entities.TagIndex, "circle", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(narrow) != 5 {
		t.Fatalf("expected 5 hits with explicit page size, got %d", len(narrow))
	}
}
