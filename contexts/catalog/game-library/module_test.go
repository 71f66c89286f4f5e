package gamelibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"improvdb/contexts/catalog/game-library/application/commands"
	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
	"improvdb/internal/shared/events"
)

func createGame(t *testing.T, module Module, name string, tagIDs []string, durationID string, playerCountID string) entities.Game {
	t.Helper()
	game, err := module.Games.CreateGame(context.Background(), commands.CreateGameCommand{
		Name:          name,
		Description:   "test game",
		DurationID:    durationID,
		PlayerCountID: playerCountID,
		TagIDs:        tagIDs,
		UserID:        "user-1",
	})
	if err != nil {
		t.Fatalf("create game %q failed: %v", name, err)
	}
	return game
}

func TestCreateGameDerivesSlugAndRejectsCollisions(t *testing.T) {
	module := NewInMemoryModule(nil)

	game := createGame(t, module, "Yes, And... Circle!", nil, "", "")
	if game.Slug != "yes-and-circle" {
		t.Fatalf("expected derived slug yes-and-circle, got %q", game.Slug)
	}

	_, err := module.Games.CreateGame(context.Background(), commands.CreateGameCommand{
		Name:   "YES  AND  CIRCLE",
		UserID: "user-2",
	})
	if !errors.Is(err, domainerrors.ErrSlugConflict) {
		t.Fatalf("expected ErrSlugConflict for matching slug, got %v", err)
	}

	// A deleted game releases its slug for reuse.
	if err := module.Games.DeleteGame(context.Background(), game.GameID, "user-1"); err != nil {
		t.Fatalf("delete game failed: %v", err)
	}
	if _, err := module.Games.CreateGame(context.Background(), commands.CreateGameCommand{
		Name:   "Yes And Circle",
		UserID: "user-2",
	}); err != nil {
		t.Fatalf("expected slug reuse after deletion, got %v", err)
	}
}

func TestListGamesPaginatesWithOpaqueCursor(t *testing.T) {
	module := NewInMemoryModule(nil)
	for i := 1; i <= 25; i++ {
		createGame(t, module, fmt.Sprintf("Game %02d", i), nil, "", "")
	}

	first, err := module.Catalog.ListGames(context.Background(), ports.GameFilter{}, "")
	if err != nil {
		t.Fatalf("list first page failed: %v", err)
	}
	if len(first.Items) != 20 {
		t.Fatalf("expected full page of 20, got %d", len(first.Items))
	}
	if first.Cursor == "" {
		t.Fatalf("expected cursor on a full page")
	}
	if first.Items[0].Name != "Game 01" {
		t.Fatalf("expected name-ordered listing, got %q first", first.Items[0].Name)
	}

	second, err := module.Catalog.ListGames(context.Background(), ports.GameFilter{}, first.Cursor)
	if err != nil {
		t.Fatalf("list second page failed: %v", err)
	}
	if len(second.Items) != 5 {
		t.Fatalf("expected remaining 5 games, got %d", len(second.Items))
	}
	if second.Cursor != "" {
		t.Fatalf("expected empty cursor on final page, got %q", second.Cursor)
	}
	if second.Items[0].Name != "Game 21" {
		t.Fatalf("expected second page to continue after the cursor, got %q", second.Items[0].Name)
	}
}

func TestListGamesAppliesMetadataAndTagFilters(t *testing.T) {
	module := NewInMemoryModule(nil)
	createGame(t, module, "Short Warmup", []string{"tag-warmup"}, "duration-short", "players-small")
	createGame(t, module, "Long Show", []string{"tag-show"}, "duration-long", "players-large")
	createGame(t, module, "Short Show", []string{"tag-show", "tag-warmup"}, "duration-short", "players-large")

	byDuration, err := module.Catalog.ListGames(context.Background(), ports.GameFilter{
		DurationIDs: []string{"duration-short"},
	}, "")
	if err != nil {
		t.Fatalf("filter by duration failed: %v", err)
	}
	if len(byDuration.Items) != 2 {
		t.Fatalf("expected 2 short games, got %d", len(byDuration.Items))
	}

	byTag, err := module.Catalog.ListGames(context.Background(), ports.GameFilter{
		TagIDs: []string{"tag-show"},
	}, "")
	if err != nil {
		t.Fatalf("filter by tag failed: %v", err)
	}
	if len(byTag.Items) != 2 {
		t.Fatalf("expected 2 tagged shows, got %d", len(byTag.Items))
	}

	combined, err := module.Catalog.ListGames(context.Background(), ports.GameFilter{
		DurationIDs:    []string{"duration-short"},
		PlayerCountIDs: []string{"players-large"},
		TagIDs:         []string{"tag-show"},
	}, "")
	if err != nil {
		t.Fatalf("combined filter failed: %v", err)
	}
	if len(combined.Items) != 1 || combined.Items[0].Name != "Short Show" {
		t.Fatalf("expected only Short Show, got %+v", combined.Items)
	}
}

func TestGetGameBySlugSupportsRandomProbe(t *testing.T) {
	module := NewInMemoryModule(nil)
	created := createGame(t, module, "Freeze Tag", nil, "", "")

	bySlug, err := module.Catalog.GetGameBySlug(context.Background(), "freeze-tag")
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if bySlug.GameID != created.GameID {
		t.Fatalf("expected slug lookup to find the game")
	}

	// With a single live game every probe must land on it, wraparound included.
	for i := 0; i < 5; i++ {
		random, err := module.Catalog.GetGameBySlug(context.Background(), "random")
		if err != nil {
			t.Fatalf("random lookup failed: %v", err)
		}
		if random.GameID != created.GameID {
			t.Fatalf("expected the only live game, got %s", random.GameID)
		}
	}

	if err := module.Games.DeleteGame(context.Background(), created.GameID, "user-1"); err != nil {
		t.Fatalf("delete game failed: %v", err)
	}
	if _, err := module.Catalog.GetGameBySlug(context.Background(), "random"); !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound with no live games, got %v", err)
	}
}

func TestMetadataValidationAndOrdering(t *testing.T) {
	module := NewInMemoryModule(nil)

	if _, err := module.Handler.Metadata.CreateMetadata(context.Background(), commands.CreateMetadataCommand{
		Name:   "Any",
		Type:   "weird",
		Min:    1,
		Max:    2,
		UserID: "user-1",
	}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}

	for _, bucket := range []struct {
		name string
		min  int
		max  int
	}{
		{"10-30 minutes", 10, 30},
		{"Under 10 minutes", 0, 10},
		{"30+ minutes", 30, 0},
	} {
		if _, err := module.Handler.Metadata.CreateMetadata(context.Background(), commands.CreateMetadataCommand{
			Name:   bucket.name,
			Type:   entities.MetadataDuration,
			Min:    bucket.min,
			Max:    bucket.max,
			UserID: "user-1",
		}); err != nil {
			t.Fatalf("create metadata %q failed: %v", bucket.name, err)
		}
	}

	buckets, err := module.Catalog.ListMetadata(context.Background(), entities.MetadataDuration)
	if err != nil {
		t.Fatalf("list metadata failed: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("expected 3 duration buckets, got %d", len(buckets))
	}
	if buckets[0].Min != 0 {
		t.Fatalf("expected min-ordered buckets, got %+v first", buckets[0])
	}
}

func TestGameNotesAggregateAcrossParents(t *testing.T) {
	module := NewInMemoryModule(nil)

	tag, err := module.Tags.CreateTag(context.Background(), "Warmup", "warmup games", "user-1")
	if err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	duration, err := module.Handler.Metadata.CreateMetadata(context.Background(), commands.CreateMetadataCommand{
		Name:   "Under 10 minutes",
		Type:   entities.MetadataDuration,
		Min:    0,
		Max:    10,
		UserID: "user-1",
	})
	if err != nil {
		t.Fatalf("create metadata failed: %v", err)
	}
	game := createGame(t, module, "Zip Zap Zop", []string{tag.TagID}, duration.MetadataID, "")

	addNote := func(parentType entities.NoteParentType, parentID string, text string, public bool) {
		t.Helper()
		if _, err := module.Handler.Notes.AddNote(context.Background(), commands.AddNoteCommand{
			ParentType: parentType,
			ParentID:   parentID,
			Text:       text,
			Public:     public,
			UserID:     "user-1",
		}); err != nil {
			t.Fatalf("add note %q failed: %v", text, err)
		}
	}
	addNote(entities.NoteParentGame, game.GameID, "great opener", true)
	addNote(entities.NoteParentTag, tag.TagID, "works for all levels", true)
	addNote(entities.NoteParentMetadata, duration.MetadataID, "keep it tight", true)
	addNote(entities.NoteParentGame, game.GameID, "private coaching note", false)

	notes, err := module.Catalog.ListNotesForGame(context.Background(), game.GameID)
	if err != nil {
		t.Fatalf("list game notes failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 public notes across parents, got %d", len(notes))
	}

	if _, err := module.Handler.Notes.AddNote(context.Background(), commands.AddNoteCommand{
		ParentType: entities.NoteParentGame,
		ParentID:   "missing-game",
		Text:       "orphan",
		Public:     true,
		UserID:     "user-1",
	}); !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound for missing note parent, got %v", err)
	}
}

func TestTagLifecycleEmitsDocumentEvents(t *testing.T) {
	module := NewInMemoryModule(nil)

	tag, err := module.Tags.CreateTag(context.Background(), "Exercise", "", "user-1")
	if err != nil {
		t.Fatalf("create tag failed: %v", err)
	}
	if err := module.Tags.DeleteTag(context.Background(), tag.TagID, "user-1"); err != nil {
		t.Fatalf("delete tag failed: %v", err)
	}

	outbox, err := module.Outbox.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}

	var created, deleted bool
	for _, message := range outbox {
		var event events.DocumentEvent
		if err := json.Unmarshal(message.Payload, &event); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}
		if event.Collection != "tags" || event.DocumentID != tag.TagID {
			continue
		}
		switch event.EventType {
		case events.TypeTagCreated:
			created = true
			if len(event.Before) != 0 {
				t.Fatalf("expected create event without before state")
			}
		case events.TypeTagUpdated:
			var after events.TagState
			if err := json.Unmarshal(event.After, &after); err != nil {
				t.Fatalf("decode after state failed: %v", err)
			}
			if after.Deleted {
				deleted = true
			}
		}
	}
	if !created || !deleted {
		t.Fatalf("expected tag.created and deleting tag.updated events, got created=%t deleted=%t", created, deleted)
	}
}
