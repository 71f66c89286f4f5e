package namevoting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	httptransport "improvdb/contexts/catalog/name-voting/transport/http"
	"improvdb/internal/shared/events"
)

func seedTime(offset time.Duration) time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC).Add(offset)
}

func TestAddNameStartsUnvoted(t *testing.T) {
	module := NewInMemoryModule(nil, nil, nil)
	module.Store.SetGame(entities.GameHeader{
		GameID: "game-1",
		Name:   "Freeze Tag",
		Slug:   "freeze-tag",
	})

	result, err := module.Handler.AddNameHandler(context.Background(), "game-1", "user-1", httptransport.AddNameRequest{
		Name: "  Freeze Tag  ",
	})
	if err != nil {
		t.Fatalf("add name failed: %v", err)
	}
	if result.NameID == "" {
		t.Fatalf("expected name id on add result")
	}
	if result.Effect == string(entities.VoteEffectRename) {
		t.Fatalf("expected proposing a name to leave the canonical name alone")
	}

	names, err := module.Handler.ListNamesHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("list names failed: %v", err)
	}
	if len(names.Items) != 1 {
		t.Fatalf("expected one live name, got %d", len(names.Items))
	}
	if names.Items[0].Name != "Freeze Tag" {
		t.Fatalf("expected trimmed name text, got %q", names.Items[0].Name)
	}
	if names.Items[0].Weight != 0 {
		t.Fatalf("expected a fresh name to start unvoted, got weight %d", names.Items[0].Weight)
	}

	mine, err := module.Handler.MyVotesHandler(context.Background(), "game-1", "user-1")
	if err != nil {
		t.Fatalf("my votes failed: %v", err)
	}
	if len(mine.Items) != 0 {
		t.Fatalf("expected no vote from proposing a name, got %+v", mine.Items)
	}
	if module.Store.GameNameWrites() != 0 {
		t.Fatalf("expected no header write from proposing a name")
	}

	outbox, err := module.Outbox.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	foundCreated := false
	for _, message := range outbox {
		var event events.DocumentEvent
		if err := json.Unmarshal(message.Payload, &event); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}
		if event.EventType == events.TypeNameCreated {
			foundCreated = true
			if event.Collection != "names" {
				t.Fatalf("expected names collection, got %s", event.Collection)
			}
			if event.GameID != "game-1" {
				t.Fatalf("expected game id on name event, got %s", event.GameID)
			}
		}
	}
	if !foundCreated {
		t.Fatalf("expected name.created event in outbox")
	}
}

func TestAddNameLeavesExistingVoteAlone(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Zip", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Zip", Slug: "zip"})

	result, err := module.Handler.AddNameHandler(context.Background(), "game-1", "user-1", httptransport.AddNameRequest{
		Name: "Zap",
	})
	if err != nil {
		t.Fatalf("add name failed: %v", err)
	}
	if result.Effect == string(entities.VoteEffectRename) {
		t.Fatalf("expected no rename from a name proposal, got %s", result.Effect)
	}

	tally, err := module.Handler.VoteTallyHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("vote tally failed: %v", err)
	}
	for _, item := range tally.Items {
		switch item.Name {
		case "Zip":
			if item.Weight != 1 {
				t.Fatalf("expected the backed name to keep its weight, got %d", item.Weight)
			}
		case "Zap":
			if item.Weight != 0 {
				t.Fatalf("expected the proposed name to start at weight 0, got %d", item.Weight)
			}
		}
	}

	mine, err := module.Handler.MyVotesHandler(context.Background(), "game-1", "user-1")
	if err != nil {
		t.Fatalf("my votes failed: %v", err)
	}
	if len(mine.Items) != 1 || mine.Items[0].NameID != "name-1" {
		t.Fatalf("expected the proposer's vote to stay on name-1, got %+v", mine.Items)
	}
	if module.Store.GameNameWrites() != 0 {
		t.Fatalf("expected the game to keep its name after a proposal")
	}
}

func TestCastVoteMovesSingleVoteAndRenames(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Zip Zap Zop", Weight: 2, Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{NameID: "name-2", GameID: "game-1", Text: "Energy Circle", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{VoteID: "vote-2", GameID: "game-1", NameID: "name-1", AddedUser: "user-2", Status: entities.StatusActive, DateAdded: seedTime(-90 * time.Minute)},
			{VoteID: "vote-3", GameID: "game-1", NameID: "name-2", AddedUser: "user-3", Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Zip Zap Zop", Slug: "zip-zap-zop"})

	result, err := module.Handler.CastVoteHandler(context.Background(), "game-1", "user-2", httptransport.CastVoteRequest{
		NameID: "name-2",
	})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if result.Effect != string(entities.VoteEffectRename) {
		t.Fatalf("expected the moved vote to flip the canonical name, got effect %s", result.Effect)
	}
	if result.CanonicalName != "Energy Circle" {
		t.Fatalf("expected canonical Energy Circle, got %q", result.CanonicalName)
	}

	tally, err := module.Handler.VoteTallyHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("vote tally failed: %v", err)
	}
	for _, item := range tally.Items {
		if !item.Consistent {
			t.Fatalf("weight drifted from active votes for %s: weight=%d votes=%d", item.NameID, item.Weight, item.ActiveVotes)
		}
		switch item.NameID {
		case "name-1":
			if item.Weight != 1 {
				t.Fatalf("expected name-1 weight 1 after retraction, got %d", item.Weight)
			}
		case "name-2":
			if item.Weight != 2 {
				t.Fatalf("expected name-2 weight 2 after switch, got %d", item.Weight)
			}
		}
	}

	mine, err := module.Handler.MyVotesHandler(context.Background(), "game-1", "user-2")
	if err != nil {
		t.Fatalf("my votes failed: %v", err)
	}
	if len(mine.Items) != 1 || mine.Items[0].NameID != "name-2" {
		t.Fatalf("expected exactly one active vote on name-2, got %+v", mine.Items)
	}
}

func TestCastVoteTogglesOffWhenAlreadyBacking(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Bus Stop", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Bus Stop", Slug: "bus-stop"})

	// Casting for the name the user already backs withdraws the vote.
	result, err := module.Handler.CastVoteHandler(context.Background(), "game-1", "user-1", httptransport.CastVoteRequest{
		NameID: "name-1",
	})
	if err != nil {
		t.Fatalf("repeat cast failed: %v", err)
	}
	if result.Effect != string(entities.VoteEffectRemoved) {
		t.Fatalf("expected removed effect for a repeat vote, got %s", result.Effect)
	}

	tally, err := module.Handler.VoteTallyHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("vote tally failed: %v", err)
	}
	if len(tally.Items) != 1 || tally.Items[0].Weight != 0 {
		t.Fatalf("expected the weight back at 0, got %+v", tally.Items)
	}
	mine, err := module.Handler.MyVotesHandler(context.Background(), "game-1", "user-1")
	if err != nil {
		t.Fatalf("my votes failed: %v", err)
	}
	if len(mine.Items) != 0 {
		t.Fatalf("expected no active vote after the toggle, got %+v", mine.Items)
	}
	if module.Store.GameNameWrites() != 0 {
		t.Fatalf("expected no header write when canonical name is unchanged")
	}
}

func TestCastVoteRepairsDuplicateActiveVotes(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Harold", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-3 * time.Hour)},
			{NameID: "name-2", GameID: "game-1", Text: "The Harold", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{NameID: "name-3", GameID: "game-1", Text: "Harold Prime", Weight: 0, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-3 * time.Hour)},
			{VoteID: "vote-2", GameID: "game-1", NameID: "name-2", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Harold", Slug: "harold"})

	// Both stray votes are retracted before the new one lands.
	if _, err := module.Handler.CastVoteHandler(context.Background(), "game-1", "user-1", httptransport.CastVoteRequest{
		NameID: "name-3",
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	mine, err := module.Handler.MyVotesHandler(context.Background(), "game-1", "user-1")
	if err != nil {
		t.Fatalf("my votes failed: %v", err)
	}
	if len(mine.Items) != 1 || mine.Items[0].NameID != "name-3" {
		t.Fatalf("expected the duplicate votes to be repaired, got %+v", mine.Items)
	}

	tally, err := module.Handler.VoteTallyHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("vote tally failed: %v", err)
	}
	for _, item := range tally.Items {
		if !item.Consistent {
			t.Fatalf("expected repaired weights to match active votes, got %+v", item)
		}
	}
}

func TestRetractingOrphanVoteEmitsNoDeletionEdge(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-dead", GameID: "game-1", Text: "Old Standby", Weight: 1, Status: entities.StatusDeleted, DateAdded: seedTime(-2 * time.Hour)},
			{NameID: "name-live", GameID: "game-1", Text: "New Standby", Weight: 0, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			// The vote outlived its name; the next cast retracts it.
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-dead", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "New Standby", Slug: "standby"})

	if _, err := module.Handler.CastVoteHandler(context.Background(), "game-1", "user-1", httptransport.CastVoteRequest{
		NameID: "name-live",
	}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	outbox, err := module.Outbox.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	sawDeadUpdate := false
	for _, message := range outbox {
		var event events.DocumentEvent
		if err := json.Unmarshal(message.Payload, &event); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}
		if event.EventType != events.TypeNameUpdated || event.DocumentID != "name-dead" {
			continue
		}
		sawDeadUpdate = true
		var before, after events.NameState
		if err := json.Unmarshal(event.Before, &before); err != nil {
			t.Fatalf("decode before state failed: %v", err)
		}
		if err := json.Unmarshal(event.After, &after); err != nil {
			t.Fatalf("decode after state failed: %v", err)
		}
		// The name was already deleted on both sides of the weight change;
		// consumers must not see a fresh deletion edge and tombstone twice.
		if !before.Deleted || !after.Deleted {
			t.Fatalf("expected already-deleted state on both sides, got before=%t after=%t", before.Deleted, after.Deleted)
		}
	}
	if !sawDeadUpdate {
		t.Fatalf("expected an update event for the orphaned name's weight change")
	}
}

func TestRetractVoteCanFlipCanonicalName(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Word Ball", Weight: 2, Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{NameID: "name-2", GameID: "game-1", Text: "Sound Ball", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		[]entities.NameVote{
			{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{VoteID: "vote-2", GameID: "game-1", NameID: "name-1", AddedUser: "user-2", Status: entities.StatusActive, DateAdded: seedTime(-90 * time.Minute)},
			{VoteID: "vote-3", GameID: "game-1", NameID: "name-2", AddedUser: "user-3", Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Word Ball", Slug: "word-ball"})

	// Dropping one backer leaves a 1-1 tie; the newer name wins it.
	result, err := module.Handler.RetractVoteHandler(context.Background(), "game-1", "user-2")
	if err != nil {
		t.Fatalf("retract vote failed: %v", err)
	}
	if result.Effect != string(entities.VoteEffectRename) {
		t.Fatalf("expected retraction to rename via tie-break, got %s", result.Effect)
	}
	if result.CanonicalName != "Sound Ball" {
		t.Fatalf("expected newer name to win the tie, got %q", result.CanonicalName)
	}

	if _, err := module.Handler.RetractVoteHandler(context.Background(), "game-1", "user-2"); !errors.Is(err, domainerrors.ErrVoteNotFound) {
		t.Fatalf("expected ErrVoteNotFound on second retraction, got %v", err)
	}
}

func TestRemoveNameGuardsLastLiveName(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Hot Spot", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Hot Spot", Slug: "hot-spot"})

	_, err := module.Handler.RemoveNameHandler(context.Background(), "game-1", "name-1", "user-1")
	if !errors.Is(err, domainerrors.ErrLastName) {
		t.Fatalf("expected ErrLastName, got %v", err)
	}
}

func TestRemoveCanonicalNamePromotesRunnerUp(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "Big Booty", Weight: 2, Status: entities.StatusActive, DateAdded: seedTime(-2 * time.Hour)},
			{NameID: "name-2", GameID: "game-1", Text: "Rhythm Circle", Weight: 1, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Big Booty", Slug: "big-booty"})

	result, err := module.Handler.RemoveNameHandler(context.Background(), "game-1", "name-1", "user-1")
	if err != nil {
		t.Fatalf("remove name failed: %v", err)
	}
	if result.Effect != string(entities.VoteEffectRename) {
		t.Fatalf("expected rename after removing the canonical name, got %s", result.Effect)
	}
	if result.CanonicalName != "Rhythm Circle" {
		t.Fatalf("expected runner-up promotion, got %q", result.CanonicalName)
	}

	names, err := module.Handler.ListNamesHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("list names failed: %v", err)
	}
	if len(names.Items) != 1 || names.Items[0].NameID != "name-2" {
		t.Fatalf("expected only the surviving name, got %+v", names.Items)
	}

	if _, err := module.Handler.RemoveNameHandler(context.Background(), "game-1", "name-1", "user-1"); !errors.Is(err, domainerrors.ErrNameDeleted) {
		t.Fatalf("expected ErrNameDeleted on repeat removal, got %v", err)
	}
}

func TestVoteOperationsRejectMissingOrDeletedGame(t *testing.T) {
	module := NewInMemoryModule(nil, nil, nil)

	_, err := module.Handler.CastVoteHandler(context.Background(), "missing", "user-1", httptransport.CastVoteRequest{NameID: "name-1"})
	if !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound for missing game, got %v", err)
	}

	module.Store.SetGame(entities.GameHeader{GameID: "game-9", Name: "Gone", Slug: "gone", Deleted: true})
	_, err = module.Handler.AddNameHandler(context.Background(), "game-9", "user-1", httptransport.AddNameRequest{Name: "Revival"})
	if !errors.Is(err, domainerrors.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound for deleted game, got %v", err)
	}

	_, err = module.Handler.CastVoteHandler(context.Background(), "", "user-1", httptransport.CastVoteRequest{NameID: "name-1"})
	if !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected ErrInvalidVoteInput for empty game id, got %v", err)
	}
}

func TestRebuildCanonicalNameRepairsStaleHeader(t *testing.T) {
	module := NewInMemoryModule(
		[]entities.Name{
			{NameID: "name-1", GameID: "game-1", Text: "New Choice", Weight: 3, Status: entities.StatusActive, DateAdded: seedTime(-time.Hour)},
		},
		nil,
		nil,
	)
	module.Store.SetGame(entities.GameHeader{GameID: "game-1", Name: "Old Choice", Slug: "old-choice"})

	resp, err := module.Handler.RebuildCanonicalHandler(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("rebuild canonical failed: %v", err)
	}
	if !resp.Renamed || resp.CanonicalName != "New Choice" {
		t.Fatalf("expected rebuild to repair the header, got %+v", resp)
	}
	if module.Store.GameNameWrites() != 1 {
		t.Fatalf("expected exactly one header write, got %d", module.Store.GameNameWrites())
	}

	// Second pass is a no-op.
	if _, err := module.Handler.RebuildCanonicalHandler(context.Background(), "game-1"); err != nil {
		t.Fatalf("repeat rebuild failed: %v", err)
	}
	if module.Store.GameNameWrites() != 1 {
		t.Fatalf("expected rebuild to be idempotent, got %d writes", module.Store.GameNameWrites())
	}
}
