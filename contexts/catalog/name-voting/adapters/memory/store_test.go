package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
)

func TestCreateVoteEnforcesSingleActiveVote(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := NewStore(nil, []entities.NameVote{
		{VoteID: "vote-1", GameID: "game-1", NameID: "name-1", AddedUser: "user-1", Status: entities.StatusActive, DateAdded: now},
	})

	err := store.CreateVote(context.Background(), entities.NameVote{
		VoteID:    "vote-2",
		GameID:    "game-1",
		NameID:    "name-2",
		AddedUser: "user-1",
		Status:    entities.StatusActive,
		DateAdded: now.Add(time.Minute),
	})
	if !errors.Is(err, domainerrors.ErrDuplicateActiveVote) {
		t.Fatalf("expected ErrDuplicateActiveVote, got %v", err)
	}

	// A retracted vote no longer blocks a new one.
	if err := store.MarkVoteRetracted(context.Background(), "game-1", "vote-1", "user-1", now.Add(time.Minute)); err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if err := store.CreateVote(context.Background(), entities.NameVote{
		VoteID:    "vote-2",
		GameID:    "game-1",
		NameID:    "name-2",
		AddedUser: "user-1",
		Status:    entities.StatusActive,
		DateAdded: now.Add(2 * time.Minute),
	}); err != nil {
		t.Fatalf("create after retraction failed: %v", err)
	}
}

func TestAdjustWeightRejectsNegativeResult(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := NewStore([]entities.Name{
		{NameID: "name-1", GameID: "game-1", Text: "One Word Story", Weight: 0, Status: entities.StatusActive, DateAdded: now},
	}, nil)

	err := store.AdjustWeight(context.Background(), "game-1", "name-1", -1, "user-1", now)
	if !errors.Is(err, domainerrors.ErrTransactionConflict) {
		t.Fatalf("expected conflict on negative weight, got %v", err)
	}
}

func TestVoteTransactionRollsBackOnFailure(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	store := NewStore([]entities.Name{
		{NameID: "name-1", GameID: "game-1", Text: "Freeze", Weight: 0, Status: entities.StatusActive, DateAdded: now},
	}, nil)

	failure := errors.New("boom")
	err := store.WithinVoteTransaction(context.Background(), func(tx ports.VoteTransaction) error {
		if err := tx.CreateVote(context.Background(), entities.NameVote{
			VoteID:    "vote-1",
			GameID:    "game-1",
			NameID:    "name-1",
			AddedUser: "user-1",
			Status:    entities.StatusActive,
			DateAdded: now,
		}); err != nil {
			return err
		}
		if err := tx.AdjustWeight(context.Background(), "game-1", "name-1", +1, "user-1", now); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected transaction error to surface, got %v", err)
	}

	votes, err := store.ListActiveVotes(context.Background(), "game-1", "user-1")
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 0 {
		t.Fatalf("expected rollback to drop the created vote, got %d", len(votes))
	}
	name, err := store.GetName(context.Background(), "game-1", "name-1")
	if err != nil {
		t.Fatalf("get name failed: %v", err)
	}
	if name.Weight != 0 {
		t.Fatalf("expected rollback to restore weight 0, got %d", name.Weight)
	}
}
