package commands

import (
	"errors"
	"testing"
	"time"

	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
)

func candidate(id string, weight int, added time.Time, status entities.RecordStatus) entities.Name {
	return entities.Name{
		NameID:    id,
		GameID:    "game-1",
		Text:      id,
		Weight:    weight,
		Status:    status,
		DateAdded: added,
	}
}

func TestResolvePicksHighestWeight(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	winner, err := Resolve([]entities.Name{
		candidate("name-1", 3, base, entities.StatusActive),
		candidate("name-2", 5, base.Add(-time.Hour), entities.StatusActive),
		candidate("name-3", 1, base.Add(time.Hour), entities.StatusActive),
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.NameID != "name-2" {
		t.Fatalf("expected heaviest name to win, got %s", winner.NameID)
	}
}

func TestResolveBreaksTiesWithNewestName(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	winner, err := Resolve([]entities.Name{
		candidate("name-old", 2, base.Add(-time.Hour), entities.StatusActive),
		candidate("name-new", 2, base, entities.StatusActive),
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.NameID != "name-new" {
		t.Fatalf("expected newest name to win the tie, got %s", winner.NameID)
	}
}

func TestResolveIgnoresDeletedNames(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	winner, err := Resolve([]entities.Name{
		candidate("name-deleted", 9, base, entities.StatusDeleted),
		candidate("name-live", 1, base.Add(-time.Hour), entities.StatusActive),
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.NameID != "name-live" {
		t.Fatalf("expected deleted names to be skipped, got %s", winner.NameID)
	}

	_, err = Resolve([]entities.Name{
		candidate("name-deleted", 9, base, entities.StatusDeleted),
	})
	if !errors.Is(err, domainerrors.ErrNoNames) {
		t.Fatalf("expected ErrNoNames when nothing is live, got %v", err)
	}
}

func TestResolveEmptySet(t *testing.T) {
	_, err := Resolve(nil)
	if !errors.Is(err, domainerrors.ErrNoNames) {
		t.Fatalf("expected ErrNoNames for empty input, got %v", err)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	names := []entities.Name{
		candidate("name-1", 2, base.Add(-2*time.Hour), entities.StatusActive),
		candidate("name-2", 2, base.Add(-time.Hour), entities.StatusActive),
		candidate("name-3", 1, base, entities.StatusActive),
	}
	first, err := Resolve(names)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	// Reversed input order must not change the winner.
	reversed := []entities.Name{names[2], names[1], names[0]}
	second, err := Resolve(reversed)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if first.NameID != second.NameID {
		t.Fatalf("expected order-independent winner, got %s and %s", first.NameID, second.NameID)
	}
}
