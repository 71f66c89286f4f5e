package commands

import (
	"context"
	"log/slog"

	"improvdb/contexts/catalog/name-voting/application"
	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
)

// Resolve picks the canonical name from a candidate set: highest weight wins,
// and among equal weights the newest DateAdded wins. Deleted names never
// participate. The function is pure so callers can recompute it anywhere and
// land on the same answer.
func Resolve(names []entities.Name) (entities.Name, error) {
	var best entities.Name
	found := false
	for _, candidate := range names {
		if !candidate.Live() {
			continue
		}
		if !found {
			best = candidate
			found = true
			continue
		}
		if candidate.Weight > best.Weight {
			best = candidate
			continue
		}
		if candidate.Weight == best.Weight && candidate.DateAdded.After(best.DateAdded) {
			best = candidate
		}
	}
	if !found {
		return entities.Name{}, domainerrors.ErrNoNames
	}
	return best, nil
}

// ResolverUseCase recomputes a game's canonical name from the vote ledger and
// persists it on the game header when it changed.
type ResolverUseCase struct {
	Names  ports.NameRepository
	Games  ports.GameHeaderStore
	Clock  ports.Clock
	Logger *slog.Logger
}

// ResolveResult reports the outcome of a resolution pass.
type ResolveResult struct {
	CanonicalName string
	Renamed       bool
}

// ResolveAndPersist runs resolution against the current live names and writes
// the winner to the game header if it differs from the stored name. The write
// is idempotent: an unchanged winner produces no store mutation.
func (uc *ResolverUseCase) ResolveAndPersist(ctx context.Context, gameID string, actor string) (ResolveResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	header, err := uc.Games.GetGameHeader(ctx, gameID)
	if err != nil {
		return ResolveResult{}, err
	}

	names, err := uc.Names.ListLiveNames(ctx, gameID)
	if err != nil {
		return ResolveResult{}, err
	}

	winner, err := Resolve(names)
	if err != nil {
		return ResolveResult{}, err
	}

	if winner.Text == header.Name {
		return ResolveResult{CanonicalName: header.Name}, nil
	}

	if err := uc.Games.UpdateGameName(ctx, gameID, winner.Text, actor, uc.Clock.Now()); err != nil {
		return ResolveResult{}, err
	}

	logger.Info("canonical name updated",
		slog.String("event", "canonical_name_updated"),
		slog.String("game_id", gameID),
		slog.String("previous", header.Name),
		slog.String("canonical", winner.Text),
	)
	return ResolveResult{CanonicalName: winner.Text, Renamed: true}, nil
}

// RebuildCanonicalName is the repair entry point for games whose header
// drifted from the ledger, typically after a resolution step failed post
// commit. It is ResolveAndPersist under a maintenance actor.
func (uc *ResolverUseCase) RebuildCanonicalName(ctx context.Context, gameID string) (ResolveResult, error) {
	return uc.ResolveAndPersist(ctx, gameID, "system:rebuild")
}
