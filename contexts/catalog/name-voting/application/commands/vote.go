package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/catalog/name-voting/application"
	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
	"improvdb/internal/shared/events"
)

// LedgerUseCase owns every mutation of the vote ledger. Each operation runs
// inside one transactional unit so the weight counters and the vote rows can
// never disagree, then triggers canonical-name resolution as a follow-up.
type LedgerUseCase struct {
	UnitOfWork ports.UnitOfWork
	Games      ports.GameHeaderStore
	Resolver   *ResolverUseCase
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

// VoteResult is the outcome of a ledger mutation. CanonicalStale is set when
// the mutation committed but the follow-up resolution step failed; the ledger
// is correct and the header catches up on the next resolution.
type VoteResult struct {
	Effect         entities.VoteEffect
	NameID         string
	Renamed        bool
	CanonicalName  string
	CanonicalStale bool
}

// CastVote points the user's single active vote in a game at the given name.
// Every existing active vote is retracted first with its weight decremented;
// if none of them already targeted the requested name, a new vote is created
// and the name's weight incremented. Voting again for a name the user
// already backs therefore withdraws the vote, reported as removed.
func (uc *LedgerUseCase) CastVote(ctx context.Context, gameID string, nameID string, userID string) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if gameID == "" || nameID == "" || userID == "" {
		return VoteResult{Effect: entities.VoteEffectError}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.requireLiveGame(ctx, gameID); err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	now := uc.Clock.Now()
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	effect := entities.VoteEffectUnknown
	err = uc.UnitOfWork.WithinVoteTransaction(ctx, func(tx ports.VoteTransaction) error {
		target, err := tx.GetName(ctx, gameID, nameID)
		if err != nil {
			return err
		}
		if !target.Live() {
			return domainerrors.ErrNameDeleted
		}

		existing, err := tx.ListActiveVotes(ctx, gameID, userID)
		if err != nil {
			return err
		}
		if len(existing) > 1 {
			logger.Warn("repairing duplicate active votes",
				slog.String("event", "vote_ledger_repair"),
				slog.String("game_id", gameID),
				slog.String("user_id", userID),
				slog.Int("count", len(existing)),
			)
		}

		addingNew := true
		for _, vote := range existing {
			if vote.NameID == nameID {
				addingNew = false
			}
			if err := retractVote(ctx, tx, vote, userID, now); err != nil {
				return err
			}
		}
		if !addingNew {
			// One of the retracted votes already targeted this name, so the
			// cast amounts to a withdrawal.
			effect = entities.VoteEffectRemoved
			return nil
		}

		if err := tx.CreateVote(ctx, entities.NameVote{
			VoteID:    voteID,
			GameID:    gameID,
			NameID:    nameID,
			AddedUser: userID,
			Status:    entities.StatusActive,
			DateAdded: now,
		}); err != nil {
			return err
		}
		if err := tx.AdjustWeight(ctx, gameID, nameID, +1, userID, now); err != nil {
			return err
		}
		if err := appendNameUpdated(ctx, tx, gameID, target, false, now); err != nil {
			return err
		}
		effect = entities.VoteEffectMade
		if len(existing) > 0 {
			effect = entities.VoteEffectChanged
		}
		return nil
	})
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	logger.Info("vote cast",
		slog.String("event", "vote_cast"),
		slog.String("game_id", gameID),
		slog.String("name_id", nameID),
		slog.String("user_id", userID),
		slog.String("effect", string(effect)),
	)
	return uc.finishWithResolution(ctx, gameID, userID, VoteResult{Effect: effect, NameID: nameID})
}

// RetractVote withdraws the user's active vote without casting a new one.
func (uc *LedgerUseCase) RetractVote(ctx context.Context, gameID string, userID string) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if gameID == "" || userID == "" {
		return VoteResult{Effect: entities.VoteEffectError}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.requireLiveGame(ctx, gameID); err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	now := uc.Clock.Now()
	err := uc.UnitOfWork.WithinVoteTransaction(ctx, func(tx ports.VoteTransaction) error {
		existing, err := tx.ListActiveVotes(ctx, gameID, userID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return domainerrors.ErrVoteNotFound
		}
		for _, vote := range existing {
			if err := retractVote(ctx, tx, vote, userID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	logger.Info("vote retracted",
		slog.String("event", "vote_retracted"),
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
	)
	return uc.finishWithResolution(ctx, gameID, userID, VoteResult{Effect: entities.VoteEffectRemoved})
}

// AddName proposes a new name for a game. The name starts unvoted at weight
// zero and never touches the proposer's existing vote or the canonical name;
// backing it is a separate CastVote.
func (uc *LedgerUseCase) AddName(ctx context.Context, gameID string, text string, userID string) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	text = strings.TrimSpace(text)
	if gameID == "" || text == "" || userID == "" {
		return VoteResult{Effect: entities.VoteEffectError}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.requireLiveGame(ctx, gameID); err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	now := uc.Clock.Now()
	nameID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	err = uc.UnitOfWork.WithinVoteTransaction(ctx, func(tx ports.VoteTransaction) error {
		name := entities.Name{
			NameID:    nameID,
			GameID:    gameID,
			Text:      text,
			Weight:    0,
			Status:    entities.StatusActive,
			AddedUser: userID,
			DateAdded: now,
		}
		if err := tx.CreateName(ctx, name); err != nil {
			return err
		}
		return appendNameCreated(ctx, tx, gameID, name, now)
	})
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	logger.Info("name added",
		slog.String("event", "name_added"),
		slog.String("game_id", gameID),
		slog.String("name_id", nameID),
		slog.String("user_id", userID),
	)
	return VoteResult{Effect: entities.VoteEffectUnknown, NameID: nameID}, nil
}

// RemoveName soft-deletes a proposed name. Votes backing it keep their rows
// but stop counting toward resolution; a backer's next cast retracts them.
// The last live name of a game cannot be removed; a game always keeps
// something to call itself.
func (uc *LedgerUseCase) RemoveName(ctx context.Context, gameID string, nameID string, userID string) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if gameID == "" || nameID == "" || userID == "" {
		return VoteResult{Effect: entities.VoteEffectError}, domainerrors.ErrInvalidVoteInput
	}
	if err := uc.requireLiveGame(ctx, gameID); err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	now := uc.Clock.Now()
	err := uc.UnitOfWork.WithinVoteTransaction(ctx, func(tx ports.VoteTransaction) error {
		target, err := tx.GetName(ctx, gameID, nameID)
		if err != nil {
			return err
		}
		if !target.Live() {
			return domainerrors.ErrNameDeleted
		}

		live, err := tx.ListLiveNames(ctx, gameID)
		if err != nil {
			return err
		}
		if len(live) <= 1 {
			return domainerrors.ErrLastName
		}

		if err := tx.MarkNameDeleted(ctx, gameID, nameID, userID, now); err != nil {
			return err
		}
		deleted := target
		deleted.Status = entities.StatusDeleted
		return appendNameUpdated(ctx, tx, gameID, deleted, false, now)
	})
	if err != nil {
		return VoteResult{Effect: entities.VoteEffectError}, err
	}

	logger.Info("name removed",
		slog.String("event", "name_removed"),
		slog.String("game_id", gameID),
		slog.String("name_id", nameID),
		slog.String("user_id", userID),
	)
	return uc.finishWithResolution(ctx, gameID, userID, VoteResult{Effect: entities.VoteEffectRemoved, NameID: nameID})
}

// finishWithResolution runs canonical-name resolution after the ledger
// transaction committed. Resolution failure never rolls the mutation back;
// the result carries CanonicalStale so callers know the header lags.
func (uc *LedgerUseCase) finishWithResolution(ctx context.Context, gameID string, actor string, result VoteResult) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	resolved, err := uc.Resolver.ResolveAndPersist(ctx, gameID, actor)
	if err != nil {
		logger.Error("canonical name resolution failed",
			slog.String("event", "canonical_resolution_failed"),
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
		result.CanonicalStale = true
		return result, nil
	}

	result.CanonicalName = resolved.CanonicalName
	result.Renamed = resolved.Renamed
	if resolved.Renamed {
		result.Effect = entities.VoteEffectRename
	}
	return result, nil
}

func (uc *LedgerUseCase) requireLiveGame(ctx context.Context, gameID string) error {
	header, err := uc.Games.GetGameHeader(ctx, gameID)
	if err != nil {
		return err
	}
	if header.Deleted {
		return domainerrors.ErrGameNotFound
	}
	return nil
}

// retractVote flips one vote to retracted and decrements its name's weight
// inside the surrounding transaction.
func retractVote(ctx context.Context, tx ports.VoteTransaction, vote entities.NameVote, actor string, at time.Time) error {
	if err := tx.MarkVoteRetracted(ctx, vote.GameID, vote.VoteID, actor, at); err != nil {
		return err
	}
	if err := tx.AdjustWeight(ctx, vote.GameID, vote.NameID, -1, actor, at); err != nil {
		return err
	}
	name, err := tx.GetName(ctx, vote.GameID, vote.NameID)
	if err != nil {
		return err
	}
	// Retraction only touches the weight; the name's deleted state is the
	// same on both sides of the event.
	return appendNameUpdated(ctx, tx, vote.GameID, name, !name.Live(), at)
}

// appendNameCreated records a document-creation event for the name so
// downstream consumers (search sync) observe the state the transaction
// commits.
func appendNameCreated(ctx context.Context, outbox ports.OutboxWriter, gameID string, name entities.Name, at time.Time) error {
	after, err := json.Marshal(events.NameState{Name: name.Text, Deleted: !name.Live()})
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, events.DocumentEvent{
		EventType:  events.TypeNameCreated,
		Collection: "names",
		DocumentID: name.NameID,
		GameID:     gameID,
		OccurredAt: at,
		After:      after,
	})
}

// appendNameUpdated records a document-update event carrying the name's real
// prior deleted state, so consumers only ever see a deletion edge when the
// document actually crossed one.
func appendNameUpdated(ctx context.Context, outbox ports.OutboxWriter, gameID string, name entities.Name, wasDeleted bool, at time.Time) error {
	before, err := json.Marshal(events.NameState{Name: name.Text, Deleted: wasDeleted})
	if err != nil {
		return err
	}
	after, err := json.Marshal(events.NameState{Name: name.Text, Deleted: !name.Live()})
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, events.DocumentEvent{
		EventType:  events.TypeNameUpdated,
		Collection: "names",
		DocumentID: name.NameID,
		GameID:     gameID,
		OccurredAt: at,
		Before:     before,
		After:      after,
	})
}
