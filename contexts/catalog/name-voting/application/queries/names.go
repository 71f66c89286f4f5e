package queries

import (
	"context"

	"improvdb/contexts/catalog/name-voting/application/commands"
	"improvdb/contexts/catalog/name-voting/domain/entities"
	domainerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	"improvdb/contexts/catalog/name-voting/ports"
)

// NameQueries serves read paths over the vote ledger. Reads bypass the unit
// of work; they tolerate the snapshot the store gives them.
type NameQueries struct {
	Names ports.NameRepository
	Votes ports.VoteRepository
	Games ports.GameHeaderStore
}

// NameView is a live name annotated with whether it currently holds the
// canonical slot.
type NameView struct {
	Name      entities.Name
	Canonical bool
}

// ListNames returns a game's live names ordered by weight, flagging the
// resolution winner.
func (q *NameQueries) ListNames(ctx context.Context, gameID string) ([]NameView, error) {
	if gameID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	if _, err := q.Games.GetGameHeader(ctx, gameID); err != nil {
		return nil, err
	}

	names, err := q.Names.ListLiveNames(ctx, gameID)
	if err != nil {
		return nil, err
	}

	views := make([]NameView, 0, len(names))
	winner, err := commands.Resolve(names)
	for _, name := range names {
		views = append(views, NameView{
			Name:      name,
			Canonical: err == nil && name.NameID == winner.NameID,
		})
	}
	return views, nil
}

// MyVotes returns the user's active votes in a game. A healthy ledger yields
// at most one entry.
func (q *NameQueries) MyVotes(ctx context.Context, gameID string, userID string) ([]entities.NameVote, error) {
	if gameID == "" || userID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return q.Votes.ListActiveVotes(ctx, gameID, userID)
}

// VoteTally cross-checks each live name's denormalized weight against the
// count of active votes behind it, surfacing counter drift for operators.
func (q *NameQueries) VoteTally(ctx context.Context, gameID string) ([]entities.NameTally, error) {
	if gameID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	names, err := q.Names.ListLiveNames(ctx, gameID)
	if err != nil {
		return nil, err
	}

	tallies := make([]entities.NameTally, 0, len(names))
	for _, name := range names {
		count, err := q.Votes.CountActiveVotesByName(ctx, gameID, name.NameID)
		if err != nil {
			return nil, err
		}
		tallies = append(tallies, entities.NameTally{
			NameID:      name.NameID,
			Text:        name.Text,
			Weight:      name.Weight,
			ActiveVotes: count,
		})
	}
	return tallies, nil
}
