package httpadapter

import (
	"context"
	"log/slog"

	"improvdb/contexts/catalog/name-voting/application/commands"
	"improvdb/contexts/catalog/name-voting/application/queries"
	httptransport "improvdb/contexts/catalog/name-voting/transport/http"
)

type Handler struct {
	Ledger   commands.LedgerUseCase
	Resolver *commands.ResolverUseCase
	Names    queries.NameQueries
	Logger   *slog.Logger
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	gameID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Ledger.CastVote(ctx, gameID, req.NameID, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(result), nil
}

func (h Handler) RetractVoteHandler(ctx context.Context, gameID string, userID string) (httptransport.VoteResponse, error) {
	result, err := h.Ledger.RetractVote(ctx, gameID, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(result), nil
}

func (h Handler) AddNameHandler(
	ctx context.Context,
	gameID string,
	userID string,
	req httptransport.AddNameRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Ledger.AddName(ctx, gameID, req.Name, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(result), nil
}

func (h Handler) RemoveNameHandler(
	ctx context.Context,
	gameID string,
	nameID string,
	userID string,
) (httptransport.VoteResponse, error) {
	result, err := h.Ledger.RemoveName(ctx, gameID, nameID, userID)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(result), nil
}

func (h Handler) ListNamesHandler(ctx context.Context, gameID string) (httptransport.NameListResponse, error) {
	views, err := h.Names.ListNames(ctx, gameID)
	if err != nil {
		return httptransport.NameListResponse{}, err
	}
	items := make([]httptransport.NameItem, 0, len(views))
	for _, view := range views {
		items = append(items, httptransport.NameItem{
			NameID:    view.Name.NameID,
			Name:      view.Name.Text,
			Weight:    view.Name.Weight,
			Canonical: view.Canonical,
			AddedUser: view.Name.AddedUser,
			DateAdded: view.Name.DateAdded,
		})
	}
	return httptransport.NameListResponse{GameID: gameID, Items: items}, nil
}

func (h Handler) MyVotesHandler(ctx context.Context, gameID string, userID string) (httptransport.MyVotesResponse, error) {
	votes, err := h.Names.MyVotes(ctx, gameID, userID)
	if err != nil {
		return httptransport.MyVotesResponse{}, err
	}
	items := make([]httptransport.MyVoteItem, 0, len(votes))
	for _, vote := range votes {
		items = append(items, httptransport.MyVoteItem{
			VoteID:    vote.VoteID,
			NameID:    vote.NameID,
			DateAdded: vote.DateAdded,
		})
	}
	return httptransport.MyVotesResponse{GameID: gameID, Items: items}, nil
}

func (h Handler) VoteTallyHandler(ctx context.Context, gameID string) (httptransport.TallyResponse, error) {
	tallies, err := h.Names.VoteTally(ctx, gameID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	items := make([]httptransport.TallyItem, 0, len(tallies))
	for _, tally := range tallies {
		items = append(items, httptransport.TallyItem{
			NameID:      tally.NameID,
			Name:        tally.Text,
			Weight:      tally.Weight,
			ActiveVotes: tally.ActiveVotes,
			Consistent:  tally.Consistent(),
		})
	}
	return httptransport.TallyResponse{GameID: gameID, Items: items}, nil
}

func (h Handler) RebuildCanonicalHandler(ctx context.Context, gameID string) (httptransport.RebuildCanonicalResponse, error) {
	result, err := h.Resolver.RebuildCanonicalName(ctx, gameID)
	if err != nil {
		return httptransport.RebuildCanonicalResponse{}, err
	}
	return httptransport.RebuildCanonicalResponse{
		GameID:        gameID,
		CanonicalName: result.CanonicalName,
		Renamed:       result.Renamed,
	}, nil
}

func voteResponse(result commands.VoteResult) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		Effect:         string(result.Effect),
		NameID:         result.NameID,
		Renamed:        result.Renamed,
		CanonicalName:  result.CanonicalName,
		CanonicalStale: result.CanonicalStale,
	}
}
