package queries

import (
	"context"
	"strings"

	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
)

const gamePageSize = 20

// randomSlug is a reserved slug: requesting it returns an arbitrary live
// game via an id-range probe instead of a lookup.
const randomSlug = "random"

type CatalogQueries struct {
	Games    ports.GameRepository
	Tags     ports.TagRepository
	Metadata ports.MetadataRepository
	Notes    ports.NoteRepository
	IDGen    ports.IDGenerator
}

func (q *CatalogQueries) ListGames(ctx context.Context, filter ports.GameFilter, cursor string) (ports.GamePage, error) {
	return q.Games.ListGames(ctx, filter, cursor, gamePageSize)
}

// GetGameBySlug resolves a live game by slug. The reserved slug "random"
// probes the id space from a freshly generated id and wraps around to the
// lowest id when the probe lands past the final game.
func (q *CatalogQueries) GetGameBySlug(ctx context.Context, slug string) (entities.Game, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return entities.Game{}, domainerrors.ErrInvalidInput
	}
	if slug != randomSlug {
		return q.Games.GetLiveGameBySlug(ctx, slug)
	}

	probe, err := q.IDGen.NewID(ctx)
	if err != nil {
		return entities.Game{}, err
	}
	game, found, err := q.Games.FirstLiveGameFrom(ctx, probe)
	if err != nil {
		return entities.Game{}, err
	}
	if !found {
		game, found, err = q.Games.FirstLiveGameFrom(ctx, "")
		if err != nil {
			return entities.Game{}, err
		}
	}
	if !found {
		return entities.Game{}, domainerrors.ErrGameNotFound
	}
	return game, nil
}

func (q *CatalogQueries) ListTags(ctx context.Context) ([]entities.Tag, error) {
	return q.Tags.ListLiveTags(ctx)
}

func (q *CatalogQueries) ListMetadata(ctx context.Context, metadataType entities.MetadataType) ([]entities.GameMetadata, error) {
	if metadataType != entities.MetadataDuration && metadataType != entities.MetadataPlayerCount {
		return nil, domainerrors.ErrInvalidInput
	}
	return q.Metadata.ListLiveMetadata(ctx, metadataType)
}

// ListNotesForGame gathers public notes attached to the game itself, its
// duration and player-count buckets, and any of its tags.
func (q *CatalogQueries) ListNotesForGame(ctx context.Context, gameID string) ([]entities.Note, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	game, err := q.Games.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.Live() {
		return nil, domainerrors.ErrGameNotFound
	}

	parents := make([]string, 0, len(game.TagIDs)+3)
	parents = append(parents, game.GameID)
	if game.DurationID != "" {
		parents = append(parents, game.DurationID)
	}
	if game.PlayerCountID != "" {
		parents = append(parents, game.PlayerCountID)
	}
	parents = append(parents, game.TagIDs...)

	return q.Notes.ListPublicNotesByParents(ctx, parents)
}
