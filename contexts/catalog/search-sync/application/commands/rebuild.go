package commands

import (
	"context"
	"log/slog"

	"improvdb/contexts/catalog/search-sync/application"
	"improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/contexts/catalog/search-sync/ports"
)

// RebuildUseCase repopulates both indices from the catalog of record.
type RebuildUseCase struct {
	Index   ports.SearchIndex
	Catalog ports.CatalogReader
	KeyTags entities.KeyTagConfig
	Logger  *slog.Logger
}

type RebuildResult struct {
	TagRecords  int
	GameRecords int
}

// RebuildIndexes clears both indices and bulk-loads every live tag and every
// live (game, name) pair. It reads the catalog directly, so the result is
// exact as of the read, unlike the event-driven incremental path.
func (uc *RebuildUseCase) RebuildIndexes(ctx context.Context) (RebuildResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.Index.Clear(ctx, entities.TagIndex); err != nil {
		return RebuildResult{}, err
	}
	if err := uc.Index.Clear(ctx, entities.GameIndex); err != nil {
		return RebuildResult{}, err
	}

	tags, err := uc.Catalog.ListLiveTags(ctx)
	if err != nil {
		return RebuildResult{}, err
	}
	tagRecords := make([]entities.Record, 0, len(tags))
	for _, tag := range tags {
		tagRecords = append(tagRecords, entities.NewTagRecord(tag.TagID, tag.Name))
	}
	if len(tagRecords) > 0 {
		if _, err := uc.Index.SaveObjects(ctx, entities.TagIndex, tagRecords); err != nil {
			return RebuildResult{}, err
		}
	}

	games, err := uc.Catalog.ListLiveGameProjections(ctx)
	if err != nil {
		return RebuildResult{}, err
	}
	gameRecords := make([]entities.Record, 0, len(games))
	for _, game := range games {
		names, err := uc.Catalog.ListLiveNameProjections(ctx, game.GameID)
		if err != nil {
			return RebuildResult{}, err
		}
		keyTag := uc.KeyTags.KeyTagFor(game.TagIDs)
		for _, name := range names {
			gameRecords = append(gameRecords, entities.NewGameRecord(
				game.GameID, game.Slug, name.NameID, name.Text, keyTag,
			))
		}
	}
	if len(gameRecords) > 0 {
		if _, err := uc.Index.SaveObjects(ctx, entities.GameIndex, gameRecords); err != nil {
			return RebuildResult{}, err
		}
	}

	logger.Info("search indices rebuilt",
		slog.String("event", "search_indices_rebuilt"),
		slog.Int("tag_records", len(tagRecords)),
		slog.Int("game_records", len(gameRecords)),
	)
	return RebuildResult{TagRecords: len(tagRecords), GameRecords: len(gameRecords)}, nil
}
