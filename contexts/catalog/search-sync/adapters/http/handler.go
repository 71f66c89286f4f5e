package httpadapter

import (
	"context"
	"log/slog"

	"improvdb/contexts/catalog/search-sync/application/commands"
	"improvdb/contexts/catalog/search-sync/application/queries"
	httptransport "improvdb/contexts/catalog/search-sync/transport/http"
)

type Handler struct {
	Rebuild *commands.RebuildUseCase
	Search  queries.SearchQueries
	Logger  *slog.Logger
}

func (h Handler) RebuildHandler(ctx context.Context) (httptransport.RebuildResponse, error) {
	result, err := h.Rebuild.RebuildIndexes(ctx)
	if err != nil {
		return httptransport.RebuildResponse{}, err
	}
	return httptransport.RebuildResponse{
		TagRecords:  result.TagRecords,
		GameRecords: result.GameRecords,
	}, nil
}

func (h Handler) SearchHandler(
	ctx context.Context,
	index string,
	query string,
	hitsPerPage int,
) (httptransport.SearchResponse, error) {
	records, err := h.Search.Search(ctx, index, query, hitsPerPage)
	if err != nil {
		return httptransport.SearchResponse{}, err
	}
	hits := make([]httptransport.SearchHit, 0, len(records))
	for _, record := range records {
		hits = append(hits, httptransport.SearchHit{
			ObjectID: record.ObjectID,
			Name:     record.Name,
			TagID:    record.TagID,
			GameID:   record.GameID,
			GameSlug: record.GameSlug,
			NameID:   record.NameID,
			KeyTag:   record.KeyTag,
		})
	}
	return httptransport.SearchResponse{Index: index, Query: query, Hits: hits}, nil
}
