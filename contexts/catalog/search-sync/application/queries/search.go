package queries

import (
	"context"
	"strings"

	"improvdb/contexts/catalog/search-sync/domain/entities"
	domainerrors "improvdb/contexts/catalog/search-sync/domain/errors"
	"improvdb/contexts/catalog/search-sync/ports"
)

const defaultHitsPerPage = 20

type SearchQueries struct {
	Index ports.SearchIndex
}

func (q *SearchQueries) Search(ctx context.Context, index string, query string, hitsPerPage int) ([]entities.Record, error) {
	switch index {
	case entities.TagIndex, entities.GameIndex:
	default:
		return nil, domainerrors.ErrUnknownIndex
	}
	if strings.TrimSpace(query) == "" {
		return nil, domainerrors.ErrInvalidQuery
	}
	if hitsPerPage <= 0 {
		hitsPerPage = defaultHitsPerPage
	}
	return q.Index.Search(ctx, index, query, hitsPerPage)
}
