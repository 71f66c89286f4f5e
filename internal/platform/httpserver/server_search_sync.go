package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	searchsyncerrors "improvdb/contexts/catalog/search-sync/domain/errors"
	searchsynchttp "improvdb/contexts/catalog/search-sync/transport/http"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	index := r.PathValue("index")
	query := r.URL.Query()

	hitsPerPage := 0
	if raw := query.Get("hits_per_page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeSearchSyncError(w, http.StatusBadRequest, "invalid_hits_per_page", "hits_per_page must be an integer")
			return
		}
		hitsPerPage = parsed
	}

	resp, err := s.search.Handler.SearchHandler(r.Context(), index, query.Get("query"), hitsPerPage)
	if err != nil {
		writeSearchSyncDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	resp, err := s.search.Handler.RebuildHandler(r.Context())
	if err != nil {
		writeSearchSyncDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSearchSyncDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, searchsyncerrors.ErrUnknownIndex):
		writeSearchSyncError(w, http.StatusNotFound, "unknown_index", err.Error())
	case errors.Is(err, searchsyncerrors.ErrInvalidQuery):
		writeSearchSyncError(w, http.StatusBadRequest, "invalid_query", err.Error())
	default:
		writeSearchSyncError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSearchSyncError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, searchsynchttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
