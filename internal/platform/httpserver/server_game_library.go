package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	gamelibraryerrors "improvdb/contexts/catalog/game-library/domain/errors"
	gamelibraryports "improvdb/contexts/catalog/game-library/ports"
	gamelibraryhttp "improvdb/contexts/catalog/game-library/transport/http"
)

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := gamelibraryports.GameFilter{
		DurationIDs:    query["duration_id"],
		PlayerCountIDs: query["player_count_id"],
		TagIDs:         query["tag_id"],
	}

	resp, err := s.library.Handler.ListGamesHandler(r.Context(), filter, query.Get("cursor"))
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req gamelibraryhttp.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameLibraryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.library.Handler.CreateGameHandler(r.Context(), userID, req)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetGameBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	resp, err := s.library.Handler.GetGameBySlugHandler(r.Context(), slug)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("game_id")
	if err := s.library.Handler.DeleteGameHandler(r.Context(), gameID, userID); err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGameNotes(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.library.Handler.ListGameNotesHandler(r.Context(), gameID)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	resp, err := s.library.Handler.ListTagsHandler(r.Context())
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req gamelibraryhttp.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameLibraryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.library.Handler.CreateTagHandler(r.Context(), userID, req)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	tagID := r.PathValue("tag_id")
	if err := s.library.Handler.DeleteTagHandler(r.Context(), tagID, userID); err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMetadata(w http.ResponseWriter, r *http.Request) {
	resp, err := s.library.Handler.ListMetadataHandler(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateMetadata(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req gamelibraryhttp.CreateMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameLibraryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.library.Handler.CreateMetadataHandler(r.Context(), userID, req)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req gamelibraryhttp.AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGameLibraryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.library.Handler.AddNoteHandler(r.Context(), userID, req)
	if err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	noteID := r.PathValue("note_id")
	if err := s.library.Handler.DeleteNoteHandler(r.Context(), noteID, userID); err != nil {
		writeGameLibraryDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeGameLibraryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gamelibraryerrors.ErrGameNotFound):
		writeGameLibraryError(w, http.StatusNotFound, "game_not_found", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrTagNotFound):
		writeGameLibraryError(w, http.StatusNotFound, "tag_not_found", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrMetadataNotFound):
		writeGameLibraryError(w, http.StatusNotFound, "metadata_not_found", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrNoteNotFound):
		writeGameLibraryError(w, http.StatusNotFound, "note_not_found", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrSlugConflict):
		writeGameLibraryError(w, http.StatusConflict, "slug_conflict", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrTransactionConflict):
		writeGameLibraryError(w, http.StatusConflict, "transaction_conflict", err.Error())
	case errors.Is(err, gamelibraryerrors.ErrInvalidInput):
		writeGameLibraryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeGameLibraryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGameLibraryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gamelibraryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
