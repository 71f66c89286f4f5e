package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	namevotingerrors "improvdb/contexts/catalog/name-voting/domain/errors"
	namevotinghttp "improvdb/contexts/catalog/name-voting/transport/http"
)

func (s *Server) handleListNames(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.ListNamesHandler(r.Context(), gameID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddName(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req namevotinghttp.AddNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNameVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.AddNameHandler(r.Context(), gameID, userID, req)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemoveName(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("game_id")
	nameID := r.PathValue("name_id")
	resp, err := s.voting.Handler.RemoveNameHandler(r.Context(), gameID, nameID, userID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req namevotinghttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeNameVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), gameID, userID, req)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.RetractVoteHandler(r.Context(), gameID, userID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyVotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.MyVotesHandler(r.Context(), gameID, userID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteTally(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.VoteTallyHandler(r.Context(), gameID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRebuildCanonical(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	gameID := r.PathValue("game_id")
	resp, err := s.voting.Handler.RebuildCanonicalHandler(r.Context(), gameID)
	if err != nil {
		writeNameVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeNameVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, namevotingerrors.ErrGameNotFound):
		writeNameVotingError(w, http.StatusNotFound, "game_not_found", err.Error())
	case errors.Is(err, namevotingerrors.ErrNameNotFound):
		writeNameVotingError(w, http.StatusNotFound, "name_not_found", err.Error())
	case errors.Is(err, namevotingerrors.ErrVoteNotFound):
		writeNameVotingError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, namevotingerrors.ErrNameDeleted):
		writeNameVotingError(w, http.StatusUnprocessableEntity, "name_deleted", err.Error())
	case errors.Is(err, namevotingerrors.ErrLastName):
		writeNameVotingError(w, http.StatusUnprocessableEntity, "last_name", err.Error())
	case errors.Is(err, namevotingerrors.ErrNoNames):
		writeNameVotingError(w, http.StatusUnprocessableEntity, "no_names", err.Error())
	case errors.Is(err, namevotingerrors.ErrDuplicateActiveVote):
		writeNameVotingError(w, http.StatusConflict, "duplicate_vote", err.Error())
	case errors.Is(err, namevotingerrors.ErrTransactionConflict):
		writeNameVotingError(w, http.StatusConflict, "transaction_conflict", err.Error())
	case errors.Is(err, namevotingerrors.ErrInvalidVoteInput):
		writeNameVotingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeNameVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeNameVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, namevotinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
