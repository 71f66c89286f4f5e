package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	userdirectoryerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	userdirectoryhttp "improvdb/contexts/identity-access/user-directory/transport/http"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeUserDirectoryError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return
	}

	claims, err := s.users.Verifier.Verify(r.Context(), token)
	if err != nil {
		writeUserDirectoryDomainError(w, err)
		return
	}

	resp, err := s.users.Handler.EnsureProfileHandler(r.Context(), claims)
	if err != nil {
		writeUserDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	userID := r.PathValue("user_id")
	resp, err := s.users.Handler.GetUserHandler(r.Context(), userID)
	if err != nil {
		writeUserDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetUserLock(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	var req userdirectoryhttp.LockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeUserDirectoryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	userID := r.PathValue("user_id")
	if err := s.users.Handler.SetLockHandler(r.Context(), userID, req.Locked); err != nil {
		writeUserDirectoryDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeUserDirectoryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userdirectoryerrors.ErrInvalidToken):
		writeUserDirectoryError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, userdirectoryerrors.ErrUserLocked):
		writeUserDirectoryError(w, http.StatusForbidden, "user_locked", err.Error())
	case errors.Is(err, userdirectoryerrors.ErrUserNotFound):
		writeUserDirectoryError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, userdirectoryerrors.ErrInvalidInput):
		writeUserDirectoryError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeUserDirectoryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeUserDirectoryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, userdirectoryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
