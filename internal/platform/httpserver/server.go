package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gamelibrary "improvdb/contexts/catalog/game-library"
	namevoting "improvdb/contexts/catalog/name-voting"
	searchsync "improvdb/contexts/catalog/search-sync"
	userdirectory "improvdb/contexts/identity-access/user-directory"
	userdirectoryerrors "improvdb/contexts/identity-access/user-directory/domain/errors"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "improvdb/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	library gamelibrary.Module
	voting  namevoting.Module
	search  searchsync.Module
	users   userdirectory.Module
}

func New(
	library gamelibrary.Module,
	voting namevoting.Module,
	search searchsync.Module,
	users userdirectory.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		library: library,
		voting:  voting,
		search:  search,
		users:   users,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/v1/games", s.handleListGames)
	s.mux.HandleFunc("POST /api/v1/games", s.handleCreateGame)
	s.mux.HandleFunc("GET /api/v1/games/{slug}", s.handleGetGameBySlug)
	s.mux.HandleFunc("DELETE /api/v1/games/{game_id}", s.handleDeleteGame)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}/notes", s.handleListGameNotes)

	s.mux.HandleFunc("GET /api/v1/tags", s.handleListTags)
	s.mux.HandleFunc("POST /api/v1/tags", s.handleCreateTag)
	s.mux.HandleFunc("DELETE /api/v1/tags/{tag_id}", s.handleDeleteTag)

	s.mux.HandleFunc("GET /api/v1/metadata", s.handleListMetadata)
	s.mux.HandleFunc("POST /api/v1/metadata", s.handleCreateMetadata)

	s.mux.HandleFunc("POST /api/v1/notes", s.handleAddNote)
	s.mux.HandleFunc("DELETE /api/v1/notes/{note_id}", s.handleDeleteNote)

	s.mux.HandleFunc("GET /api/v1/games/{game_id}/names", s.handleListNames)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/names", s.handleAddName)
	s.mux.HandleFunc("DELETE /api/v1/games/{game_id}/names/{name_id}", s.handleRemoveName)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}/names/tally", s.handleVoteTally)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/names/rebuild", s.handleRebuildCanonical)
	s.mux.HandleFunc("POST /api/v1/games/{game_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("DELETE /api/v1/games/{game_id}/votes", s.handleRetractVote)
	s.mux.HandleFunc("GET /api/v1/games/{game_id}/votes/mine", s.handleMyVotes)

	s.mux.HandleFunc("GET /api/v1/search/{index}", s.handleSearch)
	s.mux.HandleFunc("POST /api/v1/search/reindex", s.handleReindex)

	s.mux.HandleFunc("POST /api/v1/users/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/v1/users/{user_id}", s.handleGetUser)
	s.mux.HandleFunc("PUT /api/v1/users/{user_id}/lock", s.handleSetUserLock)
}

// requireUser authenticates the bearer token and resolves it to an unlocked
// profile, provisioning the profile on first contact. Returns the user id.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, ok := bearerToken(r)
	if !ok {
		writeUserDirectoryError(w, http.StatusUnauthorized, "unauthorized", "Authorization bearer token is required")
		return "", false
	}

	claims, err := s.users.Verifier.Verify(r.Context(), token)
	if err != nil {
		writeUserDirectoryDomainError(w, err)
		return "", false
	}

	_, err = s.users.Directory.RequireUnlocked(r.Context(), claims.Subject)
	if errors.Is(err, userdirectoryerrors.ErrUserNotFound) {
		_, err = s.users.Directory.EnsureProfile(r.Context(), claims)
	}
	if err != nil {
		writeUserDirectoryDomainError(w, err)
		return "", false
	}
	return claims.Subject, true
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
