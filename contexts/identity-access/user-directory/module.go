package userdirectory

import (
	"log/slog"

	httpadapter "improvdb/contexts/identity-access/user-directory/adapters/http"
	"improvdb/contexts/identity-access/user-directory/adapters/memory"
	"improvdb/contexts/identity-access/user-directory/application/commands"
	"improvdb/contexts/identity-access/user-directory/application/queries"
	"improvdb/contexts/identity-access/user-directory/domain/entities"
	"improvdb/contexts/identity-access/user-directory/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Directory *commands.DirectoryUseCase
	Verifier  ports.TokenVerifier
	Store     *memory.Store
}

type Dependencies struct {
	Users    ports.UserRepository
	Verifier ports.TokenVerifier
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	directory := &commands.DirectoryUseCase{
		Users:  deps.Users,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	userQueries := queries.UserQueries{
		Users: deps.Users,
	}
	return Module{
		Handler: httpadapter.Handler{
			Directory: directory,
			Users:     userQueries,
			Logger:    deps.Logger,
		},
		Directory: directory,
		Verifier:  deps.Verifier,
	}
}

func NewInMemoryModule(seed []entities.User, verifier ports.TokenVerifier, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Users:    store,
		Verifier: verifier,
		Clock:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
