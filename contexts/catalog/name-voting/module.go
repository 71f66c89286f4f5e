package namevoting

import (
	"log/slog"

	httpadapter "improvdb/contexts/catalog/name-voting/adapters/http"
	"improvdb/contexts/catalog/name-voting/adapters/memory"
	"improvdb/contexts/catalog/name-voting/application/commands"
	"improvdb/contexts/catalog/name-voting/application/queries"
	"improvdb/contexts/catalog/name-voting/domain/entities"
	"improvdb/contexts/catalog/name-voting/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Ledger   commands.LedgerUseCase
	Resolver *commands.ResolverUseCase
	Outbox   ports.OutboxRepository
	Store    *memory.Store
}

type Dependencies struct {
	UnitOfWork ports.UnitOfWork
	Names      ports.NameRepository
	Votes      ports.VoteRepository
	Games      ports.GameHeaderStore
	Outbox     ports.OutboxRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolver := &commands.ResolverUseCase{
		Names:  deps.Names,
		Games:  deps.Games,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	ledger := commands.LedgerUseCase{
		UnitOfWork: deps.UnitOfWork,
		Games:      deps.Games,
		Resolver:   resolver,
		IDGen:      deps.IDGen,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	nameQueries := queries.NameQueries{
		Names: deps.Names,
		Votes: deps.Votes,
		Games: deps.Games,
	}
	return Module{
		Handler: httpadapter.Handler{
			Ledger:   ledger,
			Resolver: resolver,
			Names:    nameQueries,
			Logger:   deps.Logger,
		},
		Ledger:   ledger,
		Resolver: resolver,
		Outbox:   deps.Outbox,
	}
}

func NewInMemoryModule(seedNames []entities.Name, seedVotes []entities.NameVote, logger *slog.Logger) Module {
	store := memory.NewStore(seedNames, seedVotes)
	module := NewModule(Dependencies{
		UnitOfWork: store,
		Names:      store,
		Votes:      store,
		Games:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
