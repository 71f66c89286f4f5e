package gamelibrary

import (
	"log/slog"

	httpadapter "improvdb/contexts/catalog/game-library/adapters/http"
	"improvdb/contexts/catalog/game-library/adapters/memory"
	"improvdb/contexts/catalog/game-library/application/commands"
	"improvdb/contexts/catalog/game-library/application/queries"
	"improvdb/contexts/catalog/game-library/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Games   commands.GameUseCase
	Tags    commands.TagUseCase
	Catalog queries.CatalogQueries
	Outbox  ports.OutboxRepository
	Store   *memory.Store
}

type Dependencies struct {
	UnitOfWork ports.UnitOfWork
	Games      ports.GameRepository
	Tags       ports.TagRepository
	Metadata   ports.MetadataRepository
	Notes      ports.NoteRepository
	Outbox     ports.OutboxRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	gameUseCase := commands.GameUseCase{
		UnitOfWork: deps.UnitOfWork,
		IDGen:      deps.IDGen,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	tagUseCase := commands.TagUseCase{
		UnitOfWork: deps.UnitOfWork,
		IDGen:      deps.IDGen,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	metadataUseCase := commands.MetadataUseCase{
		UnitOfWork: deps.UnitOfWork,
		IDGen:      deps.IDGen,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	noteUseCase := commands.NoteUseCase{
		UnitOfWork: deps.UnitOfWork,
		IDGen:      deps.IDGen,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	catalogQueries := queries.CatalogQueries{
		Games:    deps.Games,
		Tags:     deps.Tags,
		Metadata: deps.Metadata,
		Notes:    deps.Notes,
		IDGen:    deps.IDGen,
	}
	return Module{
		Handler: httpadapter.Handler{
			Games:    gameUseCase,
			Tags:     tagUseCase,
			Metadata: metadataUseCase,
			Notes:    noteUseCase,
			Catalog:  catalogQueries,
			Logger:   deps.Logger,
		},
		Games:   gameUseCase,
		Tags:    tagUseCase,
		Catalog: catalogQueries,
		Outbox:  deps.Outbox,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		UnitOfWork: store,
		Games:      store,
		Tags:       store,
		Metadata:   store,
		Notes:      store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
