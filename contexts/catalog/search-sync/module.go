package searchsync

import (
	"log/slog"

	httpadapter "improvdb/contexts/catalog/search-sync/adapters/http"
	"improvdb/contexts/catalog/search-sync/adapters/memory"
	"improvdb/contexts/catalog/search-sync/application/commands"
	"improvdb/contexts/catalog/search-sync/application/queries"
	"improvdb/contexts/catalog/search-sync/application/workers"
	"improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/contexts/catalog/search-sync/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	Rebuild      *commands.RebuildUseCase
	TagConsumer  workers.TagSyncConsumer
	NameConsumer workers.NameSyncConsumer
	Index        *memory.Index
	Store        *memory.Store
}

type Dependencies struct {
	Index      ports.SearchIndex
	Catalog    ports.CatalogReader
	Dedup      ports.EventDedupStore
	Subscriber ports.EventSubscriber
	Clock      ports.Clock
	KeyTags    entities.KeyTagConfig
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	rebuild := &commands.RebuildUseCase{
		Index:   deps.Index,
		Catalog: deps.Catalog,
		KeyTags: deps.KeyTags,
		Logger:  deps.Logger,
	}
	searchQueries := queries.SearchQueries{
		Index: deps.Index,
	}
	return Module{
		Handler: httpadapter.Handler{
			Rebuild: rebuild,
			Search:  searchQueries,
			Logger:  deps.Logger,
		},
		Rebuild: rebuild,
		TagConsumer: workers.TagSyncConsumer{
			Subscriber: deps.Subscriber,
			Dedup:      deps.Dedup,
			Index:      deps.Index,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		NameConsumer: workers.NameSyncConsumer{
			Subscriber: deps.Subscriber,
			Dedup:      deps.Dedup,
			Index:      deps.Index,
			Catalog:    deps.Catalog,
			KeyTags:    deps.KeyTags,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(subscriber ports.EventSubscriber, keyTags entities.KeyTagConfig, logger *slog.Logger) Module {
	index := memory.NewIndex()
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Index:      index,
		Catalog:    store,
		Dedup:      store,
		Subscriber: subscriber,
		Clock:      store,
		KeyTags:    keyTags,
		Logger:     logger,
	})
	module.Index = index
	module.Store = store
	return module
}
