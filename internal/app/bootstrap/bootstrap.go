package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gamelibrary "improvdb/contexts/catalog/game-library"
	gamelibrarypostgres "improvdb/contexts/catalog/game-library/adapters/postgres"
	gamelibraryworkers "improvdb/contexts/catalog/game-library/application/workers"
	namevoting "improvdb/contexts/catalog/name-voting"
	namevotingpostgres "improvdb/contexts/catalog/name-voting/adapters/postgres"
	namevotingworkers "improvdb/contexts/catalog/name-voting/application/workers"
	searchsync "improvdb/contexts/catalog/search-sync"
	searchmemory "improvdb/contexts/catalog/search-sync/adapters/memory"
	searchpostgres "improvdb/contexts/catalog/search-sync/adapters/postgres"
	searchentities "improvdb/contexts/catalog/search-sync/domain/entities"
	userdirectory "improvdb/contexts/identity-access/user-directory"
	userdirectorypostgres "improvdb/contexts/identity-access/user-directory/adapters/postgres"
	"improvdb/contexts/identity-access/user-directory/adapters/token"
	"improvdb/internal/platform/config"
	"improvdb/internal/platform/db"
	"improvdb/internal/platform/httpserver"
	"improvdb/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres          *db.Postgres
	libraryRelay      gamelibraryworkers.OutboxRelay
	votingRelay       namevotingworkers.OutboxRelay
	search            searchsync.Module
	startTagConsumer  bool
	startNameConsumer bool
	logger            *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("IMPROVDB_POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("IMPROVDB_JWT_SECRET is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	libraryRepo := gamelibrarypostgres.NewRepository(pg.DB, logger)
	libraryModule := gamelibrary.NewModule(gamelibrary.Dependencies{
		UnitOfWork: libraryRepo,
		Games:      libraryRepo,
		Tags:       libraryRepo,
		Metadata:   libraryRepo,
		Notes:      libraryRepo,
		Outbox:     libraryRepo,
		Clock:      gamelibrarypostgres.SystemClock{},
		IDGen:      gamelibrarypostgres.UUIDGenerator{},
		Logger:     logger,
	})

	votingRepo := namevotingpostgres.NewRepository(pg.DB, logger)
	votingModule := namevoting.NewModule(namevoting.Dependencies{
		UnitOfWork: votingRepo,
		Names:      votingRepo,
		Votes:      votingRepo,
		Games:      votingRepo,
		Outbox:     votingRepo,
		Clock:      namevotingpostgres.SystemClock{},
		IDGen:      namevotingpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	// The API process never starts the sync consumers; its index is filled by
	// the reindex operation, so no subscriber is wired here.
	searchReader := searchpostgres.NewReader(pg.DB, logger)
	searchModule := searchsync.NewModule(searchsync.Dependencies{
		Index:   searchmemory.NewIndex(),
		Catalog: searchReader,
		Dedup:   searchReader,
		Clock:   searchpostgres.SystemClock{},
		KeyTags: keyTagConfig(cfg),
		Logger:  logger,
	})

	userModule := userdirectory.NewModule(userdirectory.Dependencies{
		Users:    userdirectorypostgres.NewRepository(pg.DB, logger),
		Verifier: token.NewVerifier(cfg.JWTSecret),
		Clock:    userdirectorypostgres.SystemClock{},
		Logger:   logger,
	})

	server := httpserver.New(
		libraryModule,
		votingModule,
		searchModule,
		userModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("IMPROVDB_POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)

	libraryRepo := gamelibrarypostgres.NewRepository(pg.DB, logger)
	votingRepo := namevotingpostgres.NewRepository(pg.DB, logger)
	searchReader := searchpostgres.NewReader(pg.DB, logger)

	searchModule := searchsync.NewModule(searchsync.Dependencies{
		Index:      searchmemory.NewIndex(),
		Catalog:    searchReader,
		Dedup:      searchReader,
		Subscriber: bus,
		Clock:      searchpostgres.SystemClock{},
		KeyTags:    keyTagConfig(cfg),
		Logger:     logger,
	})

	return &WorkerApp{
		postgres: pg,
		libraryRelay: gamelibraryworkers.OutboxRelay{
			Outbox:       libraryRepo,
			Publisher:    bus,
			Clock:        gamelibrarypostgres.SystemClock{},
			PollInterval: cfg.WorkerPollInterval,
			BatchSize:    50,
			Logger:       logger,
		},
		votingRelay: namevotingworkers.OutboxRelay{
			Outbox:       votingRepo,
			Publisher:    bus,
			Clock:        namevotingpostgres.SystemClock{},
			PollInterval: cfg.WorkerPollInterval,
			BatchSize:    50,
			Logger:       logger,
		},
		search:            searchModule,
		startTagConsumer:  cfg.EnableTagSyncConsumer,
		startNameConsumer: cfg.EnableNameSyncConsumer,
		logger:            logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.startTagConsumer {
		if err := w.search.TagConsumer.Start(ctx); err != nil {
			return err
		}
	}
	if w.startNameConsumer {
		if err := w.search.NameConsumer.Start(ctx); err != nil {
			return err
		}
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"tag_consumer", w.startTagConsumer,
		"name_consumer", w.startNameConsumer,
	)

	go w.libraryRelay.Run(ctx)
	w.votingRelay.Run(ctx)
	return nil
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func keyTagConfig(cfg config.Config) searchentities.KeyTagConfig {
	return searchentities.KeyTagConfig{
		ShowTagID:     cfg.ShowTagID,
		ExerciseTagID: cfg.ExerciseTagID,
		WarmupTagID:   cfg.WarmupTagID,
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
