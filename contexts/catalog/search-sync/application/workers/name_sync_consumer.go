package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"improvdb/contexts/catalog/search-sync/application"
	"improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/contexts/catalog/search-sync/ports"
	"improvdb/internal/shared/events"
)

const defaultNameSyncCG = "search-sync-name-cg"

// NameSyncConsumer mirrors name lifecycle into the game index. Each name is
// its own record keyed by name id; the parent game supplies slug and key tag.
// Names whose parent game is missing or deleted are orphans: logged, skipped,
// never fatal, because consumers race catalog soft-deletion by design.
type NameSyncConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Index         ports.SearchIndex
	Catalog       ports.CatalogReader
	KeyTags       entities.KeyTagConfig
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c NameSyncConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := c.ConsumerGroup
	if group == "" {
		group = defaultNameSyncCG
	}
	if err := c.Subscriber.Subscribe(ctx, events.TypeNameCreated, group, c.handleNameCreated); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, events.TypeNameUpdated, group, c.handleNameUpdated); err != nil {
		return err
	}
	logger.Info("name sync consumer subscriptions active",
		"event", "name_sync_consumer_started",
		"module", "catalog/search-sync",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c NameSyncConsumer) handleNameCreated(ctx context.Context, event events.DocumentEvent) error {
	logger := application.ResolveLogger(c.Logger)
	if replayed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if replayed {
		return nil
	}

	var after events.NameState
	if err := json.Unmarshal(event.After, &after); err != nil {
		logger.Error("name.created payload decode failed",
			"event", "name_sync_created_decode_failed",
			"module", "catalog/search-sync",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if after.Deleted {
		return nil
	}

	game, err := c.Catalog.GetGameProjection(ctx, event.GameID)
	if err != nil || game.Deleted {
		if err != nil && !isNotFound(err) {
			return err
		}
		logger.Warn("name.created skipped for orphaned name",
			"event", "name_sync_orphan_skipped",
			"module", "catalog/search-sync",
			"layer", "worker",
			"event_id", event.EventID,
			"game_id", event.GameID,
			"name_id", event.DocumentID,
		)
		return nil
	}

	record := entities.NewGameRecord(
		game.GameID, game.Slug, event.DocumentID, after.Name, c.KeyTags.KeyTagFor(game.TagIDs),
	)
	if err := c.Index.SaveObject(ctx, entities.GameIndex, record); err != nil {
		return err
	}
	logger.Info("name.created indexed",
		"event", "name_sync_created_indexed",
		"module", "catalog/search-sync",
		"layer", "worker",
		"event_id", event.EventID,
		"game_id", game.GameID,
		"name_id", event.DocumentID,
	)
	return nil
}

func (c NameSyncConsumer) handleNameUpdated(ctx context.Context, event events.DocumentEvent) error {
	logger := application.ResolveLogger(c.Logger)
	if replayed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if replayed {
		return nil
	}

	var before, after events.NameState
	if err := json.Unmarshal(event.Before, &before); err != nil {
		return err
	}
	if err := json.Unmarshal(event.After, &after); err != nil {
		return err
	}
	if !deletionEdge(before.Deleted, after.Deleted) {
		return nil
	}

	if err := c.Index.DeleteObject(ctx, entities.GameIndex, event.DocumentID); err != nil {
		return err
	}
	logger.Info("name.updated tombstoned",
		"event", "name_sync_updated_tombstoned",
		"module", "catalog/search-sync",
		"layer", "worker",
		"event_id", event.EventID,
		"name_id", event.DocumentID,
	)
	return nil
}

func (c NameSyncConsumer) reserveEvent(ctx context.Context, event events.DocumentEvent) (bool, error) {
	return c.Dedup.ReserveEvent(ctx, event.EventID, hashEvent(event), c.now().Add(c.dedupTTL()))
}

func (c NameSyncConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (c NameSyncConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func isNotFound(err error) bool {
	return errors.Is(err, ports.ErrGameMissing)
}
