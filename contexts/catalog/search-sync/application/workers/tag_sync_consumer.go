package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"improvdb/contexts/catalog/search-sync/application"
	"improvdb/contexts/catalog/search-sync/domain/entities"
	"improvdb/contexts/catalog/search-sync/ports"
	"improvdb/internal/shared/events"
)

const defaultTagSyncCG = "search-sync-tag-cg"

// TagSyncConsumer mirrors tag lifecycle into the tag index: creations add a
// record, deletion edges remove it.
type TagSyncConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Index         ports.SearchIndex
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func (c TagSyncConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := c.ConsumerGroup
	if group == "" {
		group = defaultTagSyncCG
	}
	if err := c.Subscriber.Subscribe(ctx, events.TypeTagCreated, group, c.handleTagCreated); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, events.TypeTagUpdated, group, c.handleTagUpdated); err != nil {
		return err
	}
	logger.Info("tag sync consumer subscriptions active",
		"event", "tag_sync_consumer_started",
		"module", "catalog/search-sync",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c TagSyncConsumer) handleTagCreated(ctx context.Context, event events.DocumentEvent) error {
	logger := application.ResolveLogger(c.Logger)
	if replayed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if replayed {
		return nil
	}

	var after events.TagState
	if err := json.Unmarshal(event.After, &after); err != nil {
		logger.Error("tag.created payload decode failed",
			"event", "tag_sync_created_decode_failed",
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

	if err := c.Index.SaveObject(ctx, entities.TagIndex, entities.NewTagRecord(event.DocumentID, after.Name)); err != nil {
		return err
	}
	logger.Info("tag.created indexed",
		"event", "tag_sync_created_indexed",
		"module", "catalog/search-sync",
		"layer", "worker",
		"event_id", event.EventID,
		"tag_id", event.DocumentID,
	)
	return nil
}

func (c TagSyncConsumer) handleTagUpdated(ctx context.Context, event events.DocumentEvent) error {
	logger := application.ResolveLogger(c.Logger)
	if replayed, err := c.reserveEvent(ctx, event); err != nil {
		return err
	} else if replayed {
		return nil
	}

	var before, after events.TagState
	if err := json.Unmarshal(event.Before, &before); err != nil {
		return err
	}
	if err := json.Unmarshal(event.After, &after); err != nil {
		return err
	}
	if !deletionEdge(before.Deleted, after.Deleted) {
		return nil
	}

	if err := c.Index.DeleteObject(ctx, entities.TagIndex, event.DocumentID); err != nil {
		return err
	}
	logger.Info("tag.updated tombstoned",
		"event", "tag_sync_updated_tombstoned",
		"module", "catalog/search-sync",
		"layer", "worker",
		"event_id", event.EventID,
		"tag_id", event.DocumentID,
	)
	return nil
}

func (c TagSyncConsumer) reserveEvent(ctx context.Context, event events.DocumentEvent) (bool, error) {
	return c.Dedup.ReserveEvent(ctx, event.EventID, hashEvent(event), c.now().Add(c.dedupTTL()))
}

func (c TagSyncConsumer) now() time.Time {
	if c.Clock != nil {
		return c.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (c TagSyncConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}
