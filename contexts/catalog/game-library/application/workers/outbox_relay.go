package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"improvdb/contexts/catalog/game-library/application"
	"improvdb/contexts/catalog/game-library/ports"
	"improvdb/internal/shared/events"
)

// OutboxRelay publishes committed catalog change events (tag lifecycle) to
// the bus. Delivery is at least once; consumers dedup on event id.
type OutboxRelay struct {
	Outbox       ports.OutboxRepository
	Publisher    ports.EventPublisher
	Clock        ports.Clock
	Logger       *slog.Logger
	PollInterval time.Duration
	BatchSize    int
}

func (r *OutboxRelay) Run(ctx context.Context) {
	logger := application.ResolveLogger(r.Logger)

	interval := r.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("outbox relay started",
		slog.String("event", "outbox_relay_started"),
		slog.String("module", "game_library"),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox relay stopped",
				slog.String("event", "outbox_relay_stopped"),
				slog.String("module", "game_library"),
			)
			return
		case <-ticker.C:
			r.drainOnce(ctx, logger)
		}
	}
}

func (r *OutboxRelay) drainOnce(ctx context.Context, logger *slog.Logger) {
	limit := r.BatchSize
	if limit <= 0 {
		limit = 50
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox poll failed",
			slog.String("event", "outbox_poll_failed"),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, message := range pending {
		var event events.DocumentEvent
		if err := json.Unmarshal(message.Payload, &event); err != nil {
			logger.Error("outbox payload malformed",
				slog.String("event", "outbox_payload_malformed"),
				slog.String("outbox_id", message.OutboxID),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := r.Publisher.Publish(ctx, event.EventType, event); err != nil {
			logger.Error("outbox publish failed",
				slog.String("event", "outbox_publish_failed"),
				slog.String("outbox_id", message.OutboxID),
				slog.String("error", err.Error()),
			)
			return
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, message.OutboxID, r.Clock.Now()); err != nil {
			logger.Error("outbox mark failed",
				slog.String("event", "outbox_mark_failed"),
				slog.String("outbox_id", message.OutboxID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}
