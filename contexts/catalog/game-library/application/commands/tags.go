package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"improvdb/contexts/catalog/game-library/application"
	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
	"improvdb/internal/shared/events"
)

type TagUseCase struct {
	UnitOfWork ports.UnitOfWork
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

// CreateTag stores the tag and emits tag.created in the same transaction, so
// the search index learns about every tag that actually exists.
func (uc *TagUseCase) CreateTag(ctx context.Context, name string, description string, userID string) (entities.Tag, error) {
	logger := application.ResolveLogger(uc.Logger)

	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(userID) == "" {
		return entities.Tag{}, domainerrors.ErrInvalidInput
	}

	tagID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Tag{}, err
	}

	tag := entities.Tag{
		TagID:       tagID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      entities.StatusActive,
		AddedUser:   strings.TrimSpace(userID),
		DateAdded:   uc.Clock.Now(),
	}

	err = uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		if err := tx.CreateTag(ctx, tag); err != nil {
			return err
		}
		return appendTagEvent(ctx, tx, events.TypeTagCreated, tag, nil, tag.DateAdded)
	})
	if err != nil {
		return entities.Tag{}, err
	}

	logger.Info("tag created",
		slog.String("event", "tag_created"),
		slog.String("tag_id", tagID),
		slog.String("user_id", tag.AddedUser),
	)
	return tag, nil
}

// DeleteTag soft-deletes and emits tag.updated carrying the before and after
// states, letting consumers act only on the deletion edge.
func (uc *TagUseCase) DeleteTag(ctx context.Context, tagID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if tagID == "" || userID == "" {
		return domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now()
	err := uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		tag, err := tx.GetTag(ctx, tagID)
		if err != nil {
			return err
		}
		if !tag.Live() {
			return domainerrors.ErrTagNotFound
		}
		if err := tx.MarkTagDeleted(ctx, tagID, userID, now); err != nil {
			return err
		}
		before := tag
		tag.Status = entities.StatusDeleted
		return appendTagEvent(ctx, tx, events.TypeTagUpdated, tag, &before, now)
	})
	if err != nil {
		return err
	}

	logger.Info("tag deleted",
		slog.String("event", "tag_deleted"),
		slog.String("tag_id", tagID),
		slog.String("user_id", userID),
	)
	return nil
}

func appendTagEvent(
	ctx context.Context,
	outbox ports.OutboxWriter,
	eventType string,
	tag entities.Tag,
	before *entities.Tag,
	at time.Time,
) error {
	after, err := json.Marshal(events.TagState{Name: tag.Name, Deleted: !tag.Live()})
	if err != nil {
		return err
	}
	var beforeRaw json.RawMessage
	if before != nil {
		if beforeRaw, err = json.Marshal(events.TagState{Name: before.Name, Deleted: !before.Live()}); err != nil {
			return err
		}
	}
	return outbox.AppendOutbox(ctx, events.DocumentEvent{
		EventType:  eventType,
		Collection: "tags",
		DocumentID: tag.TagID,
		OccurredAt: at,
		Before:     beforeRaw,
		After:      after,
	})
}
