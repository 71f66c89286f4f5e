package commands

import (
	"context"
	"log/slog"
	"strings"

	"improvdb/contexts/catalog/game-library/application"
	"improvdb/contexts/catalog/game-library/domain/entities"
	domainerrors "improvdb/contexts/catalog/game-library/domain/errors"
	"improvdb/contexts/catalog/game-library/ports"
)

type MetadataUseCase struct {
	UnitOfWork ports.UnitOfWork
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

type CreateMetadataCommand struct {
	Name   string
	Type   entities.MetadataType
	Min    int
	Max    int
	UserID string
}

func (uc *MetadataUseCase) CreateMetadata(ctx context.Context, cmd CreateMetadataCommand) (entities.GameMetadata, error) {
	logger := application.ResolveLogger(uc.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" || strings.TrimSpace(cmd.UserID) == "" {
		return entities.GameMetadata{}, domainerrors.ErrInvalidInput
	}
	if cmd.Type != entities.MetadataDuration && cmd.Type != entities.MetadataPlayerCount {
		return entities.GameMetadata{}, domainerrors.ErrInvalidInput
	}
	if cmd.Min < 0 || (cmd.Max != 0 && cmd.Max < cmd.Min) {
		return entities.GameMetadata{}, domainerrors.ErrInvalidInput
	}

	metadataID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.GameMetadata{}, err
	}

	metadata := entities.GameMetadata{
		MetadataID: metadataID,
		Name:       name,
		Type:       cmd.Type,
		Min:        cmd.Min,
		Max:        cmd.Max,
		Status:     entities.StatusActive,
		AddedUser:  strings.TrimSpace(cmd.UserID),
		DateAdded:  uc.Clock.Now(),
	}

	err = uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		return tx.CreateMetadata(ctx, metadata)
	})
	if err != nil {
		return entities.GameMetadata{}, err
	}

	logger.Info("metadata created",
		slog.String("event", "metadata_created"),
		slog.String("metadata_id", metadataID),
		slog.String("type", string(cmd.Type)),
		slog.String("user_id", metadata.AddedUser),
	)
	return metadata, nil
}
