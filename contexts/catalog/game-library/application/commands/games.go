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

type GameUseCase struct {
	UnitOfWork ports.UnitOfWork
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

type CreateGameCommand struct {
	Name          string
	Description   string
	DurationID    string
	PlayerCountID string
	TagIDs        []string
	UserID        string
}

// CreateGame derives the slug from the creation name and rejects collisions
// with live games. The caller is expected to follow up by proposing the same
// name through the voting module so the game has a ballot from day one.
func (uc *GameUseCase) CreateGame(ctx context.Context, cmd CreateGameCommand) (entities.Game, error) {
	logger := application.ResolveLogger(uc.Logger)

	name := strings.TrimSpace(cmd.Name)
	if name == "" || strings.TrimSpace(cmd.UserID) == "" {
		return entities.Game{}, domainerrors.ErrInvalidInput
	}
	slug := entities.Slugify(name)
	if slug == "" {
		return entities.Game{}, domainerrors.ErrInvalidInput
	}

	gameID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Game{}, err
	}

	game := entities.Game{
		GameID:        gameID,
		Name:          name,
		Slug:          slug,
		Description:   strings.TrimSpace(cmd.Description),
		DurationID:    strings.TrimSpace(cmd.DurationID),
		PlayerCountID: strings.TrimSpace(cmd.PlayerCountID),
		TagIDs:        cmd.TagIDs,
		Status:        entities.StatusActive,
		AddedUser:     strings.TrimSpace(cmd.UserID),
		DateAdded:     uc.Clock.Now(),
	}

	err = uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		inUse, err := tx.SlugInUse(ctx, slug)
		if err != nil {
			return err
		}
		if inUse {
			return domainerrors.ErrSlugConflict
		}
		return tx.CreateGame(ctx, game)
	})
	if err != nil {
		return entities.Game{}, err
	}

	logger.Info("game created",
		slog.String("event", "game_created"),
		slog.String("game_id", gameID),
		slog.String("slug", slug),
		slog.String("user_id", game.AddedUser),
	)
	return game, nil
}

func (uc *GameUseCase) DeleteGame(ctx context.Context, gameID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if gameID == "" || userID == "" {
		return domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now()
	err := uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		game, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if !game.Live() {
			return domainerrors.ErrGameNotFound
		}
		return tx.MarkGameDeleted(ctx, gameID, userID, now)
	})
	if err != nil {
		return err
	}

	logger.Info("game deleted",
		slog.String("event", "game_deleted"),
		slog.String("game_id", gameID),
		slog.String("user_id", userID),
	)
	return nil
}
