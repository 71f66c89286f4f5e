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

type NoteUseCase struct {
	UnitOfWork ports.UnitOfWork
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

type AddNoteCommand struct {
	ParentType entities.NoteParentType
	ParentID   string
	Text       string
	Public     bool
	UserID     string
}

func (uc *NoteUseCase) AddNote(ctx context.Context, cmd AddNoteCommand) (entities.Note, error) {
	logger := application.ResolveLogger(uc.Logger)

	text := strings.TrimSpace(cmd.Text)
	parentID := strings.TrimSpace(cmd.ParentID)
	if text == "" || parentID == "" || strings.TrimSpace(cmd.UserID) == "" {
		return entities.Note{}, domainerrors.ErrInvalidInput
	}
	switch cmd.ParentType {
	case entities.NoteParentGame, entities.NoteParentTag, entities.NoteParentMetadata:
	default:
		return entities.Note{}, domainerrors.ErrInvalidInput
	}

	noteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Note{}, err
	}

	note := entities.Note{
		NoteID:     noteID,
		ParentType: cmd.ParentType,
		ParentID:   parentID,
		Text:       text,
		Public:     cmd.Public,
		Status:     entities.StatusActive,
		AddedUser:  strings.TrimSpace(cmd.UserID),
		DateAdded:  uc.Clock.Now(),
	}

	err = uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		if err := verifyNoteParent(ctx, tx, cmd.ParentType, parentID); err != nil {
			return err
		}
		return tx.CreateNote(ctx, note)
	})
	if err != nil {
		return entities.Note{}, err
	}

	logger.Info("note added",
		slog.String("event", "note_added"),
		slog.String("note_id", noteID),
		slog.String("parent_type", string(cmd.ParentType)),
		slog.String("parent_id", parentID),
	)
	return note, nil
}

func (uc *NoteUseCase) DeleteNote(ctx context.Context, noteID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if noteID == "" || userID == "" {
		return domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now()
	err := uc.UnitOfWork.WithinCatalogTransaction(ctx, func(tx ports.CatalogTransaction) error {
		note, err := tx.GetNote(ctx, noteID)
		if err != nil {
			return err
		}
		if !note.Live() {
			return domainerrors.ErrNoteNotFound
		}
		return tx.MarkNoteDeleted(ctx, noteID, userID, now)
	})
	if err != nil {
		return err
	}

	logger.Info("note deleted",
		slog.String("event", "note_deleted"),
		slog.String("note_id", noteID),
		slog.String("user_id", userID),
	)
	return nil
}

func verifyNoteParent(ctx context.Context, tx ports.CatalogTransaction, parentType entities.NoteParentType, parentID string) error {
	switch parentType {
	case entities.NoteParentGame:
		game, err := tx.GetGame(ctx, parentID)
		if err != nil {
			return err
		}
		if !game.Live() {
			return domainerrors.ErrGameNotFound
		}
	case entities.NoteParentTag:
		tag, err := tx.GetTag(ctx, parentID)
		if err != nil {
			return err
		}
		if !tag.Live() {
			return domainerrors.ErrTagNotFound
		}
	case entities.NoteParentMetadata:
		metadata, err := tx.GetMetadata(ctx, parentID)
		if err != nil {
			return err
		}
		if !metadata.Live() {
			return domainerrors.ErrMetadataNotFound
		}
	}
	return nil
}
