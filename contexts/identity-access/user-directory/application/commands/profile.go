package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	"improvdb/contexts/identity-access/user-directory/ports"
)

type DirectoryUseCase struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// EnsureProfile creates the profile on first login and refreshes the login
// timestamp on every subsequent one.
func (uc *DirectoryUseCase) EnsureProfile(ctx context.Context, claims entities.Claims) (entities.User, error) {
	logger := uc.logger()

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return entities.User{}, domainerrors.ErrInvalidInput
	}

	now := uc.Clock.Now()
	existing, err := uc.Users.GetUser(ctx, userID)
	if err == nil {
		if err := uc.Users.TouchLogin(ctx, userID, now); err != nil {
			return entities.User{}, err
		}
		existing.DateLoggedIn = now
		return existing, nil
	}
	if !errors.Is(err, domainerrors.ErrUserNotFound) {
		return entities.User{}, err
	}

	user := entities.User{
		UserID:       userID,
		Email:        strings.TrimSpace(claims.Email),
		Name:         strings.TrimSpace(claims.Name),
		DateLoggedIn: now,
		Status:       entities.StatusActive,
		DateAdded:    now,
	}
	if err := uc.Users.SaveUser(ctx, user); err != nil {
		return entities.User{}, err
	}

	logger.Info("user profile created",
		slog.String("event", "user_profile_created"),
		slog.String("user_id", userID),
	)
	return user, nil
}

func (uc *DirectoryUseCase) LockUser(ctx context.Context, userID string) error {
	return uc.setLocked(ctx, userID, true)
}

func (uc *DirectoryUseCase) UnlockUser(ctx context.Context, userID string) error {
	return uc.setLocked(ctx, userID, false)
}

func (uc *DirectoryUseCase) setLocked(ctx context.Context, userID string, locked bool) error {
	logger := uc.logger()
	if strings.TrimSpace(userID) == "" {
		return domainerrors.ErrInvalidInput
	}
	if err := uc.Users.SetLocked(ctx, userID, locked, uc.Clock.Now()); err != nil {
		return err
	}
	logger.Info("user lock state changed",
		slog.String("event", "user_lock_changed"),
		slog.String("user_id", userID),
		slog.Bool("locked", locked),
	)
	return nil
}

// RequireUnlocked resolves a verified subject to a live, unlocked profile.
// The HTTP layer calls this before routing any mutating request.
func (uc *DirectoryUseCase) RequireUnlocked(ctx context.Context, userID string) (entities.User, error) {
	user, err := uc.Users.GetUser(ctx, userID)
	if err != nil {
		return entities.User{}, err
	}
	if user.Locked {
		return entities.User{}, domainerrors.ErrUserLocked
	}
	return user, nil
}

func (uc *DirectoryUseCase) logger() *slog.Logger {
	if uc.Logger == nil {
		return slog.Default()
	}
	return uc.Logger
}
