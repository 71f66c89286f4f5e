package ports

import (
	"context"
	"time"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
)

type UserRepository interface {
	// SaveUser upserts by user id.
	SaveUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	SetLocked(ctx context.Context, userID string, locked bool, at time.Time) error
	TouchLogin(ctx context.Context, userID string, at time.Time) error
}

// TokenVerifier validates a bearer token and extracts the identity claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (entities.Claims, error)
}

type Clock interface {
	Now() time.Time
}
