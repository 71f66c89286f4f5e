package queries

import (
	"context"
	"strings"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	"improvdb/contexts/identity-access/user-directory/ports"
)

type UserQueries struct {
	Users ports.UserRepository
}

func (q *UserQueries) GetUser(ctx context.Context, userID string) (entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.User{}, domainerrors.ErrInvalidInput
	}
	return q.Users.GetUser(ctx, userID)
}
