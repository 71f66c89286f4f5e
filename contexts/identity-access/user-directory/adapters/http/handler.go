package httpadapter

import (
	"context"
	"log/slog"

	"improvdb/contexts/identity-access/user-directory/application/commands"
	"improvdb/contexts/identity-access/user-directory/application/queries"
	"improvdb/contexts/identity-access/user-directory/domain/entities"
	httptransport "improvdb/contexts/identity-access/user-directory/transport/http"
)

type Handler struct {
	Directory *commands.DirectoryUseCase
	Users     queries.UserQueries
	Logger    *slog.Logger
}

func (h Handler) EnsureProfileHandler(ctx context.Context, claims entities.Claims) (httptransport.UserResponse, error) {
	user, err := h.Directory.EnsureProfile(ctx, claims)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return userResponse(user), nil
}

func (h Handler) GetUserHandler(ctx context.Context, userID string) (httptransport.UserResponse, error) {
	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return userResponse(user), nil
}

func (h Handler) SetLockHandler(ctx context.Context, userID string, locked bool) error {
	if locked {
		return h.Directory.LockUser(ctx, userID)
	}
	return h.Directory.UnlockUser(ctx, userID)
}

func userResponse(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		UserID:       user.UserID,
		Email:        user.Email,
		Name:         user.Name,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Company:      user.Company,
		City:         user.City,
		State:        user.State,
		Country:      user.Country,
		Phone:        user.Phone,
		URL:          user.URL,
		Title:        user.Title,
		Locked:       user.Locked,
		SuperAdmin:   user.SuperAdmin,
		DateLoggedIn: user.DateLoggedIn,
	}
}
