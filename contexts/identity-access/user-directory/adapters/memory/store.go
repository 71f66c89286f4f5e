package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	"improvdb/contexts/identity-access/user-directory/ports"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]entities.User
}

func NewStore(seed []entities.User) *Store {
	users := make(map[string]entities.User, len(seed))
	for _, user := range seed {
		users[user.UserID] = user
	}
	return &Store{users: users}
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) SetLocked(_ context.Context, userID string, locked bool, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user.Locked = locked
	modified := at.UTC()
	user.DateModified = &modified
	s.users[user.UserID] = user
	return nil
}

func (s *Store) TouchLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user.DateLoggedIn = at.UTC()
	s.users[user.UserID] = user
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var (
	_ ports.UserRepository = (*Store)(nil)
	_ ports.Clock          = (*Store)(nil)
)
