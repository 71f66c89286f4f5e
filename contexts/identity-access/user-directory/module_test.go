package userdirectory

import (
	"context"
	"errors"
	"testing"
	"time"

	"improvdb/contexts/identity-access/user-directory/adapters/token"
	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
)

func newModule(t *testing.T, seed []entities.User) (Module, *token.Verifier) {
	t.Helper()
	verifier := token.NewVerifier("test-secret")
	return NewInMemoryModule(seed, verifier, nil), verifier
}

func TestEnsureProfileCreatesAndRefreshes(t *testing.T) {
	module, _ := newModule(t, nil)

	created, err := module.Directory.EnsureProfile(context.Background(), entities.Claims{
		Subject: "user-1",
		Email:   "  alex@example.com ",
		Name:    "Alex Improviser",
	})
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if created.Email != "alex@example.com" {
		t.Fatalf("expected trimmed email, got %q", created.Email)
	}
	if created.Status != entities.StatusActive || created.DateLoggedIn.IsZero() {
		t.Fatalf("expected live profile with login timestamp, got %+v", created)
	}

	again, err := module.Directory.EnsureProfile(context.Background(), entities.Claims{Subject: "user-1"})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if again.UserID != created.UserID || again.Email != created.Email {
		t.Fatalf("expected the existing profile back, got %+v", again)
	}
	if again.DateLoggedIn.Before(created.DateLoggedIn) {
		t.Fatalf("expected login timestamp to move forward")
	}

	if _, err := module.Directory.EnsureProfile(context.Background(), entities.Claims{Subject: "   "}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank subject, got %v", err)
	}
}

func TestLockBlocksRequireUnlocked(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	module, _ := newModule(t, []entities.User{
		{UserID: "user-1", Email: "alex@example.com", Status: entities.StatusActive, DateAdded: now},
	})

	if _, err := module.Directory.RequireUnlocked(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected unlocked user to pass, got %v", err)
	}

	if err := module.Directory.LockUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if _, err := module.Directory.RequireUnlocked(context.Background(), "user-1"); !errors.Is(err, domainerrors.ErrUserLocked) {
		t.Fatalf("expected ErrUserLocked, got %v", err)
	}

	if err := module.Directory.UnlockUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if _, err := module.Directory.RequireUnlocked(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected unlocked user after unlock, got %v", err)
	}

	if err := module.Directory.LockUser(context.Background(), "user-missing"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown user, got %v", err)
	}
	if _, err := module.Directory.RequireUnlocked(context.Background(), "user-missing"); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown subject, got %v", err)
	}
}

func TestVerifierRoundTrip(t *testing.T) {
	module, verifier := newModule(t, nil)

	signed, err := verifier.Issue(entities.Claims{
		Subject: "user-1",
		Email:   "alex@example.com",
		Name:    "Alex Improviser",
	})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := module.Verifier.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alex@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifierRejectsBadTokens(t *testing.T) {
	module, verifier := newModule(t, nil)

	if _, err := module.Verifier.Verify(context.Background(), ""); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := module.Verifier.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	// Tokens signed with another secret fail verification.
	other := token.NewVerifier("other-secret")
	foreign, err := other.Issue(entities.Claims{Subject: "user-1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := module.Verifier.Verify(context.Background(), foreign); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong signer, got %v", err)
	}

	// A valid signature without a subject is still rejected.
	empty, err := verifier.Issue(entities.Claims{Subject: ""})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := module.Verifier.Verify(context.Background(), empty); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
