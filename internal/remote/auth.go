package remote

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"github.com/sadopc/clearway/internal/logger"
)

var (
	ErrNoUser       = errors.New("no signed-in user configured")
	ErrUnknownUser  = errors.New("user not found")
	ErrUserDisabled = errors.New("user account is disabled")
)

// User is the account that owns remote journal entries.
type User struct {
	UID   string
	Email string
}

// UserLookup is the part of the Firebase Auth client CurrentUser needs.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error)
}

func NewAuth(ctx context.Context, app *firebase.App) (*auth.Client, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return client, nil
}

// CurrentUser resolves the configured email to a uid.
func CurrentUser(ctx context.Context, users UserLookup, email string) (User, error) {
	if email == "" {
		return User{}, ErrNoUser
	}
	rec, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return User{}, fmt.Errorf("%w: %s", ErrUnknownUser, email)
		}
		return User{}, fmt.Errorf("lookup %s: %w", email, err)
	}
	if rec.Disabled {
		return User{}, ErrUserDisabled
	}
	logger.Info("Signed in", "uid", rec.UID)
	return User{UID: rec.UID, Email: rec.Email}, nil
}
