package ports

import (
	"context"

	"github.com/sensorwatch/console/internal/core/domain"
)

// AuthResult is what a sign-in or sign-up attempt reports to the UI layer.
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SessionService performs the session transitions. None of its methods
// surface transport failures as errors.
type SessionService interface {
	Restore(ctx context.Context) *domain.User
	SignIn(ctx context.Context, identifier, password string) AuthResult
	SignUp(ctx context.Context, req SignupRequest) AuthResult
	SignOut(ctx context.Context)
}

// SessionReader is the read side of the session, handed to guards and views.
type SessionReader interface {
	Current() *domain.User
	IsAuthenticated() bool
	IsPrivileged() bool
}

// CookieStore persists the console's API cookies between process runs.
type CookieStore interface {
	Load(ctx context.Context, origin string) ([]StoredCookie, error)
	Save(ctx context.Context, origin string, cookies []StoredCookie) error
	Clear(ctx context.Context, origin string) error
}

// StoredCookie is the persisted name/value pair of a jar cookie.
type StoredCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
