package ports

import "context"

// ProfileResponse is the raw answer of GET /auth/profile. Non-2xx answers are
// delivered as data, not as errors.
type ProfileResponse struct {
	StatusCode int
	Body       []byte
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

// AuthTransport reaches the monitoring API's auth endpoints with the console's
// credentials attached. Login, Signup and Logout return a *domain.RequestError
// (possibly wrapped) for non-2xx answers.
type AuthTransport interface {
	Profile(ctx context.Context) (*ProfileResponse, error)
	Login(ctx context.Context, req LoginRequest) error
	Signup(ctx context.Context, req SignupRequest) error
	Logout(ctx context.Context) error
}
