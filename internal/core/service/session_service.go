package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/api/metrics"
	"github.com/sensorwatch/console/internal/core/domain"
	"github.com/sensorwatch/console/internal/core/ports"
)

const (
	signInFallback = "Login failed. Please try again."
	signUpFallback = "Signup failed. Please try again."
)

var errNoSession = errors.New("profile carries no user id")

// SessionService implements the session transitions on top of an AuthTransport.
// It is the only writer of its SessionStore.
type SessionService struct {
	transport ports.AuthTransport
	store     *SessionStore
	log       zerolog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

// NewSessionService returns a SessionService writing into store.
func NewSessionService(transport ports.AuthTransport, store *SessionStore, log zerolog.Logger) *SessionService {
	return &SessionService{
		transport: transport,
		store:     store,
		log:       log.With().Str("component", "session").Logger(),
	}
}

// Store returns the read side of the session.
func (s *SessionService) Store() *SessionStore {
	return s.store
}

// Restore asks the API whether the console's credentials still map to a
// session and mirrors the answer into the store. It returns the restored user,
// or nil when the store was cleared.
func (s *SessionService) Restore(ctx context.Context) *domain.User {
	user, err := s.loadProfile(ctx)
	if err != nil {
		if errors.Is(err, errNoSession) {
			s.log.Debug().Msg("no session to restore")
		} else {
			s.log.Warn().Err(err).Msg("session restore failed")
		}
		s.store.clear()
		metrics.SessionTransitionsTotal.WithLabelValues("restore", "anonymous").Inc()
		return nil
	}

	s.store.replace(*user)
	metrics.SessionTransitionsTotal.WithLabelValues("restore", "authenticated").Inc()
	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("session restored")
	return user
}

// loadProfile fetches and decodes the profile. The response status is not
// inspected: any body that decodes to a user with an id is a session.
func (s *SessionService) loadProfile(ctx context.Context) (*domain.User, error) {
	resp, err := s.transport.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if resp == nil || len(resp.Body) == 0 {
		return nil, errNoSession
	}

	var user domain.User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("load profile: decode (status %d): %w", resp.StatusCode, err)
	}
	if user.ID == "" {
		return nil, errNoSession
	}
	return &user, nil
}

// SignIn logs in with identifier as the email and, on success, restores the
// session from the profile endpoint. A failed attempt always clears the store.
func (s *SessionService) SignIn(ctx context.Context, identifier, password string) ports.AuthResult {
	err := s.transport.Login(ctx, ports.LoginRequest{Email: identifier, Password: password})
	if err != nil {
		s.store.clear()
		metrics.SessionTransitionsTotal.WithLabelValues("sign_in", "failed").Inc()
		s.log.Info().Err(err).Msg("sign-in rejected")
		return ports.AuthResult{Success: false, Error: messageOr(err, signInFallback)}
	}

	s.Restore(ctx)
	metrics.SessionTransitionsTotal.WithLabelValues("sign_in", "authenticated").Inc()
	return ports.AuthResult{Success: true}
}

// SignUp registers a new account and, on success, restores the session.
// A failed attempt leaves the store as it was.
func (s *SessionService) SignUp(ctx context.Context, req ports.SignupRequest) ports.AuthResult {
	if err := s.transport.Signup(ctx, req); err != nil {
		metrics.SessionTransitionsTotal.WithLabelValues("sign_up", "failed").Inc()
		s.log.Info().Err(err).Msg("sign-up rejected")
		return ports.AuthResult{Success: false, Error: messageOr(err, signUpFallback)}
	}

	s.Restore(ctx)
	metrics.SessionTransitionsTotal.WithLabelValues("sign_up", "authenticated").Inc()
	return ports.AuthResult{Success: true}
}

// SignOut tells the API to end the session and clears the local session
// whatever the API answered. The remote session may outlive a failed call.
func (s *SessionService) SignOut(ctx context.Context) {
	defer func() {
		s.store.clear()
		metrics.SessionTransitionsTotal.WithLabelValues("sign_out", "cleared").Inc()
	}()

	if err := s.transport.Logout(ctx); err != nil {
		s.log.Warn().Err(err).Msg("logout call failed, session cleared locally")
	}
}

func messageOr(err error, fallback string) string {
	if msg := domain.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
