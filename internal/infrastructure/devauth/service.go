// Package devauth is a development stand-in for the monitoring API's auth
// endpoints: accounts in memory, bcrypt passwords, and a JWT session cookie.
package devauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sensorwatch/console/internal/core/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service implements registration, login and profile lookup.
type Service struct {
	store     *memoryStore
	jwtSecret string
	tokenTTL  time.Duration
	cost      int
}

func NewService(jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{store: newMemoryStore(), jwtSecret: jwtSecret, tokenTTL: tokenTTL, cost: bcrypt.DefaultCost}
}

// Register creates an account with the given role. New accounts from the
// public signup endpoint are always domain.RoleUser.
func (s *Service) Register(ctx context.Context, name, email, password, phone, role string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	switch role {
	case domain.RoleAdmin, domain.RoleSupervisor, domain.RoleUser:
	default:
		return nil, fmt.Errorf("%w: role %q", domain.ErrInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, &account{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	return toUser(created), nil
}

// Login checks the password and returns a signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	a, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(a)
	if err != nil {
		return "", nil, err
	}
	return token, toUser(a), nil
}

// Profile resolves a session token to its user.
func (s *Service) Profile(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}

	a, err := s.store.FindByID(ctx, sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return toUser(a), nil
}

// TokenTTL is the lifetime of issued session tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *Service) generateToken(a *account) (string, error) {
	claims := jwt.MapClaims{
		"sub":  a.ID,
		"role": a.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func toUser(a *account) *domain.User {
	return &domain.User{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// SeedAdmin creates an administrator account unless the email is taken.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.Register(ctx, "Administrator", email, password, "", domain.RoleAdmin)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}
