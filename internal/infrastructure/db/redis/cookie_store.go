package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sensorwatch/console/internal/core/ports"
)

const defaultCookieTTL = 12 * time.Hour

// CookieStore persists the console's API cookies so a restarted console can
// restore its session during bootstrap.
// Key format: console:cookies:<origin>
type CookieStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.CookieStore = (*CookieStore)(nil)

// NewCookieStore creates a CookieStore; entries expire after ttl.
func NewCookieStore(client *redis.Client, ttl time.Duration) *CookieStore {
	if ttl <= 0 {
		ttl = defaultCookieTTL
	}
	return &CookieStore{client: client, ttl: ttl}
}

// Load returns the cookies saved for origin, or none when nothing is stored.
func (s *CookieStore) Load(ctx context.Context, origin string) ([]ports.StoredCookie, error) {
	raw, err := s.client.Get(ctx, s.key(origin)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}

	var cookies []ports.StoredCookie
	if err := json.Unmarshal(raw, &cookies); err != nil {
		return nil, fmt.Errorf("load cookies: decode: %w", err)
	}
	return cookies, nil
}

// Save replaces the cookies stored for origin. An empty set deletes the entry.
func (s *CookieStore) Save(ctx context.Context, origin string, cookies []ports.StoredCookie) error {
	if len(cookies) == 0 {
		return s.Clear(ctx, origin)
	}

	raw, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("save cookies: encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(origin), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	return nil
}

// Clear forgets the cookies stored for origin.
func (s *CookieStore) Clear(ctx context.Context, origin string) error {
	if err := s.client.Del(ctx, s.key(origin)).Err(); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

func (s *CookieStore) key(origin string) string {
	return "console:cookies:" + origin
}
