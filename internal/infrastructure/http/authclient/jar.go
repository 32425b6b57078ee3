package authclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/core/ports"
)

const persistTimeout = 2 * time.Second

// persistentJar is a cookie jar that mirrors the API origin's cookies into a
// CookieStore after every change. Without a store it is a plain jar.
type persistentJar struct {
	*cookiejar.Jar
	origin *url.URL
	store  ports.CookieStore
	log    zerolog.Logger
}

func newPersistentJar(origin *url.URL, store ports.CookieStore, log zerolog.Logger) (*persistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("authclient: cookie jar: %w", err)
	}
	return &persistentJar{Jar: jar, origin: origin, store: store, log: log}, nil
}

// SetCookies records cookies and, for the API origin, persists the new set.
func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)
	if j.store == nil || u.Host != j.origin.Host {
		return
	}

	current := j.Jar.Cookies(j.origin)
	stored := make([]ports.StoredCookie, 0, len(current))
	for _, ck := range current {
		stored = append(stored, ports.StoredCookie{Name: ck.Name, Value: ck.Value})
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := j.store.Save(ctx, j.key(), stored); err != nil {
		j.log.Warn().Err(err).Msg("could not persist cookies")
	}
}

// load seeds the jar from the store without writing back.
func (j *persistentJar) load(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	stored, err := j.store.Load(ctx, j.key())
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	j.Jar.SetCookies(j.origin, cookies)
	j.log.Debug().Int("count", len(cookies)).Msg("persisted cookies loaded")
	return nil
}

func (j *persistentJar) key() string {
	return j.origin.Scheme + "://" + j.origin.Host
}
