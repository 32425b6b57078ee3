package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sensorwatch/console/internal/api/metrics"
	"github.com/sensorwatch/console/internal/core/domain"
)

// Mode tells the bootstrap gate whether the process can reach the user's
// session at all.
type Mode string

const (
	// ModeClient runs in the operator's own context: the API credentials are
	// available and the session is restored before the gate settles.
	ModeClient Mode = "client"
	// ModePrerender has no user-facing session; the gate settles at once.
	ModePrerender Mode = "prerender"
)

// ParseMode validates a configured render mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeClient, ModePrerender:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown render mode %q", domain.ErrInvalidInput, s)
	}
}

// Restorer is the part of the session service the gate drives.
type Restorer interface {
	Restore(ctx context.Context) *domain.User
}

// BootstrapGate is a single-assignment readiness signal: pending until the
// first restoration attempt has finished, then settled forever. Settling does
// not imply that a user is signed in.
type BootstrapGate struct {
	done chan struct{}
	once sync.Once
}

// StartBootstrap creates the gate and immediately starts the restoration
// attempt in the background. It must be called once, before the router
// accepts its first request.
func StartBootstrap(ctx context.Context, restorer Restorer, mode Mode, log zerolog.Logger) *BootstrapGate {
	g := &BootstrapGate{done: make(chan struct{})}
	log = log.With().Str("component", "bootstrap").Str("mode", string(mode)).Logger()
	started := time.Now()

	go func() {
		defer func() {
			g.settle()
			metrics.BootstrapDuration.WithLabelValues(string(mode)).Observe(time.Since(started).Seconds())
			log.Debug().Dur("took", time.Since(started)).Msg("bootstrap gate settled")
		}()

		if mode != ModeClient {
			return
		}
		runRestore(ctx, restorer, log)
	}()

	return g
}

// runRestore shields the gate from a panicking restoration.
func runRestore(ctx context.Context, restorer Restorer, log zerolog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("initial session restore failed")
		}
	}()

	if user := restorer.Restore(ctx); user != nil {
		log.Info().Str("user_id", user.ID).Msg("initial session restored")
	}
}

func (g *BootstrapGate) settle() {
	g.once.Do(func() { close(g.done) })
}

// Wait blocks until the gate has settled. It only returns an error when ctx
// ends first.
func (g *BootstrapGate) Wait(ctx context.Context) error {
	if g.Settled() {
		return nil
	}
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for session bootstrap: %w", ctx.Err())
	}
}

// Done returns a channel closed once the gate has settled.
func (g *BootstrapGate) Done() <-chan struct{} {
	return g.done
}

// Settled reports whether the gate has settled, without blocking.
func (g *BootstrapGate) Settled() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}
