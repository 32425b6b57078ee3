package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type fixedGate bool

func (g fixedGate) Settled() bool { return bool(g) }

func readiness(t *testing.T, h *ReadinessHandler) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_PendingGate(t *testing.T) {
	code, resp := readiness(t, NewReadinessHandler(fixedGate(false), nil))
	if code != http.StatusServiceUnavailable || resp.Dependencies["session"].Status != "pending" {
		t.Fatalf("unexpected readiness: %d %+v", code, resp)
	}
	if _, ok := resp.Dependencies["redis"]; ok {
		t.Fatalf("redis must not be reported when not configured")
	}
}

func TestReadiness_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	code, resp := readiness(t, NewReadinessHandler(fixedGate(true), rdb))
	if code != http.StatusOK || resp.Status != "ok" || resp.Dependencies["redis"].Status != "ok" {
		t.Fatalf("unexpected readiness: %d %+v", code, resp)
	}

	mr.Close()
	code, resp = readiness(t, NewReadinessHandler(fixedGate(true), rdb))
	if code != http.StatusServiceUnavailable || resp.Dependencies["redis"].Status != "unhealthy" {
		t.Fatalf("expected degraded readiness, got %d %+v", code, resp)
	}
}
