package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if cfg.Port != "3000" || cfg.RenderMode != "client" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.API.Base != defaultAPIBase {
		t.Fatalf("expected default API base, got %q", cfg.API.Base)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.API.Timeout)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.CookieTTL != 12*time.Hour {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
}

func TestLoadFrom_LegacyAPIBase(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NUXT_PUBLIC_API_BASE": "https://api.example.com",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.API.Base != "https://api.example.com" {
		t.Fatalf("expected legacy base to be honoured, got %q", cfg.API.Base)
	}

	cfg, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"NUXT_PUBLIC_API_BASE": "https://api.example.com",
		"API_BASE":             "https://internal.example.com",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.API.Base != "https://internal.example.com" {
		t.Fatalf("expected API_BASE to win, got %q", cfg.API.Base)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"render mode":  {"RENDER_MODE": "server"},
		"relative url": {"API_BASE": "/api"},
		"bad scheme":   {"API_BASE": "ftp://api.example.com"},
		"bad timeout":  {"API_TIMEOUT": "soon"},
		"neg timeout":  {"API_TIMEOUT": "-1s"},
	}

	for name, env := range cases {
		if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
