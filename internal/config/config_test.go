package config

import (
	"testing"
	"time"
)

func TestLoadRequiresTokenSecrets(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when token secrets are missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "refresh-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.AppPort)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("expected default access ttl, got %v", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 10*24*time.Hour {
		t.Fatalf("expected default refresh ttl, got %v", cfg.RefreshTTL)
	}
	if cfg.ObjectStore.Bucket != "vidtube-media" {
		t.Fatalf("expected default bucket, got %q", cfg.ObjectStore.Bucket)
	}
	if cfg.SecureCookies {
		t.Fatal("expected secure cookies to default off")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("VIDTUBE_PORT", "9090")
	t.Setenv("VIDTUBE_ACCESS_TOKEN_TTL", "5m")
	t.Setenv("VIDTUBE_SECURE_COOKIES", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected port override, got %d", cfg.AppPort)
	}
	if cfg.AccessTTL != 5*time.Minute {
		t.Fatalf("expected ttl override, got %v", cfg.AccessTTL)
	}
	if !cfg.SecureCookies {
		t.Fatal("expected secure cookies override")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("VIDTUBE_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("VIDTUBE_REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("VIDTUBE_PORT", "not-a-number")
	t.Setenv("VIDTUBE_ACCESS_TOKEN_TTL", "eventually")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected fallback port, got %d", cfg.AppPort)
	}
	if cfg.AccessTTL != 15*time.Minute {
		t.Fatalf("expected fallback ttl, got %v", cfg.AccessTTL)
	}
}
