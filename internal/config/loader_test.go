package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"COURSEPLAN_HTTP_PORT",
			"COURSEPLAN_SQLITE_DSN",
			"COURSEPLAN_SESSION_TTL",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		const secret = "super-secret"
		t.Setenv("COURSEPLAN_SESSION_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:courseplan.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionSecret != secret {
			t.Fatalf("expected session secret to be %q, got %q", secret, cfg.SessionSecret)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		for _, key := range []string{
			"COURSEPLAN_SESSION_SECRET",
			"COURSEPLAN_HTTP_PORT",
			"COURSEPLAN_SQLITE_DSN",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: COURSEPLAN_SESSION_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("COURSEPLAN_SESSION_SECRET", "secret-value")
		t.Setenv("COURSEPLAN_HTTP_PORT", "9090")
		t.Setenv("COURSEPLAN_SQLITE_DSN", "file:/tmp/courseplan.db")
		t.Setenv("COURSEPLAN_SESSION_TTL", "12h")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/courseplan.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("COURSEPLAN_SESSION_SECRET", "secret-value")
		t.Setenv("COURSEPLAN_HTTP_PORT", "not-a-port")
		t.Setenv("COURSEPLAN_SESSION_TTL", "soon")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed values")
		}
	})
}
