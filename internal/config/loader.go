package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the planner service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	SessionTTL    time.Duration
}

// Load parses configuration values from a .env file, if present, and the
// current process environment. Process environment wins over the file.
//
// The loader applies sensible defaults for optional fields while validating
// required values.
func Load() (Config, error) {
	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:courseplan.db?_foreign_keys=on",
		SessionTTL: 24 * time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("COURSEPLAN_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "COURSEPLAN_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("COURSEPLAN_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("COURSEPLAN_SESSION_SECRET")); secret == "" {
		missing = append(missing, "COURSEPLAN_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("COURSEPLAN_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "COURSEPLAN_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
