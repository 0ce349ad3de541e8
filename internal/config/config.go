package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the timeline service.
// Environment variables are automatically parsed from the UFO_TIMELINE_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort    int    `envconfig:"HTTP_PORT" default:"8080"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`

	// Store selection: "auto" picks sqlite when SQLITE_PATH is set,
	// otherwise the in-memory store.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	// Dataset seeding. When SEED_FILE is empty the embedded dataset is
	// used; WATCH_SEED hot-reloads the file on change.
	SeedFile  string `envconfig:"SEED_FILE" default:""`
	WatchSeed bool   `envconfig:"WATCH_SEED" default:"true"`

	// Admin surface credentials and token lifetime.
	AdminUsername string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:""`
	AdminTokenTTL time.Duration `envconfig:"ADMIN_TOKEN_TTL" default:"12h"`

	// View-state sessions. FAVORITES_FILE, when set, persists each
	// session's favorite marks and seeds new sessions from the file.
	FavoritesFile string        `envconfig:"FAVORITES_FILE" default:""`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	TimelineWidth float64       `envconfig:"TIMELINE_WIDTH" default:"1200"`
	GlobeSize     float64       `envconfig:"GLOBE_SIZE" default:"600"`

	// Health probing.
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"15s"`

	// Development mode enables the hardcoded local admin token.
	DevMode bool `envconfig:"DEV_MODE" default:"false"`
}

// ResolveDefaults validates StoreDriver and derives it when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	if c.StoreDriver == "" || c.StoreDriver == "auto" {
		if c.SQLitePath != "" {
			c.StoreDriver = "sqlite"
		} else {
			c.StoreDriver = "memory"
		}
	}

	allowed := map[string]bool{"memory": true, "sqlite": true}
	if !allowed[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "sqlite" && c.SQLitePath == "" {
		return fmt.Errorf("STORE_DRIVER=sqlite requires SQLITE_PATH")
	}
	return nil
}

// IsDevMode reports whether the hardcoded local admin token is accepted.
func (c *Config) IsDevMode() bool {
	return c.DevMode || c.Environment == EnvDevelopment
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with UFO_TIMELINE_
// Example: UFO_TIMELINE_HTTP_PORT, UFO_TIMELINE_SEED_FILE
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("UFO_TIMELINE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Bool("seed_file_present", cfg.SeedFile != "").
		Bool("watch_seed", cfg.WatchSeed).
		Dur("session_ttl", cfg.SessionTTL).
		Bool("dev_mode", cfg.IsDevMode()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:    EnvTesting,
		HTTPPort:       8080,
		CORSOrigins:    "*",
		StoreDriver:    "memory",
		WatchSeed:      false,
		AdminUsername:  "admin",
		AdminPassword:  "test-password",
		AdminTokenTTL:  time.Hour,
		SessionTTL:     time.Minute,
		TimelineWidth:  1200,
		GlobeSize:      600,
		HealthInterval: time.Second,
		DevMode:        true,
	}
	return cfg
}
