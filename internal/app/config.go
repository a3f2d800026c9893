package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Key store backends selectable via EXAMSEAL_KEY_BACKEND.
const (
	KeyBackendKeyring = "keyring"
	KeyBackendFile    = "file"
)

// Config holds runtime wiring options. Values come from the environment, with
// an optional .env file for development.
type Config struct {
	Home         string        // state dir, default ~/.examseal
	BackendURL   string        // empty = offline-only, submissions park pending
	KeyBackend   string        // "keyring" (default) or "file"
	KeyService   string        // key store service identifier
	KeyAccount   string        // key store account identifier
	Passphrase   string        // required for the file key backend
	PingInterval time.Duration // network monitor probe interval
	TickInterval time.Duration // countdown driver tick interval

	HTTP   *http.Client // optional; defaults to http.DefaultClient
	Clock  clock.Clock  // optional; defaults to the wall clock
	Logger *zap.Logger  // optional; defaults to zap.NewProduction
}

// Load reads configuration from the environment. A missing .env file is fine.
// Callers may override individual fields before handing the config to NewWire,
// which validates it.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Home:         getEnv("EXAMSEAL_HOME", ""),
		BackendURL:   getEnv("EXAMSEAL_BACKEND_URL", ""),
		KeyBackend:   getEnv("EXAMSEAL_KEY_BACKEND", KeyBackendKeyring),
		KeyService:   getEnv("EXAMSEAL_KEY_SERVICE", "examseal"),
		KeyAccount:   getEnv("EXAMSEAL_KEY_ACCOUNT", "answer-key"),
		Passphrase:   os.Getenv("EXAMSEAL_KEY_PASSPHRASE"),
		PingInterval: getEnvDuration("EXAMSEAL_PING_INTERVAL", 5*time.Second),
		TickInterval: getEnvDuration("EXAMSEAL_TICK_INTERVAL", time.Second),
	}

	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		cfg.Home = filepath.Join(dir, ".examseal")
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.KeyBackend {
	case KeyBackendKeyring:
	case KeyBackendFile:
		if c.Passphrase == "" {
			return fmt.Errorf("EXAMSEAL_KEY_PASSPHRASE is required for the file key backend")
		}
	default:
		return fmt.Errorf("unknown key backend %q", c.KeyBackend)
	}
	if c.PingInterval <= 0 || c.TickInterval <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
