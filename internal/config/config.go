package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBase       = "http://localhost:5044"
	defaultHTTPTimeout   = 30 * time.Second
	defaultCheckInterval = 60 * time.Second
)

type Config struct {
	APIBase           string
	StateDir          string
	DemoMode          bool
	Debug             bool
	MockNotifications bool
	HTTPTimeout       time.Duration
	TokenCheckEvery   time.Duration
}

// Load reads .env from the working directory when present, then the process
// environment. Unset variables take defaults; malformed ones are errors.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		APIBase:           defaultAPIBase,
		MockNotifications: true,
		HTTPTimeout:       defaultHTTPTimeout,
		TokenCheckEvery:   defaultCheckInterval,
	}

	/** backend origin */
	for _, key := range []string{"VITE_API_BASE", "VITE_API_BASE_URL"} {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			cfg.APIBase = v
			break
		}
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	/** flags */
	var err error
	if cfg.DemoMode, err = parseBool(getenv, "VITE_DEMO_MODE", false); err != nil {
		return nil, err
	}
	if cfg.Debug, err = parseBool(getenv, "EVTB_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.MockNotifications, err = parseBool(getenv, "EVTB_MOCK_NOTIFICATIONS", true); err != nil {
		return nil, err
	}

	/** durations */
	if cfg.HTTPTimeout, err = parseDuration(getenv, "EVTB_HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.TokenCheckEvery, err = parseDuration(getenv, "EVTB_TOKEN_CHECK_INTERVAL", defaultCheckInterval); err != nil {
		return nil, err
	}

	/** state dir */
	cfg.StateDir = getenv("EVTB_STATE_DIR")
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: get home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".evtb")
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, v)
	}
	return d, nil
}
