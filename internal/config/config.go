// Package config reads server settings from the environment, after loading an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	ReconnectGrace time.Duration
	SweepInterval  time.Duration
	LogLevel       string
	InviteBaseURL  string
	AllowedOrigins []string
	SendBuffer     int
}

func Defaults() Config {
	return Config{
		Addr:           ":8080",
		ReconnectGrace: 10 * time.Minute,
		SweepInterval:  time.Second,
		LogLevel:       "info",
		SendBuffer:     32,
	}
}

// Load reads .env from the working directory when present, then the
// process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, falling back to Defaults for unset
// keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()
	var errs []error

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := get(key)
		if !ok {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, v))
			return
		}
		*dst = d
	}

	if v, ok := get("HEX_ADDR"); ok {
		cfg.Addr = v
	}
	duration("HEX_RECONNECT_GRACE", &cfg.ReconnectGrace)
	duration("HEX_SWEEP_INTERVAL", &cfg.SweepInterval)

	if v, ok := get("HEX_LOG_LEVEL"); ok {
		switch v = strings.ToLower(v); v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			errs = append(errs, fmt.Errorf("HEX_LOG_LEVEL: unknown level %q", v))
		}
	}
	if v, ok := get("HEX_INVITE_BASE_URL"); ok {
		cfg.InviteBaseURL = v
	}
	if v, ok := get("HEX_ALLOWED_ORIGINS"); ok {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}
	if v, ok := get("HEX_SEND_BUFFER"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs = append(errs, fmt.Errorf("HEX_SEND_BUFFER: invalid size %q", v))
		} else {
			cfg.SendBuffer = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
