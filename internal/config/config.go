// Package config parses the command line. Every flag takes its default from an
// environment variable, so the player can be configured either way.
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/skyjuke/skyjuke/internal/logging"
	flag "github.com/spf13/pflag"
)

const (
	// DefaultFilterLimit is the result bound of a recursive filter search.
	DefaultFilterLimit = 200
	// MaxFilterLimit is the largest bound the server accepts.
	MaxFilterLimit = 1000
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the player configuration.
type Config struct {
	Server      string
	Store       string
	StateDir    string
	RedisURL    string
	MPV         string
	MetricsAddr string
	MPRIS       bool
	FilterLimit int
	PlaylistTTL time.Duration
	LogLevel    string
	Timeout     time.Duration
}

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// Parse parses args, excluding the program name. Help output and usage errors
// are written to out.
func Parse(args []string, getenv Getenv, out io.Writer) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	var cfg Config

	fs := flag.NewFlagSet("skyjuke", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintln(out, "Usage: skyjuke [flags]")
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Server, "server",
		getEnv(getenv, "SKYJUKE_SERVER", "http://localhost:8080"),
		"base URL of the music server")
	fs.StringVar(&cfg.Store, "store",
		getEnv(getenv, "SKYJUKE_STORE", StoreFile),
		"playlist store: file, redis or memory")
	fs.StringVar(&cfg.StateDir, "state-dir",
		getEnv(getenv, "SKYJUKE_STATE_DIR", defaultStateDir(getenv)),
		"directory of the file store")
	fs.StringVar(&cfg.RedisURL, "redis-url",
		getEnv(getenv, "SKYJUKE_REDIS_URL", ""),
		"redis URL of the redis store")
	fs.StringVar(&cfg.MPV, "mpv",
		getEnv(getenv, "SKYJUKE_MPV", "mpv"),
		"mpv executable")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr",
		getEnv(getenv, "SKYJUKE_METRICS_ADDR", ""),
		"address to serve /metrics and /healthz on, empty to disable")
	fs.BoolVar(&cfg.MPRIS, "mpris",
		getEnvBool(getenv, "SKYJUKE_MPRIS", true),
		"export the player over MPRIS")
	fs.IntVar(&cfg.FilterLimit, "filter-limit",
		getEnvInt(getenv, "SKYJUKE_FILTER_LIMIT", DefaultFilterLimit),
		"maximum results of a recursive filter search")
	fs.DurationVar(&cfg.PlaylistTTL, "playlist-ttl",
		getEnvDuration(getenv, "SKYJUKE_PLAYLIST_TTL", 365*24*time.Hour),
		"lifetime of the saved playlist")
	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv(getenv, "LOG_LEVEL", ""),
		"log level: debug, info, warn or error")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second,
		"timeout of a single server request")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *Config) validate() error {
	u, err := url.Parse(cfg.Server)
	if err != nil {
		return errors.Wrap(err, "invalid --server")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("invalid --server %q: scheme must be http or https", cfg.Server)
	}

	switch cfg.Store {
	case StoreFile:
		if cfg.StateDir == "" {
			return errors.New("--state-dir is required for the file store")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("--redis-url is required for the redis store")
		}
	case StoreMemory:
	default:
		return errors.Errorf("unknown --store %q", cfg.Store)
	}

	if cfg.FilterLimit < 1 {
		return errors.Errorf("invalid --filter-limit %d", cfg.FilterLimit)
	}
	if cfg.FilterLimit > MaxFilterLimit {
		logging.Warn("--filter-limit %d is above %d, using %d",
			cfg.FilterLimit, MaxFilterLimit, MaxFilterLimit)
		cfg.FilterLimit = MaxFilterLimit
	}

	if cfg.Timeout <= 0 {
		return errors.Errorf("invalid --timeout %v", cfg.Timeout)
	}

	if cfg.LogLevel != "" {
		if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
			return errors.Wrap(err, "invalid --log-level")
		}
	}

	return nil
}

// PlaylistPath returns the file store path.
func (cfg *Config) PlaylistPath() string {
	return filepath.Join(cfg.StateDir, "playlist.json")
}

func defaultStateDir(getenv Getenv) string {
	if dir := getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "skyjuke")
	}

	if home := getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "skyjuke")
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "skyjuke")
}

func getEnv(getenv Getenv, key, defaultValue string) string {
	if value := getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(getenv Getenv, key string, defaultValue bool) bool {
	value := getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(getenv Getenv, key string, defaultValue int) int {
	value := getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(getenv Getenv, key string, defaultValue time.Duration) time.Duration {
	value := getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
