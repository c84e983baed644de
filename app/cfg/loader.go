package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Remote API
	Session    string `long:"session" env:"LIBRIA_SESSION" description:"AniLibria session id; enables favorites"`
	ConfigFile string `long:"config" env:"CONFIG_FILE" default:"./libria.yml" description:"YAML file with API endpoints"`
	UserAgent  string `long:"user-agent" env:"USER_AGENT" description:"User agent string for HTTP requests (overrides the config file)"`
	Locale     string `long:"locale" env:"LIBRIA_LOCALE" description:"Locale for human-readable dates (defaults to the system locale)"`

	// Storage
	DBPath    string `long:"db-path" env:"DB_PATH" default:"./data/libria.db" description:"SQLite file for persisted settings; empty keeps settings in memory"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the poster cache (optional)"`
	PosterTTL int    `long:"poster-ttl" env:"POSTER_TTL" default:"86400" description:"Poster cache TTL in seconds"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	RefreshInterval   int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"300" description:"Refresh interval in seconds; 0 disables periodic refresh"`
	PosterConcurrency int    `long:"poster-concurrency" env:"POSTER_CONCURRENCY" default:"6" description:"Maximum concurrent poster downloads"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	NtfyTopic         string `long:"ntfy-topic" env:"NTFY_TOPIC" description:"ntfy topic URL for error notifications (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for timestamps (e.g., UTC, Europe/Moscow)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the command line and environment. It returns nil, nil when
// help was requested.
func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return cfg, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Cfg{
		Session:           raw.Session,
		ConfigFile:        raw.ConfigFile,
		UserAgent:         raw.UserAgent,
		Locale:            raw.Locale,
		DBPath:            raw.DBPath,
		RedisAddr:         raw.RedisAddr,
		PosterTTL:         raw.PosterTTL,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		RefreshInterval:   raw.RefreshInterval,
		PosterConcurrency: raw.PosterConcurrency,
		APIAccessKey:      raw.APIAccessKey,
		NtfyTopic:         raw.NtfyTopic,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}, nil
}

func (r *rawCfg) validate() error {
	nonNegativeFields := map[string]int{
		"refresh interval": r.RefreshInterval,
		"poster TTL":       r.PosterTTL,
	}
	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	positiveFields := map[string]int{
		"worker count":       r.WorkerCount,
		"poster concurrency": r.PosterConcurrency,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}

	time.Local = loc
	slog.Info("Timezone configured", "timezone", timezone)
	return nil
}
