package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Content configuration
	PostsDir string `long:"posts-dir" env:"POSTS_DIR" default:"./posts" description:"Directory containing markdown post files"`
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./blog-press.db" description:"Path to the SQLite search index database"`

	// Site metadata
	SiteTitle       string `long:"site-title" env:"SITE_TITLE" default:"Blog Press" description:"Site and feed title"`
	SiteDescription string `long:"site-description" env:"SITE_DESCRIPTION" description:"Site and feed description"`
	SiteAuthor      string `long:"site-author" env:"SITE_AUTHOR" description:"Site author name"`
	BaseUrl         string `long:"base-url" env:"BASE_URL" description:"Public base URL for the site (e.g., https://blog.example.com)"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for content tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Content rescan interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		PostsDir:          raw.PostsDir,
		DBPath:            raw.DBPath,
		SiteTitle:         raw.SiteTitle,
		SiteDescription:   raw.SiteDescription,
		SiteAuthor:        raw.SiteAuthor,
		BaseUrl:           raw.BaseUrl,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
