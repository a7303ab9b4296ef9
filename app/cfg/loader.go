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
	// Content and output
	ContentDir string `long:"content-dir" env:"CONTENT_DIR" default:"docs/docs/dbt-versions/release-notes" description:"Directory containing release note Markdown files"`
	OutputDir  string `long:"output-dir" env:"OUTPUT_DIR" default:"./static/feeds" description:"Directory the rss.xml, atom.xml and rss.json files are written to"`
	FeedConfig string `long:"feed-config" env:"FEED_CONFIG" description:"YAML file with feed descriptors and path rules (optional)"`
	Verify     bool   `long:"verify" env:"VERIFY" description:"Parse written feeds back and check every entry"`

	// Build ledger
	DBPath string `long:"db-path" env:"DB_PATH" description:"SQLite database recording each build (optional)"`

	// Preview server
	Serve           bool   `long:"serve" env:"SERVE" description:"Serve the generated feeds over HTTP after building"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RebuildInterval int    `long:"rebuild-interval" env:"REBUILD_INTERVAL" default:"0" description:"Rebuild interval in seconds while serving (0 disables)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone dates without an offset are read in (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line arguments and environment variables. It returns
// nil without an error when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.RebuildInterval < 0 {
		return nil, fmt.Errorf("rebuild interval must be non-negative")
	}

	cfg := &Cfg{
		ContentDir:      raw.ContentDir,
		OutputDir:       raw.OutputDir,
		FeedConfig:      raw.FeedConfig,
		Verify:          raw.Verify,
		DBPath:          raw.DBPath,
		Serve:           raw.Serve,
		Port:            raw.Port,
		RebuildInterval: raw.RebuildInterval,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	return cfg, nil
}

func (c *Cfg) GetRebuildInterval() time.Duration {
	return time.Duration(c.RebuildInterval) * time.Second
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Cfg) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}
