package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"slices"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const defaultSiteURL = "https://docs.getdbt.com"

func DefaultConfig() *Config {
	return &Config{
		Title:       "dbt Cloud Release Notes",
		Description: "dbt provides release notes for dbt Cloud so you can see recent and historical changes.",
		SiteURL:     defaultSiteURL,
		Image:       "https://www.getdbt.com/ui/img/blog/dbt-card.jpg",
		Favicon:     defaultSiteURL + "/img/favicon.svg",
		Copyright:   "Copyright © {year} dbt Labs™, Inc. All Rights Reserved.",
		Language:    "en",
		PathRules:   slices.Clone(DefaultPathRules),
	}
}

// LoadConfig reads feed descriptors from a YAML file. Fields missing from the
// file keep their default values; an empty path returns the defaults.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	setDefaults(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	slog.Debug("Feed configuration loaded",
		"file", configFile,
		"title", config.Title,
		"site_url", config.SiteURL,
		"path_rules", len(config.PathRules))

	return config, nil
}

func setDefaults(config *Config) {
	if config.PreviewURL == "" {
		config.PreviewURL = config.SiteURL
	}
	if config.PathRules == nil {
		config.PathRules = slices.Clone(DefaultPathRules)
	}
}

func validateConfig(config *Config) error {
	if config.Title == "" {
		return fmt.Errorf("feed title is required")
	}

	urls := []struct{ name, raw string }{
		{"site_url", config.SiteURL},
		{"preview_url", config.PreviewURL},
	}
	for _, field := range urls {
		name, raw := field.name, field.raw
		if raw == "" {
			return fmt.Errorf("%s is required", name)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL: %q", name, raw)
		}
	}

	if config.Language != "" {
		tag, err := language.Parse(config.Language)
		if err != nil {
			return fmt.Errorf("invalid language %q: %w", config.Language, err)
		}
		config.Language = tag.String()
	}

	for i, rule := range config.PathRules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid path rule at index %d: %w", i, err)
		}
	}

	return nil
}
