package feed

import (
	"time"
)

// Document types

type RawDocument struct {
	Path     string // Repository-relative path, slash separated
	FileName string
	Metadata map[string]any
	Body     string
}

// Feed types

type Entry struct {
	Title       string
	ID          string // Optional, from frontmatter
	Description string // Optional, from frontmatter
	Link        string
	Date        time.Time
	Categories  []string
}

type Envelope struct {
	Title       string
	Description string
	ID          string
	Link        string
	Language    string
	Image       string
	Favicon     string
	Copyright   string
	Generator   string
	FeedLinks   map[Format]string
	Updated     time.Time
	Entries     []Entry
}

type Format string

const (
	FormatRSS2 Format = "rss2"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
)

// Formats lists every output encoding in write order.
var Formats = []Format{FormatRSS2, FormatAtom, FormatJSON}

// Configuration types

type Config struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	SiteURL     string     `yaml:"site_url"`
	PreviewURL  string     `yaml:"preview_url"`
	Image       string     `yaml:"image"`
	Favicon     string     `yaml:"favicon"`
	Copyright   string     `yaml:"copyright"` // {year} is replaced with the current year
	Language    string     `yaml:"language"`
	PathRules   []PathRule `yaml:"path_rules"`
}

type PathRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}
