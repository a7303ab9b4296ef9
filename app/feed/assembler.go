package feed

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// FallbackUpdated is the feed's updated value when there are no entries.
var FallbackUpdated = time.Date(2023, time.February, 18, 0, 0, 0, 0, time.UTC)

var feedFiles = map[Format]string{
	FormatRSS2: "rss.xml",
	FormatAtom: "atom.xml",
	FormatJSON: "rss.json",
}

// FileName returns the fixed file name a format is published under.
func FileName(format Format) (string, error) {
	name, ok := feedFiles[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return name, nil
}

type Assembler struct {
	now       func() time.Time
	generator string
}

func NewAssembler(now func() time.Time, generator string) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now, generator: generator}
}

func (a *Assembler) Run(entries []Entry, config *Config) Envelope {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(x, y Entry) int {
		return y.Date.Compare(x.Date)
	})

	updated := FallbackUpdated
	if len(sorted) > 0 {
		updated = sorted[0].Date
	}

	previewURL := strings.TrimSuffix(config.PreviewURL, "/")
	feedLinks := make(map[Format]string, len(feedFiles))
	for format, name := range feedFiles {
		feedLinks[format] = previewURL + "/" + name
	}

	return Envelope{
		Title:       config.Title,
		Description: config.Description,
		ID:          config.SiteURL,
		Link:        config.SiteURL,
		Language:    config.Language,
		Image:       config.Image,
		Favicon:     config.Favicon,
		Copyright:   strings.ReplaceAll(config.Copyright, "{year}", strconv.Itoa(a.now().Year())),
		Generator:   a.generator,
		FeedLinks:   feedLinks,
		Updated:     updated,
		Entries:     sorted,
	}
}
