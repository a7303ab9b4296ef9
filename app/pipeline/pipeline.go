// Package pipeline runs one feed build: load documents, normalize them into
// entries, assemble the feed and write every format.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lysyi3m/notes-feed/app/database"
	"github.com/lysyi3m/notes-feed/app/feed"
)

// DocumentSource supplies the ordered corpus for a run.
type DocumentSource interface {
	Run() ([]feed.RawDocument, error)
}

type Result struct {
	Skipped    bool // Empty corpus, nothing was written
	EntryCount int
	NewEntries int // Entries whose link was absent from the previous recorded build
	Updated    time.Time
	Written    []feed.Format
	BuildID    int64
}

type Pipeline struct {
	source     DocumentSource
	normalizer *feed.Normalizer
	assembler  *feed.Assembler
	writer     *feed.Writer
	parser     *feed.Parser
	config     *feed.Config
	builds     database.BuildRepository
	now        func() time.Time
	verify     bool
}

type Option func(*Pipeline)

// WithBuildRepository records every run in the build ledger.
func WithBuildRepository(builds database.BuildRepository) Option {
	return func(p *Pipeline) { p.builds = builds }
}

// WithVerification parses each written file back and checks its entries.
func WithVerification(parser *feed.Parser) Option {
	return func(p *Pipeline) {
		p.parser = parser
		p.verify = parser != nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(source DocumentSource, normalizer *feed.Normalizer, assembler *feed.Assembler,
	writer *feed.Writer, config *feed.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		normalizer: normalizer,
		assembler:  assembler,
		writer:     writer,
		config:     config,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	startedAt := p.now()

	docs, err := p.source.Run()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load documents: %w", err)
	}

	if len(docs) == 0 {
		slog.Info("No documents found, skipping feed generation")
		return Result{Skipped: true}, nil
	}

	entries, err := p.normalizer.RunAll(docs)
	if err != nil {
		return Result{}, fmt.Errorf("failed to normalize documents: %w", err)
	}

	envelope := p.assembler.Run(entries, p.config)

	result := Result{
		EntryCount: len(envelope.Entries),
		Updated:    envelope.Updated,
	}

	written, writeErr := p.writer.Run(envelope)
	result.Written = written

	if writeErr == nil && p.verify {
		writeErr = p.verifyOutput(envelope, written)
	}

	if p.builds != nil {
		if err := p.record(ctx, startedAt, envelope, &result, writeErr); err != nil {
			slog.Warn("Failed to record build", "error", err)
		}
	}

	if writeErr != nil {
		return result, writeErr
	}

	slog.Info("Feeds generated",
		"entries", result.EntryCount,
		"new_entries", result.NewEntries,
		"updated", result.Updated.Format(time.RFC3339),
		"formats", len(result.Written),
		"duration", p.now().Sub(startedAt))

	return result, nil
}

func (p *Pipeline) verifyOutput(envelope feed.Envelope, written []feed.Format) error {
	for _, format := range written {
		path, err := p.writer.Path(format)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s for verification: %w", path, err)
		}

		if err := p.parser.Verify(envelope, data); err != nil {
			return fmt.Errorf("verification of %s failed: %w", path, err)
		}

		slog.Debug("Feed verified", "format", format, "path", path)
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, startedAt time.Time, envelope feed.Envelope,
	result *Result, runErr error) error {
	previous, err := p.builds.GetLatestBuild(ctx)
	if err != nil {
		return err
	}

	result.NewEntries = len(envelope.Entries)
	if previous != nil {
		known, err := p.builds.GetKnownLinks(ctx, previous.ID)
		if err != nil {
			return err
		}
		result.NewEntries = 0
		for _, entry := range envelope.Entries {
			if !known[entry.Link] {
				result.NewEntries++
			}
		}
	}

	updated := envelope.Updated
	build := database.Build{
		StartedAt:     startedAt,
		FinishedAt:    p.now(),
		EntryCount:    len(envelope.Entries),
		FeedUpdatedAt: &updated,
		Status:        buildStatus(result.Written, runErr),
	}
	for _, format := range result.Written {
		build.Formats = append(build.Formats, string(format))
	}
	if runErr != nil {
		build.Error = runErr.Error()
	}

	buildEntries := make([]database.BuildEntry, 0, len(envelope.Entries))
	for i, entry := range envelope.Entries {
		buildEntries = append(buildEntries, database.BuildEntry{
			Position:    i,
			Title:       entry.Title,
			Link:        entry.Link,
			PublishedAt: entry.Date,
		})
	}

	id, err := p.builds.RecordBuild(ctx, build, buildEntries)
	if err != nil {
		return err
	}
	result.BuildID = id
	return nil
}

func buildStatus(written []feed.Format, err error) database.BuildStatus {
	if err == nil {
		return database.BuildStatusSuccess
	}
	var writeErr *feed.WriteError
	if errors.As(err, &writeErr) && len(written) > 0 {
		return database.BuildStatusPartial
	}
	return database.BuildStatusFailed
}
