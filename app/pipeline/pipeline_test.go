package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/notes-feed/app/content"
	"github.com/lysyi3m/notes-feed/app/database"
	"github.com/lysyi3m/notes-feed/app/feed"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

type sliceSource []feed.RawDocument

func (s sliceSource) Run() ([]feed.RawDocument, error) { return s, nil }

type failingSource struct{ err error }

func (s failingSource) Run() ([]feed.RawDocument, error) { return nil, s.err }

func newTestPipeline(t *testing.T, source DocumentSource, outputDir string, opts ...Option) *Pipeline {
	t.Helper()

	config, err := feed.LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	links, err := feed.NewLinkResolver(config.SiteURL, config.PathRules)
	if err != nil {
		t.Fatalf("Failed to create link resolver: %v", err)
	}

	return New(
		source,
		feed.NewNormalizer(feed.NewDateResolver(testClock, time.UTC), links),
		feed.NewAssembler(testClock, "notes-feed/test"),
		feed.NewWriter(outputDir, feed.NewGenerator()),
		config,
		append([]Option{WithClock(testClock)}, opts...)...,
	)
}

func feedDocument(title, path string, metadata map[string]any) feed.RawDocument {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["title"] = title
	return feed.RawDocument{Path: path, FileName: filepath.Base(path), Metadata: metadata}
}

const febLink = "https://docs.getdbt.com/docs/dbt-versions/release-notes/feb-2024"

func TestPipelineReleaseNote(t *testing.T) {
	outputDir := t.TempDir()
	source := sliceSource{
		feedDocument("Feb Release", "docs/docs/dbt-versions/release-notes/15-February-2024.md", map[string]any{
			"id":   "feb-2024",
			"tags": []any{"misc", "15-Feb-2024"},
		}),
	}

	result, err := newTestPipeline(t, source, outputDir, WithVerification(feed.NewParser())).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Skipped || result.EntryCount != 1 {
		t.Errorf("Expected one entry, got %+v", result)
	}
	if len(result.Written) != 3 {
		t.Errorf("Expected three formats written, got %v", result.Written)
	}

	expectedDate := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if !result.Updated.Equal(expectedDate) {
		t.Errorf("Expected updated %v, got %v", expectedDate, result.Updated)
	}

	parser := feed.NewParser()
	for _, name := range []string{"rss.xml", "atom.xml", "rss.json"} {
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		if err != nil {
			t.Fatalf("Expected %s to exist, got: %v", name, err)
		}

		parsed, err := parser.Run(data)
		if err != nil {
			t.Fatalf("Expected %s to parse, got: %v", name, err)
		}
		if len(parsed.Entries) != 1 {
			t.Fatalf("%s: expected 1 entry, got %d", name, len(parsed.Entries))
		}

		entry := parsed.Entries[0]
		if entry.Title != "Feb Release" {
			t.Errorf("%s: expected title 'Feb Release', got '%s'", name, entry.Title)
		}
		if entry.Link != febLink || !strings.HasSuffix(entry.Link, "/release-notes/feb-2024") {
			t.Errorf("%s: unexpected link %s", name, entry.Link)
		}
		if !entry.Date.Equal(expectedDate) {
			t.Errorf("%s: expected date %v, got %v", name, expectedDate, entry.Date)
		}
	}

	var doc feed.JSONFeed
	data, _ := os.ReadFile(filepath.Join(outputDir, "rss.json"))
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Expected valid JSON feed, got: %v", err)
	}
	if doc.Items[0].URL != febLink || doc.Items[0].Title != "Feb Release" {
		t.Errorf("Unexpected JSON item: %+v", doc.Items[0])
	}
}

func TestPipelineEmptyCorpus(t *testing.T) {
	outputDir := t.TempDir()

	result, err := newTestPipeline(t, sliceSource{}, outputDir).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Skipped {
		t.Error("Expected result to be skipped")
	}

	files, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files written, got %d", len(files))
	}
}

func TestPipelineMissingTitleAborts(t *testing.T) {
	outputDir := t.TempDir()
	source := sliceSource{
		feedDocument("Good", "docs/a.md", nil),
		{Path: "docs/b.md", FileName: "b.md", Metadata: map[string]any{"id": "b"}},
	}

	_, err := newTestPipeline(t, source, outputDir).Run(context.Background())
	if !errors.Is(err, feed.ErrMissingRequiredField) {
		t.Fatalf("Expected ErrMissingRequiredField, got: %v", err)
	}

	files, _ := os.ReadDir(outputDir)
	if len(files) != 0 {
		t.Errorf("Expected no files written, got %d", len(files))
	}
}

func TestPipelineSourceError(t *testing.T) {
	sourceErr := errors.New("disk on fire")

	_, err := newTestPipeline(t, failingSource{err: sourceErr}, t.TempDir()).Run(context.Background())
	if !errors.Is(err, sourceErr) {
		t.Errorf("Expected source error to be wrapped, got: %v", err)
	}
}

func TestPipelineStableOrder(t *testing.T) {
	outputDir := t.TempDir()
	source := sliceSource{
		feedDocument("First", "docs/first.md", map[string]any{"date": "2024-02-15"}),
		feedDocument("Second", "docs/second.md", map[string]any{"date": "2024-02-15"}),
		feedDocument("Newest", "docs/newest.md", map[string]any{"date": "2024-02-20"}),
		feedDocument("Third", "docs/third.md", map[string]any{"date": "2024-02-15"}),
	}

	if _, err := newTestPipeline(t, source, outputDir).Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputDir, "rss.xml"))
	if err != nil {
		t.Fatalf("Failed to read rss.xml: %v", err)
	}
	parsed, err := feed.NewParser().Run(data)
	if err != nil {
		t.Fatalf("Failed to parse rss.xml: %v", err)
	}

	expected := []string{"Newest", "First", "Second", "Third"}
	if len(parsed.Entries) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(parsed.Entries))
	}
	for i, title := range expected {
		if parsed.Entries[i].Title != title {
			t.Errorf("Position %d: expected %s, got %s", i, title, parsed.Entries[i].Title)
		}
	}
}

func TestPipelineWriteFailure(t *testing.T) {
	outputDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(outputDir, "rss.xml"), 0755); err != nil {
		t.Fatalf("Failed to create blocking directory: %v", err)
	}

	repo := newTestRepository(t)
	source := sliceSource{feedDocument("Note", "docs/note.md", nil)}

	result, err := newTestPipeline(t, source, outputDir, WithBuildRepository(repo)).Run(context.Background())

	var writeErr *feed.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("Expected *feed.WriteError, got: %v", err)
	}
	if len(result.Written) != 2 {
		t.Errorf("Expected two formats written, got %v", result.Written)
	}

	latest, err := repo.GetLatestBuild(context.Background())
	if err != nil || latest == nil {
		t.Fatalf("Expected recorded build, got %v (%v)", latest, err)
	}
	if latest.Status != database.BuildStatusPartial {
		t.Errorf("Expected partial status, got %s", latest.Status)
	}
	if latest.Error == "" {
		t.Error("Expected error message to be recorded")
	}
}

func newTestRepository(t *testing.T) *database.SQLBuildRepository {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "builds.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return database.NewBuildRepository(db)
}

func TestPipelineCountsNewEntries(t *testing.T) {
	outputDir := t.TempDir()
	repo := newTestRepository(t)
	ctx := context.Background()

	first := sliceSource{
		feedDocument("Jan", "docs/jan.md", map[string]any{"date": "2024-01-10"}),
	}
	result, err := newTestPipeline(t, first, outputDir, WithBuildRepository(repo)).Run(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.NewEntries != 1 || result.BuildID == 0 {
		t.Errorf("Expected first build to record one new entry, got %+v", result)
	}

	second := append(sliceSource{
		feedDocument("Feb", "docs/feb.md", map[string]any{"date": "2024-02-10"}),
	}, first...)
	result, err = newTestPipeline(t, second, outputDir, WithBuildRepository(repo)).Run(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.EntryCount != 2 || result.NewEntries != 1 {
		t.Errorf("Expected 2 entries with 1 new, got %+v", result)
	}

	builds, err := repo.ListBuilds(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list builds: %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("Expected 2 builds, got %d", len(builds))
	}

	entries, err := repo.GetBuildEntries(ctx, result.BuildID)
	if err != nil {
		t.Fatalf("Failed to get build entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Title != "Feb" {
		t.Errorf("Expected entries in feed order, got %+v", entries)
	}
}

func TestPipelineWithContentLoader(t *testing.T) {
	t.Chdir(t.TempDir())

	noteDir := filepath.Join("docs", "docs", "dbt-versions", "release-notes", "71-Feb-2024")
	if err := os.MkdirAll(noteDir, 0755); err != nil {
		t.Fatalf("Failed to create content dir: %v", err)
	}
	note := "---\ntitle: \"New IDE\"\ntags: [Feb-2024, 15-Feb-2024]\n---\nThe IDE got faster.\n"
	if err := os.WriteFile(filepath.Join(noteDir, "dbt-cloud-ide.md"), []byte(note), 0644); err != nil {
		t.Fatalf("Failed to write note: %v", err)
	}
	if err := os.Mkdir("feeds", 0755); err != nil {
		t.Fatalf("Failed to create output dir: %v", err)
	}

	loader := content.NewLoader(filepath.Join("docs", "docs", "dbt-versions", "release-notes"))
	if _, err := newTestPipeline(t, loader, "feeds").Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(filepath.Join("feeds", "rss.json"))
	if err != nil {
		t.Fatalf("Expected rss.json, got: %v", err)
	}

	var doc feed.JSONFeed
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Expected valid JSON feed, got: %v", err)
	}

	want := "https://docs.getdbt.com/docs/dbt-versions/release-notes/Feb-2024/dbt-cloud-ide"
	if len(doc.Items) != 1 || doc.Items[0].URL != want {
		t.Errorf("Expected link %s, got %+v", want, doc.Items)
	}
	if doc.Items[0].DateModified != "2024-02-15T00:00:00Z" {
		t.Errorf("Expected date from tag, got %s", doc.Items[0].DateModified)
	}
}
