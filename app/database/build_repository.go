package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ BuildRepository = (*SQLBuildRepository)(nil)

type SQLBuildRepository struct {
	db *DB
}

func NewBuildRepository(db *DB) *SQLBuildRepository {
	return &SQLBuildRepository{db: db}
}

// RecordBuild stores a build and its ordered entries in one transaction.
func (r *SQLBuildRepository) RecordBuild(ctx context.Context, build Build, entries []BuildEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var feedUpdatedAt sql.NullInt64
	if build.FeedUpdatedAt != nil {
		feedUpdatedAt = sql.NullInt64{Int64: build.FeedUpdatedAt.UnixNano(), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO builds (started_at, finished_at, entry_count, feed_updated_at, formats, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, build.StartedAt.UnixNano(), build.FinishedAt.UnixNano(), build.EntryCount, feedUpdatedAt,
		strings.Join(build.Formats, ","), string(build.Status), build.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert build: %w", err)
	}

	buildID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get build id: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO build_entries (build_id, position, title, link, published_at)
			VALUES (?, ?, ?, ?, ?)
		`, buildID, entry.Position, entry.Title, entry.Link, entry.PublishedAt.UnixNano())
		if err != nil {
			return 0, fmt.Errorf("failed to insert build entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit build: %w", err)
	}

	return buildID, nil
}

// GetLatestBuild returns the most recent build, or nil when none exist.
func (r *SQLBuildRepository) GetLatestBuild(ctx context.Context) (*Build, error) {
	builds, err := r.ListBuilds(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, nil
	}
	return &builds[0], nil
}

// ListBuilds returns up to limit builds, newest first.
func (r *SQLBuildRepository) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, entry_count, feed_updated_at, formats, status, error
		FROM builds
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		var (
			build         Build
			startedAt     int64
			finishedAt    int64
			feedUpdatedAt sql.NullInt64
			formats       string
			status        string
		)

		if err := rows.Scan(&build.ID, &startedAt, &finishedAt, &build.EntryCount,
			&feedUpdatedAt, &formats, &status, &build.Error); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}

		build.StartedAt = time.Unix(0, startedAt)
		build.FinishedAt = time.Unix(0, finishedAt)
		if feedUpdatedAt.Valid {
			t := time.Unix(0, feedUpdatedAt.Int64)
			build.FeedUpdatedAt = &t
		}
		if formats != "" {
			build.Formats = strings.Split(formats, ",")
		}
		build.Status = BuildStatus(status)

		builds = append(builds, build)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate builds: %w", err)
	}

	return builds, nil
}

func (r *SQLBuildRepository) GetBuildEntries(ctx context.Context, buildID int64) ([]BuildEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT position, title, link, published_at
		FROM build_entries
		WHERE build_id = ?
		ORDER BY position
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query build entries: %w", err)
	}
	defer rows.Close()

	var entries []BuildEntry
	for rows.Next() {
		var entry BuildEntry
		var publishedAt int64
		if err := rows.Scan(&entry.Position, &entry.Title, &entry.Link, &publishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan build entry: %w", err)
		}
		entry.PublishedAt = time.Unix(0, publishedAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate build entries: %w", err)
	}

	return entries, nil
}

// GetKnownLinks returns the set of entry links published by a build.
func (r *SQLBuildRepository) GetKnownLinks(ctx context.Context, buildID int64) (map[string]bool, error) {
	entries, err := r.GetBuildEntries(ctx, buildID)
	if err != nil {
		return nil, err
	}

	links := make(map[string]bool, len(entries))
	for _, entry := range entries {
		links[entry.Link] = true
	}
	return links, nil
}
