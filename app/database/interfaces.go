package database

import (
	"context"
)

type BuildRepository interface {
	RecordBuild(ctx context.Context, build Build, entries []BuildEntry) (int64, error)
	GetLatestBuild(ctx context.Context) (*Build, error)
	ListBuilds(ctx context.Context, limit int) ([]Build, error)
	GetBuildEntries(ctx context.Context, buildID int64) ([]BuildEntry, error)
	GetKnownLinks(ctx context.Context, buildID int64) (map[string]bool, error)
}
