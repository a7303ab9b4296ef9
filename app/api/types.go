package api

import (
	"context"

	"github.com/lysyi3m/notes-feed/app/database"
	"github.com/lysyi3m/notes-feed/app/feed"
)

// BuildLister is the read side of the build ledger.
type BuildLister interface {
	ListBuilds(ctx context.Context, limit int) ([]database.Build, error)
	GetBuildEntries(ctx context.Context, buildID int64) ([]database.BuildEntry, error)
}

var _ BuildLister = (database.BuildRepository)(nil)

type Handler struct {
	writer  *feed.Writer
	builds  BuildLister
	version string
}
