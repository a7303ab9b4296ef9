package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/notes-feed/app/pipeline"
)

type Builder interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

type BuildFeedTask struct {
	Task
	builder Builder
}

func NewBuildFeedTask(builder Builder) *BuildFeedTask {
	return &BuildFeedTask{
		Task:    NewTask(TaskTypeBuildFeed),
		builder: builder,
	}
}

func (t *BuildFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.builder.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to build feeds: %w", err)
	}

	slog.Debug("Build task finished",
		"task_id", t.ID,
		"skipped", result.Skipped,
		"entries", result.EntryCount,
		"new_entries", result.NewEntries)

	return nil
}
