package database

import (
	"time"
)

type BuildStatus string

const (
	BuildStatusSuccess BuildStatus = "success"
	BuildStatusPartial BuildStatus = "partial" // Some formats failed to write
	BuildStatusFailed  BuildStatus = "failed"
)

type Build struct {
	ID            int64
	StartedAt     time.Time
	FinishedAt    time.Time
	EntryCount    int
	FeedUpdatedAt *time.Time
	Formats       []string // Formats written successfully
	Status        BuildStatus
	Error         string
}

type BuildEntry struct {
	Position    int
	Title       string
	Link        string
	PublishedAt time.Time
}
