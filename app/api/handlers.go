package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/notes-feed/app/feed"
)

const defaultBuildLimit = 20

var contentTypes = map[feed.Format]string{
	feed.FormatRSS2: "application/rss+xml; charset=utf-8",
	feed.FormatAtom: "application/atom+xml; charset=utf-8",
	feed.FormatJSON: "application/feed+json; charset=utf-8",
}

// NewHandler serves the files written by writer. builds may be nil when the
// build ledger is disabled.
func NewHandler(writer *feed.Writer, builds BuildLister, version string) *Handler {
	return &Handler{
		writer:  writer,
		builds:  builds,
		version: version,
	}
}

func (h *Handler) GetRSS(c *gin.Context) {
	h.serveFeed(c, feed.FormatRSS2)
}

func (h *Handler) GetAtom(c *gin.Context) {
	h.serveFeed(c, feed.FormatAtom)
}

func (h *Handler) GetJSON(c *gin.Context) {
	h.serveFeed(c, feed.FormatJSON)
}

func (h *Handler) serveFeed(c *gin.Context, format feed.Format) {
	path, err := h.writer.Path(format)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Feed not generated yet", "format", format, "path", path)
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Failed to read feed", "format", format, "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Format", string(format))
	c.Data(http.StatusOK, contentTypes[format], data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	formats := make(map[string]bool, len(feed.Formats))
	for _, format := range feed.Formats {
		path, err := h.writer.Path(format)
		if err != nil {
			continue
		}
		_, statErr := os.Stat(path)
		formats[string(format)] = statErr == nil
	}
	health["feeds"] = formats

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListBuilds(c *gin.Context) {
	limit := defaultBuildLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	builds, err := h.builds.ListBuilds(c.Request.Context(), limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_builds", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]map[string]interface{}, 0, len(builds))
	for _, build := range builds {
		item := map[string]interface{}{
			"id":          build.ID,
			"started_at":  build.StartedAt.Format(time.RFC3339),
			"finished_at": build.FinishedAt.Format(time.RFC3339),
			"entries":     build.EntryCount,
			"formats":     build.Formats,
			"status":      build.Status,
		}
		if build.FeedUpdatedAt != nil {
			item["feed_updated_at"] = build.FeedUpdatedAt.Format(time.RFC3339)
		}
		if build.Error != "" {
			item["error"] = build.Error
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, gin.H{"builds": response})
}

func (h *Handler) APIGetBuildEntries(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid build id"})
		return
	}

	entries, err := h.builds.GetBuildEntries(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "get_build_entries", "build_id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		response = append(response, map[string]interface{}{
			"position":     entry.Position,
			"title":        entry.Title,
			"link":         entry.Link,
			"published_at": entry.PublishedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"build_id": id, "entries": response})
}
