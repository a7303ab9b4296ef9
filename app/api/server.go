package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the preview HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// Feed readers and validators fetch cross-origin
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/rss.xml", handler.GetRSS)
	r.GET("/atom.xml", handler.GetAtom)
	r.GET("/rss.json", handler.GetJSON)

	r.GET("/health", handler.GetHealth)

	if handler.builds != nil {
		api := r.Group("/api")
		{
			api.GET("/builds", handler.APIListBuilds)
			api.GET("/builds/:id/entries", handler.APIGetBuildEntries)
		}
		slog.Debug("Build ledger endpoints enabled")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"rss":    "/rss.xml",
			"atom":   "/atom.xml",
			"json":   "/rss.json",
			"health": "/health",
		}
		if handler.builds != nil {
			endpoints["builds"] = "/api/builds"
			endpoints["entries"] = "/api/builds/<id>/entries"
		}

		c.JSON(200, gin.H{
			"service":   "notes-feed",
			"version":   handler.version,
			"endpoints": endpoints,
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
