package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/notes-feed/app/api"
	"github.com/lysyi3m/notes-feed/app/cfg"
	"github.com/lysyi3m/notes-feed/app/content"
	"github.com/lysyi3m/notes-feed/app/database"
	"github.com/lysyi3m/notes-feed/app/feed"
	"github.com/lysyi3m/notes-feed/app/pipeline"
	"github.com/lysyi3m/notes-feed/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		slog.Error("Feed build failed", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	location, err := appCfg.Location()
	if err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", appCfg.Timezone, "error", err)
	}

	feedConfig, err := feed.LoadConfig(appCfg.FeedConfig)
	if err != nil {
		return fmt.Errorf("failed to load feed configuration: %w", err)
	}

	links, err := feed.NewLinkResolver(feedConfig.SiteURL, feedConfig.PathRules)
	if err != nil {
		return err
	}

	generator := feed.NewGenerator()
	writer := feed.NewWriter(appCfg.OutputDir, generator)

	opts := []pipeline.Option{}
	if appCfg.Verify {
		opts = append(opts, pipeline.WithVerification(feed.NewParser()))
	}

	var builds api.BuildLister
	if appCfg.DBPath != "" {
		db, err := database.Open(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open build ledger: %w", err)
		}
		defer db.Close()

		repo := database.NewBuildRepository(db)
		builds = repo
		opts = append(opts, pipeline.WithBuildRepository(repo))
	}

	p := pipeline.New(
		content.NewLoader(appCfg.ContentDir),
		feed.NewNormalizer(feed.NewDateResolver(time.Now, location), links),
		feed.NewAssembler(time.Now, "notes-feed/"+appCfg.Version),
		writer,
		feedConfig,
		opts...,
	)

	slog.Info("Building feeds", "content_dir", appCfg.ContentDir, "output_dir", appCfg.OutputDir)
	result, err := p.Run(context.Background())
	if err != nil {
		return err
	}
	slog.Debug("Build result", "skipped", result.Skipped, "written", result.Written, "build_id", result.BuildID)

	if !appCfg.Serve {
		return nil
	}

	return serve(appCfg, p, api.NewHandler(writer, builds, appCfg.Version))
}

func serve(appCfg *cfg.Cfg, p *pipeline.Pipeline, handler *api.Handler) error {
	if interval := appCfg.GetRebuildInterval(); interval > 0 {
		slog.Info("Starting rebuild scheduler", "interval", interval)
		scheduler := tasks.NewScheduler(p, interval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting preview server",
			"port", appCfg.Port,
			"rss", fmt.Sprintf("http://localhost:%s/rss.xml", appCfg.Port),
			"atom", fmt.Sprintf("http://localhost:%s/atom.xml", appCfg.Port),
			"json", fmt.Sprintf("http://localhost:%s/rss.json", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down preview server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return serveErr
}
