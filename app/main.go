package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-fetch/app/api"
	"github.com/lysyi3m/rss-fetch/app/cfg"
	"github.com/lysyi3m/rss-fetch/app/config"
	"github.com/lysyi3m/rss-fetch/app/database"
	"github.com/lysyi3m/rss-fetch/app/download"
	"github.com/lysyi3m/rss-fetch/app/feed"
	"github.com/lysyi3m/rss-fetch/app/logging"
	"github.com/lysyi3m/rss-fetch/app/tasks"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	appCfg, err := cfg.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	bootstrapLevel := slog.LevelInfo
	if appCfg.Debug {
		bootstrapLevel = slog.LevelDebug
	}
	logger, _, err := logging.New(logging.Options{Level: bootstrapLevel, Format: appCfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	slog.Info("Starting rss-fetch", "version", appCfg.Version)

	document, err := config.NewLoader(logger).Load(appCfg.ConfigPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", appCfg.ConfigPath, "error", err)
		return 1
	}

	level, err := logging.ParseLevel(document.LogLevel)
	if err != nil {
		slog.Warn("Unknown log level, using info", "log_level", document.LogLevel)
	}
	if appCfg.Debug {
		level = min(level, slog.LevelDebug)
	}

	logger, logCloser, err := logging.New(logging.Options{Level: level, Format: appCfg.LogFormat, Dir: document.LogDir})
	if err != nil {
		slog.Error("Failed to initialize logging", "log_dir", document.LogDir, "error", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("Configuration loaded",
		"path", appCfg.ConfigPath,
		"feeds", len(document.Feeds),
		"download_dir", document.DownloadDir,
		"refresh_interval", document.RefreshInterval)

	store, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open fetched items database", "path", appCfg.DBPath, "error", err)
		return 1
	}
	defer store.Close()
	slog.Debug("Opened fetched items database", "path", appCfg.DBPath)

	feedClient := feed.NewHTTPClient(appCfg.ConnectTimeout, appCfg.FeedTimeout)
	downloadClient := feed.NewHTTPClient(appCfg.ConnectTimeout, appCfg.DownloadTimeout)

	orchestrator := tasks.NewOrchestrator(document, tasks.Components{
		Fetcher:     feed.NewFetcher(feedClient, appCfg.UserAgent),
		Parser:      feed.NewParser(),
		Filterer:    feed.NewFilterer(),
		Downloader:  download.NewDownloader(downloadClient, appCfg.UserAgent, logger),
		Ledger:      store,
		Logger:      logger,
		DownloadDir: document.DownloadDir,
		FeedTimeout: appCfg.FeedTimeout,
	}, appCfg.WorkerCount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.Once {
		report := orchestrator.RunCycle(ctx)
		slog.Info("Single cycle finished", "downloaded", report.Downloaded, "feed_errors", report.FeedErrors)
		return 0
	}

	scheduler := tasks.NewScheduler(orchestrator, document.RefreshInterval, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(gCtx)
	})

	if appCfg.Port != "" {
		baseURL := strings.TrimSuffix(cmp.Or(appCfg.BaseUrl, "http://localhost:"+appCfg.Port), "/")
		generator := feed.NewGenerator(baseURL+"/feeds/history", appCfg.Version)
		handler := api.NewHandler(store, orchestrator, scheduler, generator, appCfg.Version)

		httpServer := &http.Server{
			Addr:         ":" + appCfg.Port,
			Handler:      api.NewServer(handler, appCfg.APIAccessKey),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: appCfg.FeedTimeout + appCfg.DownloadTimeout + 30*time.Second,
			IdleTimeout:  120 * time.Second,
		}

		g.Go(func() error {
			slog.Info("Starting HTTP server", "port", appCfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("HTTP server shutdown error: %w", err)
			}
			slog.Info("HTTP server stopped")
			return nil
		})
	}

	slog.Info("rss-fetch started", "workers", appCfg.WorkerCount)

	if err := g.Wait(); err != nil {
		slog.Error("Shutting down after error", "error", err)
		return 1
	}

	slog.Info("rss-fetch shutdown complete")
	return 0
}
