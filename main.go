package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"ttstats/internal/config"
	"ttstats/internal/database"
	"ttstats/internal/export"
	server "ttstats/internal/http"
	"ttstats/internal/league"
	"ttstats/internal/metrics"
	"ttstats/internal/notifier/slack"
	"ttstats/internal/processor"
	"ttstats/internal/pubsub"
	"ttstats/internal/schedule"
	"ttstats/internal/ttbl"
	"ttstats/internal/wtt"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	store := league.New(db)
	scheduleStore := schedule.NewStore(db)
	counters := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	ttblClient := ttbl.NewClient(cfg.TTBL.BaseURL)
	wttClient := wtt.NewClient(wtt.Config{
		BaseURL:     cfg.WTT.BaseURL,
		RankingsURL: cfg.WTT.RankingsURL,
		ListID:      cfg.WTT.ListID,
		PageLimit:   cfg.WTT.PageLimit,
		Delay:       time.Duration(cfg.WTT.DelayMS) * time.Millisecond,
	})
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	pubsubClient := pubsub.New(cfg.ProjectID)
	proc := processor.New(store, notifier, metricsSvc, pubsubClient, cfg.PubSub.TopicID)
	exporter := export.NewWriter(cfg.Export.Dir, cfg.Export.Keep)

	s := server.NewServer(
		store,
		scheduleStore,
		metricsSvc,
		counters,
		metricsHandler,
		cfg,
		ttblClient,
		wttClient,
		notifier,
		proc,
		exporter,
		pubsubClient,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
