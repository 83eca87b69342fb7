package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.etcd.io/bbolt"

	"github.com/kaiserbh/webiptv/config"
	"github.com/kaiserbh/webiptv/internal/adapter/driven"
	"github.com/kaiserbh/webiptv/internal/adapter/driver"
	"github.com/kaiserbh/webiptv/internal/application"
	"github.com/kaiserbh/webiptv/internal/playback"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting webiptv",
		"address", cfg.HTTP.Address,
		"port", cfg.HTTP.Port,
		"store_path", cfg.Store.Path,
		"log_level", cfg.LogLevel().String(),
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.Store.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	// Create driven adapters (repositories and external services)
	historyRepo, err := driven.NewHistoryBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create history repository: %v", err)
	}

	favoriteRepo, err := driven.NewFavoriteBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create favorite repository: %v", err)
	}

	playlistRepo, err := driven.NewPlaylistBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create playlist repository: %v", err)
	}

	prefRepo, err := driven.NewPreferenceBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create preference repository: %v", err)
	}

	fetcher := driven.NewHTTPFetcher(cfg.Fetch.Timeout)
	engines := &driven.LoopbackEngineFactory{Delay: 50 * time.Millisecond}
	sink := driven.NewLoopbackSink(50 * time.Millisecond)
	notifications := driver.NewNotificationHub()

	// Create application services
	playlistService := application.NewPlaylistService(fetcher, historyRepo, playlistRepo, prefRepo, logger)
	playbackService := application.NewPlaybackService(engines, sink, fetcher, notifications, logger, cfg.Timings())
	linkService := application.NewLinkService(playlistService, historyRepo, playlistRepo, logger)
	historyService := application.NewHistoryService(historyRepo, logger)
	favoriteService := application.NewFavoriteService(favoriteRepo, logger)
	probeService := application.NewProbeService(fetcher, logger, cfg.Probe.Timeout)
	healthService := application.NewHealthService(prefRepo)

	if err := playlistService.Restore(context.Background()); err != nil {
		logger.Warn("failed to restore persisted playlist", "error", err)
	}

	// Create HTTP handlers
	channelsHandler := driver.NewChannelsHTTPHandler(playlistService, linkService)
	playlistHandler := driver.NewPlaylistHTTPHandler(playlistService, playbackService)
	playHandler := driver.NewPlayHTTPHandler(playbackService, linkService)
	historyHandler := driver.NewHistoryHTTPHandler(historyService, playlistService, playbackService)
	favoritesHandler := driver.NewFavoritesHTTPHandler(favoriteService)
	analysisHandler := driver.NewAnalysisHTTPHandler(playlistService, probeService)
	healthHandler := driver.NewHealthHTTPHandler(healthService)

	// Register API routes
	apiMux := http.NewServeMux()
	apiMux.Handle("/channels", channelsHandler)
	apiMux.Handle("/playlist/", playlistHandler)
	apiMux.Handle("/play", playHandler)
	apiMux.Handle("/history", historyHandler)
	apiMux.Handle("/history/", historyHandler)
	apiMux.Handle("/favorites", favoritesHandler)
	apiMux.Handle("/favorites/", favoritesHandler)
	apiMux.Handle("/analysis", analysisHandler)
	apiMux.Handle("/notifications", notifications)

	// Root router: API under /api/, health and metrics at root
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", http.StripPrefix("/api", apiMux))
	rootMux.Handle("/healthz", healthHandler)
	rootMux.Handle("/metrics", promhttp.Handler())

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTP.Address + ":" + cfg.HTTP.Port,
		Handler:      rootMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, shutting down gracefully")

	if err := playbackService.Stop(); err != nil && err != playback.ErrNoActiveSession {
		logger.Warn("failed to stop playback session", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
