package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/terascope/go-disaster-intel/internal/aggregator"
	"github.com/terascope/go-disaster-intel/internal/api"
	"github.com/terascope/go-disaster-intel/internal/config"
	"github.com/terascope/go-disaster-intel/internal/feeds"
	"github.com/terascope/go-disaster-intel/internal/logging"
	"github.com/terascope/go-disaster-intel/internal/models"
	"github.com/terascope/go-disaster-intel/internal/refresh"
	"github.com/terascope/go-disaster-intel/internal/routeplan"
	"github.com/terascope/go-disaster-intel/internal/shelters"
	"github.com/terascope/go-disaster-intel/internal/snapshot"
	"github.com/terascope/go-disaster-intel/internal/zones"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	agg, locator := buildAggregator(cfg)
	store := snapshot.NewStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refresher *refresh.Refresher
	if cfg.Refresh.Enabled {
		refresher = refresh.New(agg, store,
			models.Coordinate{Lat: cfg.Refresh.Lat, Lon: cfg.Refresh.Lon},
			cfg.Refresh.Interval,
			aggregator.Options{})
		refresher.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(agg, locator, store, cfg.Shelters.RadiusMeters)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if refresher != nil {
		refresher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}

func buildAggregator(cfg *config.Config) (*aggregator.Aggregator, *shelters.Locator) {
	table := zones.DefaultTable()

	var seismic aggregator.SeismicFeed
	if cfg.Feeds.USGSEnabled {
		seismic = feeds.NewUSGSClient(cfg.Feeds.USGSURL, cfg.Feeds.Timeout,
			cfg.Feeds.SevereMagnitude, cfg.Feeds.ExtremeMagnitude)
	}
	var multi aggregator.HazardFeed
	if cfg.Feeds.EONETEnabled {
		multi = feeds.NewEONETClient(cfg.Feeds.EONETURL, cfg.Feeds.Timeout)
	}
	var alerts aggregator.AlertFeed
	if cfg.Feeds.NWSEnabled {
		alerts = feeds.NewNWSClient(cfg.Feeds.NWSURL, cfg.Feeds.NWSUserAgent, cfg.Feeds.Timeout)
	}

	planner := routeplan.NewPlanner(cfg.Routing.OSRMURL, cfg.Routing.Timeout, table)
	locator := shelters.NewLocator(cfg.Shelters.OverpassURL, cfg.Shelters.Timeout)

	agg := aggregator.New(seismic, multi, alerts, planner, locator, table, cfg.Feeds.SearchRadiusKm)
	return agg, locator
}
