package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"quick-route/internal/adapters/cache"
	"quick-route/internal/api"
	"quick-route/internal/config"
	"quick-route/internal/platform/obs"
	"quick-route/internal/services"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
}

// main is the application composition root.
// It wires concrete adapters (ORS/OSRM/Nominatim, geocode stores) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	obs.SetupLogger(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	store, closeStore, err := openGeocodeStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("geocode_cache", cfg.GeocodeCache).Msg("cannot open geocode cache")
	}
	defer closeStore()

	geocoder, directions, err := newProviders(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create providers")
	}

	planner := services.NewPlanner(
		cache.NewCachedGeocoder(geocoder, store, cfg.GeocodeCacheTTL),
		directions,
		services.PlannerConfig{
			MatrixConcurrency: cfg.MatrixConcurrency,
			LegConcurrency:    cfg.LegConcurrency,
			EdgePrecision:     cfg.EdgePrecision,
			DefaultMode:       cfg.DefaultMode,
		},
	)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(planner, cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("directions", cfg.DirectionsProvider).
			Str("geocoder", cfg.Geocoder).
			Str("geocode_cache", cfg.GeocodeCache).
			Str("mode", cfg.DefaultMode.String()).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("HTTP server is stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
