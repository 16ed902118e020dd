package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/power-demand-snapshot/internal/api/http"
	"github.com/i474232898/power-demand-snapshot/internal/config"
	"github.com/i474232898/power-demand-snapshot/internal/logger"
	"github.com/i474232898/power-demand-snapshot/internal/metrics"
	"github.com/i474232898/power-demand-snapshot/internal/power"
	"github.com/i474232898/power-demand-snapshot/internal/power/providers"
	"github.com/i474232898/power-demand-snapshot/internal/scheduler"
	"github.com/i474232898/power-demand-snapshot/internal/store"
)

func main() {
	daemon := flag.Bool("daemon", false, "run periodically every FETCH_INTERVAL and serve the read API")
	dryRun := flag.Bool("dry-run", false, "keep the snapshot in memory and print latest.json to stdout")
	flag.Parse()

	if err := run(*daemon, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(daemon, dryRun bool) error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dryRun {
		cfg.StorageBackend = config.BackendMemory
	}

	log := logger.New(cfg.LogLevel, os.Stderr)
	if cfg.EnvFileErr != nil {
		log.Info().Err(cfg.EnvFileErr).Msg("no .env file loaded; using environment only")
	}

	if cfg.ProxyURL != "" {
		log.Info().Msg("proxy url found; fetching through proxy")
	} else {
		log.Info().Msg("no proxy url found; fetching directly")
	}
	if cfg.InsecureSkipVerify {
		log.Warn().Msg("TLS certificate verification is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for every page fetch.
	httpClient, err := providers.NewHTTPClient(providers.ClientConfig{
		Timeout:            cfg.HTTPTimeout,
		ProxyURL:           cfg.ProxyURL,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	})
	if err != nil {
		return err
	}
	fetcher := providers.NewPageFetcher(httpClient, providers.PageFetcherOptions{
		UserAgent: cfg.UserAgent,
		Breaker:   providers.BreakerConfig{ConsecutiveFailures: uint32(cfg.BreakerFailures)},
	})

	sink, err := openSink(ctx, cfg)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()

	// Core service: harvester per region, snapshot writer at the end.
	service := power.NewService(
		cfg.Regions,
		power.NewHarvester(fetcher, cfg.SourceBaseURL, log),
		store.NewSnapshotWriter(sink),
		power.WithPacer(power.NewPacer(cfg.RequestSpacing)),
		power.WithClock(cfg.Now),
		power.WithObserver(collector),
		power.WithLogger(log),
	)

	if daemon {
		return serve(ctx, cfg, service, sink, collector, log)
	}

	if _, err := service.Run(ctx); err != nil {
		return err
	}

	if dryRun {
		return printLatest(ctx, sink)
	}
	return nil
}

func openSink(ctx context.Context, cfg *config.AppConfig) (store.Sink, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		return store.NewS3Store(ctx, store.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		})
	case config.BackendMemory:
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge, cfg.Location), nil
	default:
		return store.NewDirStore(cfg.OutputDir)
	}
}

func printLatest(ctx context.Context, sink store.Sink) error {
	data, err := sink.Get(ctx, store.LatestName)
	if err != nil {
		// Nothing was scraped; the run itself already said so.
		return nil
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

func serve(
	ctx context.Context,
	cfg *config.AppConfig,
	service *power.Service,
	sink store.Sink,
	collector *metrics.Collector,
	log zerolog.Logger,
) error {
	if cfg.FetchInterval > 0 {
		sched := scheduler.New(service, cfg.FetchInterval, log)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer sched.Stop()
	} else {
		log.Warn().Msg("FETCH_INTERVAL is not set; serving existing snapshots only")
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "power-demand-snapshot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "power-demand-snapshot",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, sink)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("fiber server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	return nil
}
