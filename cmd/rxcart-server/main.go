package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rxcart/rxcart/internal/config"
	"github.com/rxcart/rxcart/internal/domain/cart"
	"github.com/rxcart/rxcart/internal/domain/catalog"
	"github.com/rxcart/rxcart/internal/domain/license"
	"github.com/rxcart/rxcart/internal/domain/order"
	"github.com/rxcart/rxcart/internal/platform/cache"
	"github.com/rxcart/rxcart/internal/platform/db"
	"github.com/rxcart/rxcart/internal/platform/events"
	"github.com/rxcart/rxcart/internal/platform/keylock"
	"github.com/rxcart/rxcart/internal/platform/middleware"
	"github.com/rxcart/rxcart/internal/platform/notification"
	"github.com/rxcart/rxcart/internal/platform/websocket"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rxcart-server",
		Short: "Pharmacy marketplace API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Catalog cache: Redis when configured, in-process otherwise.
	var catalogCache cache.Cache
	if cfg.CacheEnabled() {
		catalogCache, err = cache.NewRedisCache(cfg.RedisURL, "rxcart")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Info().Msg("connected to redis")
	} else {
		catalogCache = cache.NewMemoryCache("rxcart")
	}

	// Order events: Kafka when brokers are configured.
	var producer events.Producer = events.NopProducer{}
	if cfg.EventsEnabled() {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		producer, err = events.NewKafkaProducer(brokers, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to kafka")
		}
		defer producer.Close()
		logger.Info().Strs("brokers", brokers).Msg("kafka producer started")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", "X-Request-ID", "X-Customer-ID"},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.RequestTimeout(30 * time.Second))

	apiV1 := e.Group("/api/v1")

	// Notifications
	templates := notification.NewTemplateEngine()
	notifyMgr := notification.NewNotificationManager(
		&notification.LogEmailSender{Logger: logger},
		&notification.LogSMSSender{Logger: logger},
		templates,
	)
	notifyHandler := notification.NewNotificationHandler(notifyMgr)
	notifyHandler.RegisterRoutes(apiV1)

	// WebSocket order updates
	hub := websocket.NewHub()
	wsHandler := websocket.NewWebSocketHandler(hub)
	wsHandler.RegisterRoutes(e.Group(""))

	// Per-customer serialization shared by cart mutations and checkout.
	locks := keylock.NewRegistry()

	// Catalog
	pharmacyRepo := catalog.NewPharmacyRepoPG(pool)
	medicineRepo := catalog.NewMedicineRepoPG(pool)
	catalogSvc := catalog.NewService(pharmacyRepo, medicineRepo, catalogCache, logger)
	catalog.NewHandler(catalogSvc).RegisterRoutes(apiV1)

	// Cart
	cartRepo := cart.NewRepoPG(pool)
	cartSvc := cart.NewService(cartRepo, catalogSvc, locks)
	cart.NewHandler(cartSvc).RegisterRoutes(apiV1)

	// Orders
	orderRepo := order.NewRepoPG(pool)
	orderSvc := order.NewService(orderRepo, cartSvc, locks, notifyMgr, producer, hub, logger)
	order.NewHandler(orderSvc).RegisterRoutes(apiV1)

	// License requests
	licenseRepo := license.NewRepoPG(pool)
	licenseSvc := license.NewService(licenseRepo, cartSvc, notifyMgr, logger)
	license.NewHandler(licenseSvc).RegisterRoutes(apiV1)

	e.GET("/health", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
