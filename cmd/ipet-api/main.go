package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kelmerpassos/ipet-api/config"
	"github.com/kelmerpassos/ipet-api/internal/handlers"
	"github.com/kelmerpassos/ipet-api/internal/repositories/association"
	"github.com/kelmerpassos/ipet-api/internal/repositories/customer"
	"github.com/kelmerpassos/ipet-api/internal/repositories/product"
	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/events"
	"github.com/kelmerpassos/ipet-api/pkg/fetcher"
	"github.com/kelmerpassos/ipet-api/pkg/ingest"
	"github.com/kelmerpassos/ipet-api/pkg/kafka"
	"github.com/kelmerpassos/ipet-api/pkg/middleware"
	"github.com/kelmerpassos/ipet-api/pkg/redis"
	"github.com/kelmerpassos/ipet-api/pkg/scheduler"
	"github.com/kelmerpassos/ipet-api/pkg/tracing"
)

var version = "dev"

func main() {
	// Missing .env is fine; real deployments use environment variables
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		log.Fatalf("failed to bind config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (ectologger.Logger, error) {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	shutdownTracing := tracing.Init(cfg.AppName)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	// Database
	sqlxDB, err := database.Connect(database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	// Migrations
	driver, err := postgres.WithInstance(sqlxDB.DB, &postgres.Config{})
	if err != nil {
		return err
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return err
	}

	db := database.NewDatabaseInstance(sqlxDB, logger)

	// Redis
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	blocklist := redis.NewBlocklist(redisClient)

	// Kafka producer
	var emitter *events.Emitter
	if cfg.KafkaProducerEnabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaAssociationTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: cfg.KafkaBatchTimeout,
			RequiredAcks: cfg.KafkaRequiredAcks,
		}, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	// Repositories
	customerRepo := customer.NewRepository(db, logger)
	productRepo := product.NewRepository(db, logger)
	associationRepo := association.NewRepository(db, logger)

	// Offline base sync
	var syncScheduler *scheduler.Scheduler
	if cfg.SyncEnabled {
		baseFetcher := fetcher.NewFetcher(fetcher.Config{
			Host:           cfg.SSHHost,
			Port:           cfg.SSHPort,
			User:           cfg.SSHUser,
			Password:       cfg.SSHPassword,
			ConnectTimeout: cfg.SSHConnectTimeout,
			RemotePath:     cfg.OfflineBaseFilePath,
			LocalDir:       cfg.LocalDataDir,
		}, logger)

		var syncEmitter ingest.EventEmitter
		if emitter != nil {
			syncEmitter = emitter
		}
		reconciler := ingest.NewReconciler(customerRepo, productRepo, associationRepo, syncEmitter, logger)

		syncScheduler = scheduler.NewScheduler(baseFetcher, reconciler, scheduler.Config{
			Interval:     cfg.SyncInterval,
			MisfireGrace: cfg.SyncMisfireGrace,
		}, logger)
		if err := syncScheduler.Start(ctx); err != nil {
			return err
		}
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	health := handlers.NewHealthChecker(sqlxDB, redisClient, version)
	health.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	if cfg.AuthEnabled {
		auth, err := middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID, blocklist)
		if err != nil {
			return err
		}
		api.Use(auth)
	}

	var associationEmitter handlers.AssociationEmitter
	if emitter != nil {
		associationEmitter = emitter
	}

	handlers.NewCustomerHandler(customerRepo).RegisterRoutes(api)
	handlers.NewProductHandler(productRepo).RegisterRoutes(api)
	handlers.NewAssociationHandler(associationRepo, customerRepo, productRepo, associationEmitter, logger).RegisterRoutes(api)
	handlers.NewAuthHandler(blocklist, logger).RegisterRoutes(api)

	health.SetReady(true)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + strconv.Itoa(cfg.Port)
		logger.Infof("Starting %s on %s", cfg.AppName, addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
