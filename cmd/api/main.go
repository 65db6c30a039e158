package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"mediaapi/docs"
	"mediaapi/internal/config"
	"mediaapi/internal/database"
	"mediaapi/internal/database/migration"
	handlers "mediaapi/internal/http/handler"
	"mediaapi/internal/http/middleware"
	"mediaapi/internal/logger"
	"mediaapi/internal/metrics"
	"mediaapi/internal/otel"
	"mediaapi/internal/repository"
	mongorepo "mediaapi/internal/repository/mongo"
	"mediaapi/internal/repository/postgres"
	"mediaapi/internal/service"
	"mediaapi/internal/storage"
)

const (
	serviceName     = "mediaapi"
	shutdownTimeout = 10 * time.Second
)

// @title Media API
// @version 1.0
// @description Signed download links for S3-compatible object storage and a reels/stories catalog.
// @BasePath /
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, log, serviceName)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	linkMetrics, err := metrics.NewLinkMetrics(reg)
	if err != nil {
		log.Fatal("failed to register link metrics", zap.Error(err))
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg, "/healthz")
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	// A missing storage setting keeps the catalog up; /links answers 500 until fixed.
	var linkSvc service.LinkService
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Error("object storage unavailable, link issuing disabled", zap.Error(err))
		linkSvc = service.NewUnavailableLinkService(err)
	} else {
		log.Info("object storage configured",
			zap.String("driver", cfg.Storage.Driver),
			zap.String("bucket", store.Bucket()),
		)
		linkSvc = service.NewLinkService(store, linkMetrics)
	}

	catalogRepo, closeCatalog, err := newCatalogRepository(cfg, log)
	if err != nil {
		log.Fatal("failed to configure catalog store", zap.Error(err))
	}
	catalogSvc := service.NewCatalogService(catalogRepo)

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: handlers.ErrorHandler(log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(middleware.RequestID())
	app.Use(middleware.CORS(cfg.CORSAllowOrigin))
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Dependencies{
		Links:   linkSvc,
		Catalog: catalogSvc,
		Health:  catalogRepo,
		Log:     log,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		// SwaggerInfo is global, so detach the values from the request buffer.
		docs.SwaggerInfo.Host = utils.CopyString(c.Get("Host"))
		docs.SwaggerInfo.Schemes = []string{utils.CopyString(scheme)}

		return swagger.HandlerDefault(c)
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info("starting server", zap.String("addr", addr), zap.String("catalog_driver", cfg.CatalogDriver))
		if err := app.Listen(addr); err != nil {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(timeoutCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := closeCatalog(timeoutCtx); err != nil {
		log.Error("catalog store close", zap.Error(err))
	}
	if err := shutdownTracing(timeoutCtx); err != nil {
		log.Error("tracing shutdown", zap.Error(err))
	}
	log.Info("shutdown completed")
}

// newCatalogRepository builds the configured catalog backend. The connection
// is established on first use so the process starts even when the database
// is briefly unreachable.
func newCatalogRepository(cfg *config.AppConfig, log *zap.Logger) (repository.CatalogRepository, func(context.Context) error, error) {
	switch cfg.CatalogDriver {
	case config.CatalogDriverMongo:
		client := database.NewLazy(func(ctx context.Context) (*mongo.Client, error) {
			c, err := database.NewMongo(ctx, cfg.Mongo)
			if err != nil {
				log.Warn("mongo connect failed", zap.Error(err))
				return nil, err
			}
			log.Info("mongo connected", zap.String("database", cfg.Mongo.Database))
			return c, nil
		})
		repo := mongorepo.NewCatalogMongo(func(ctx context.Context) (*mongo.Database, error) {
			c, err := client.Get(ctx)
			if err != nil {
				return nil, err
			}
			return c.Database(cfg.Mongo.Database), nil
		})
		closeFn := func(ctx context.Context) error {
			return client.Close(func(c *mongo.Client) error { return c.Disconnect(ctx) })
		}
		return repo, closeFn, nil

	case config.CatalogDriverPostgres:
		db := database.NewLazy(func(ctx context.Context) (*sql.DB, error) {
			conn, err := database.NewPostgres(ctx, cfg.Database)
			if err != nil {
				log.Warn("postgres connect failed", zap.Error(err))
				return nil, err
			}
			if err := migration.EnsureMigrated(ctx, conn, log); err != nil {
				_ = conn.Close()
				return nil, err
			}
			log.Info("postgres connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
			return conn, nil
		})
		repo := postgres.NewCatalogPostgres(db.Get)
		closeFn := func(context.Context) error {
			return db.Close(func(conn *sql.DB) error { return conn.Close() })
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported catalog driver %q", cfg.CatalogDriver)
	}
}
