package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/fern/config"
	customerrepo "github.com/Ramsey-B/fern/internal/repositories/customer"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/routes/customers"
	"github.com/Ramsey-B/fern/pkg/routes/duplicate"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

const version = "1.0.0"

type startupTask struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (t *startupTask) GetName() string                 { return t.name }
func (t *startupTask) DependsOn() []string             { return t.dependsOn }
func (t *startupTask) Start(ctx context.Context) error { return t.start(ctx) }
func (t *startupTask) Stop(ctx context.Context) error  { return t.stop(ctx) }

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	logger, flush, err := logging.New(cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Protocol: cfg.TracingProtocol,
			Insecure: true,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to create OTLP exporter; continuing without tracing")
		} else {
			tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
			otel.SetTracerProvider(tp)
			tracing.SetTracer(tp.Tracer(cfg.AppName))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	var (
		db        *sqlx.DB
		container ectocontainer.DIContainer
		checker   *health.Checker
	)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.HTTPErrorHandler = middleware.Error(logger)

	// Resolve the DI container per request. The container is built by the
	// database startup task before the server accepts traffic.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if container == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service is starting")
			}
			reqCtx, err := ectoinject.SetActiveContainer(c.Request().Context(), container.GetContainerID())
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(reqCtx))
			return next(c)
		}
	})

	duplicate.Register(e.Group("/api/v1/duplicates"))
	customers.Register(e.Group("/api/v1/customers"))

	s := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	s.AddDependency(&startupTask{
		name: "database",
		start: func(ctx context.Context) error {
			dsn := fmt.Sprintf(
				"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
			)

			var err error
			db, err = sqlx.Connect(cfg.DatabaseDriver, dsn)
			if err != nil {
				return err
			}
			db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
			db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
			db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

			driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
			if err != nil {
				return err
			}

			migrationService := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			if err := migrationService.Migrate(cfg.DatabaseName, driver); err != nil {
				return err
			}

			dbInstance := database.NewDatabaseInstance(db, logger)
			repo := customerrepo.NewRepository(dbInstance, logger)
			engine := matching.NewEngine(repo, logger, matching.EngineConfig{
				DefaultThreshold: cfg.DuplicateThreshold,
				MaxCandidates:    cfg.MatchMaxCandidates,
			})

			c, err := ectoinject.NewDIDefaultContainer()
			if err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[ectologger.Logger](c, logger); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[database.DB](c, dbInstance); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*customerrepo.Repository](c, repo); err != nil {
				return err
			}
			if err := ectoinject.RegisterInstance[*matching.Engine](c, engine); err != nil {
				return err
			}
			container = c

			checker = health.NewChecker(db, version)
			checker.RegisterRoutes(e)

			return nil
		},
		stop: func(ctx context.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
	})

	s.AddDependency(&startupTask{
		name:      "http-server",
		dependsOn: []string{"database"},
		start: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("HTTP server stopped unexpectedly")
					stop()
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})

	if err := s.Start(ctx); err != nil {
		logger.WithError(err).Error("Startup failed")
		panic(err)
	}

	checker.SetReady(true)
	logger.WithField("port", cfg.Port).Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
	}
}
