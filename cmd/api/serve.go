package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/codereview/internal/application"
	appanalysis "github.com/bryanwahyu/codereview/internal/application/analysis"
	"github.com/bryanwahyu/codereview/internal/config"
	"github.com/bryanwahyu/codereview/internal/domain/ai"
	domain "github.com/bryanwahyu/codereview/internal/domain/analysis"
	"github.com/bryanwahyu/codereview/internal/infra/ai/openai"
	"github.com/bryanwahyu/codereview/internal/infra/ai/prompt"
	mysqlp "github.com/bryanwahyu/codereview/internal/infra/db/mysql"
	"github.com/bryanwahyu/codereview/internal/infra/db/postgres"
	"github.com/bryanwahyu/codereview/internal/infra/db/sqlite"
	"github.com/bryanwahyu/codereview/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/codereview/internal/infra/storage"
	"github.com/bryanwahyu/codereview/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// store is a Repository that can create its own table.
type store interface {
	domain.Repository
	EnsureSchema(ctx context.Context) error
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, repo, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("%s connect error: %w", cfg.Database.Driver, err)
	}
	defer db.Close()
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	client := openai.NewClient(cfg.AI)
	if err := client.Ready(); err != nil {
		// server tetap jalan, request analyze akan dapat configuration_error
		logger.Warn("model credential missing; analyze requests will fail until GROQ_API_KEY is set")
	}

	svc := &appanalysis.Service{
		Orchestrator: newOrchestrator(cfg, client, logger.Named("orchestrator")),
		Repo:   repo,
		Logger: logger.Named("service"),
	}

	if cfg.Minio.Enabled {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		svc.Archive = archive
	}

	handler := httpserver.NewRouter(httpserver.Options{
		Service:        svc,
		Logger:         logger.Named("http"),
		Metrics:        middleware.NewMetrics(),
		Limiter:        middleware.NewRateLimiter(ctx, cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond),
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
			"model":    middleware.ModelHealthChecker{Ready: client.Ready},
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newOrchestrator wires the prompt compiler and, when enabled, redaction.
func newOrchestrator(cfg *config.Config, client ai.Client, logger *zap.Logger) *appanalysis.Orchestrator {
	o := &appanalysis.Orchestrator{
		Client:  client,
		Clock:   application.SystemClock{},
		Logger:  logger,
		Compile: prompt.Compile,
	}
	if cfg.Privacy.RedactSecrets {
		o.Redact = prompt.Redact
	}
	return o
}

func openStore(ctx context.Context, cfg config.Database) (*sql.DB, store, error) {
	c := config.Config{Database: cfg}
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, c.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, mysqlp.NewAnalysisRepository(db), nil
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, c.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return db, postgres.NewAnalysisRepository(db), nil
	case config.DriverSQLite:
		db, err := sqlite.Connect(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlite.NewAnalysisRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
