// Command timetrack serves the operator time-tracking dashboard API and the
// unified-operations reconciler.
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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sedi-apps/timetrack/pkg/config"
	"github.com/sedi-apps/timetrack/pkg/connector"
	"github.com/sedi-apps/timetrack/pkg/directory"
	"github.com/sedi-apps/timetrack/pkg/history"
	"github.com/sedi-apps/timetrack/pkg/reconcile"
	"github.com/sedi-apps/timetrack/pkg/server"
	"github.com/sedi-apps/timetrack/pkg/server/handlers"
	"github.com/sedi-apps/timetrack/pkg/sessions"
	"github.com/sedi-apps/timetrack/pkg/source"
	"github.com/sedi-apps/timetrack/pkg/store"
)

func main() {
	// Load .env if present; real environment always wins
	_ = godotenv.Load()

	bootstrapLogger, _ := zap.NewProduction()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		bootstrapLogger.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Fatal error", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := handlers.Options{Logger: logger, Simulated: cfg.DisableSQL}

	var reconciler *reconcile.Reconciler

	if cfg.DisableSQL {
		logger.Info("SQL disabled, running in simulation mode")

		histStore, err := history.NewStore(cfg.DataDir, logger)
		if err != nil {
			return err
		}

		var events source.Events
		if cfg.FixturePath != "" {
			events, err = source.LoadFixtureEvents(cfg.FixturePath)
			if err != nil {
				return err
			}
		} else {
			events = source.NewFixtureEvents()
		}

		ledger := store.NewMemoryLedger()
		reconciler = reconcile.New(events, ledger, logger)

		opts.Directory = directory.NewFixtureDirectory()
		opts.Sessions = sessions.NewSimulatedService(histStore, logger)
		opts.Ledger = ledger
		opts.Exporter = reconciler
	} else {
		appConn, err := connector.NewSQLServerConnector(ctx, cfg.SQLServer, cfg.SQLServer.Database)
		if err != nil {
			return err
		}
		defer appConn.Close()

		erpConn, err := connector.NewSQLServerConnector(ctx, cfg.SQLServer, cfg.SQLServer.ERPDatabase)
		if err != nil {
			return err
		}
		defer erpConn.Close()

		if err := appConn.Validate(); err != nil {
			return err
		}

		ledger := store.NewSQLLedger(appConn, cfg.MergeTimeout, logger)
		events := source.NewSQLEvents(erpConn, cfg.QueryTimeout, logger)
		reconciler = reconcile.New(events, ledger, logger)

		sessionSvc := sessions.NewSQLService(appConn, cfg.QueryTimeout, logger)

		opts.Directory = directory.NewSQLDirectory(erpConn, cfg.QueryTimeout, logger)
		opts.Sessions = sessionSvc
		opts.Ledger = ledger
		opts.Exporter = reconciler
		opts.Ping = func(ctx context.Context) error {
			return connector.PingWithTimeout(ctx, appConn.DB(), 5*time.Second)
		}

		if cfg.AutoBootstrap {
			if err := ledger.Provision(ctx); err != nil {
				return err
			}
			if err := sessionSvc.Provision(ctx); err != nil {
				return err
			}
		}
	}

	if cfg.AutoExportOnStart {
		today := time.Now().Truncate(24 * time.Hour)
		if _, err := reconciler.Run(ctx, &today); err != nil {
			// Startup export is best-effort; the endpoint can rerun it
			logger.Warn("Startup export failed", zap.Error(err))
		}
	}

	srv := server.New(cfg.ListenAddr, handlers.New(opts), logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
