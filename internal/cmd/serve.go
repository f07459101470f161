package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shotlens/shotlens/internal/config"
	errwrap "github.com/shotlens/shotlens/internal/errors"
	"github.com/shotlens/shotlens/internal/metrics"
	"github.com/shotlens/shotlens/internal/observability"
	"github.com/shotlens/shotlens/internal/server"
	"github.com/shotlens/shotlens/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures the telemetry system and exporter are available.
var telemetryHealthChecker = handlers.HealthCheckerFunc(func(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
})

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Dribbble client over HTTP",
	Long: `Serve the typed client as a JSON facade under /v1, sharing one rate gate
across all requests.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config file re-read (restart to apply gate changes)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	observability.InitServerLogger(config.AppName, cfg.Logging.Level, cfg.Logging.Environment)
	logger := observability.ServerLogger

	checks := map[string]handlers.HealthChecker{}
	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.Wrap(commandContext(cmd), errwrap.CodeInternal, err, "metrics initialization failed")
		}
		checks["telemetry"] = telemetryHealthChecker
	} else {
		observability.DisableMetrics()
	}

	s, err := openSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	// The archive is optional for serving; it only contributes a health check.
	if db, err := openStore(commandContext(cmd), cfg.Store); err != nil {
		logger.Warn("Archive store unavailable, skipping its health check", zap.Error(err))
	} else {
		defer db.Close() // nolint:errcheck // best-effort cleanup
		checks["archive_store"] = handlers.StoreChecker(db.DB)
	}

	logger.Info("Initializing server",
		zap.String("service", config.AppName),
		zap.String("version", versionInfo.Version),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("rate_limit_backend", cfg.RateLimit.Backend),
		zap.Int("quota", cfg.RateLimit.Quota),
		zap.Duration("window", cfg.RateLimit.Window),
		zap.Int("metrics_port", observability.GetMetricsPort()))

	srv := server.New(server.Options{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Version:      versionInfo.Version,
		API:          s.client,
		Quota:        s,
		Checks:       checks,
	})

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Shutdown handlers run LIFO: the HTTP server stops before the logger flushes.
	signals.OnShutdown(func(ctx context.Context) error {
		logger.Info("Flushing logger...")
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeInternal, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		logger.Info("Received SIGHUP: re-reading config file")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				logger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			logger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "config reload failed")
		}
		if _, err := config.Load(viper.GetViper()); err != nil {
			return errwrap.Wrap(ctx, errwrap.CodeConfigInvalid, err, "reloaded config is invalid")
		}
		logger.Info("Configuration reloaded; gate and transport settings apply on restart",
			zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	metrics.SetServerStartTime(time.Now().Unix())

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go func() {
		if err := signals.Listen(commandContext(cmd)); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.Wrap(commandContext(cmd), errwrap.CodeInternal, err, "server error")
	}
	return nil
}
