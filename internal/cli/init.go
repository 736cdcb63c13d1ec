// Package cli provides the start-up steps shared by cmd/dompet and
// cmd/dompet-admin.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"dompet/internal/backend"
	"dompet/internal/config"
	"dompet/internal/log"
	"dompet/internal/metrics"
	"dompet/internal/services"
)

// SetupLogger builds the process logger from LOG_LEVEL and sets it as the
// slog default. Output goes to out (stdout when nil).
func SetupLogger(levelName string, out io.Writer) *log.Logger {
	level, err := config.ParseLogLevel(levelName)
	cfg := log.DefaultConfig()
	cfg.Level = level
	if out != nil {
		cfg.Output = out
	}
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Ledger bundles the service with the resources behind it.
type Ledger struct {
	Service *services.LedgerService
	backend *backend.BackendResult
}

// Close releases the backing store.
func (l *Ledger) Close() error {
	return l.backend.Close()
}

// InitLedger opens the configured backend and initializes it. m may be nil.
func InitLedger(ctx context.Context, cfg *config.Config, logger *log.Logger, m *metrics.Metrics) (*Ledger, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	svc := services.NewLedgerService(res.Store, cfg.Location(), logger, m)
	if err := svc.Init(ctx); err != nil {
		_ = res.Close()
		return nil, err
	}
	return &Ledger{Service: svc, backend: res}, nil
}

// Fatal logs err and exits with status 1.
func Fatal(logger *log.Logger, msg string, err error) {
	logger.Error(msg, log.FieldError, err)
	fmt.Fprintln(os.Stderr, msg+":", err)
	os.Exit(1)
}
