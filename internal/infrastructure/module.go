// Package infrastructure provides the logger and trace store Fx modules.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/thesyncim/lc3/internal/config"
	"github.com/thesyncim/lc3/internal/tracestore"
)

// LoggerModule provides logging infrastructure.
var LoggerModule = fx.Module("logger",
	fx.Provide(NewZapLogger),
)

// TraceModule provides the trace store, nil when no database is configured.
var TraceModule = fx.Module("tracestore",
	fx.Provide(NewTraceStore),
)

// NewZapLoggerParams holds dependencies for NewZapLogger.
type NewZapLoggerParams struct {
	fx.In
	Cfg *config.Config
	LC  fx.Lifecycle
}

// NewZapLogger creates a logger writing to stderr at the configured level.
func NewZapLogger(params NewZapLoggerParams) (*zap.Logger, error) {
	var zapConfig zap.Config
	switch params.Cfg.LogLevel {
	case "debug":
		zapConfig = zap.NewDevelopmentConfig()
	case "warn":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Sampling = nil

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	params.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := logger.Sync()
			// Terminals reject fsync.
			if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) {
				return nil
			}
			return err
		},
	})

	return logger, nil
}

// NewFxLogger routes Fx's own events to logger at debug level.
func NewFxLogger(logger *zap.Logger) fxevent.Logger {
	l := &fxevent.ZapLogger{Logger: logger.Named("fx")}
	l.UseLogLevel(zapcore.DebugLevel)
	return l
}

// NewTraceStoreParams holds dependencies for NewTraceStore.
type NewTraceStoreParams struct {
	fx.In
	Cfg    *config.Config
	Logger *zap.Logger
	LC     fx.Lifecycle
}

// NewTraceStore opens the configured trace database and closes it when the
// application stops.
func NewTraceStore(params NewTraceStoreParams) (*tracestore.Store, error) {
	if params.Cfg.Trace.DB == "" {
		return nil, nil
	}
	store, err := tracestore.Open(tracestore.Config{
		Path:      params.Cfg.Trace.DB,
		BatchSize: params.Cfg.Trace.BatchSize,
	}, params.Logger.Named("tracestore"))
	if err != nil {
		return nil, err
	}

	params.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}
