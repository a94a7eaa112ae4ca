package logger

import (
	"icarus-bknd/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process root logger; handlers and services take Component children of it.
type Logger struct {
	*zap.Logger
}

// New builds the root logger. Production emits JSON, anything else colored console output.
func New(cfg *config.Config) *Logger {
	var zapCfg zap.Config

	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := zapCfg.Build(zap.Fields(zap.String("env", cfg.Environment)))
	if err != nil {
		panic(err)
	}

	return &Logger{l.Named("icarus")}
}

// Nop returns a logger that discards everything, for tests and tools.
func Nop() *Logger {
	return &Logger{zap.NewNop()}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *zap.Logger {
	return l.Logger.With(zap.String("component", name))
}

// Sync flushes buffered entries before exit. Syncing a terminal stdout returns EINVAL, so the error is dropped.
func (l *Logger) Sync() {
	_ = l.Logger.Sync()
}
