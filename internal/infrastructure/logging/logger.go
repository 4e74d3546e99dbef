package logging

import (
	"errors"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with convenience methods.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string // defaults to stdout
	Name        string
}

// New creates a logger. Development mode writes colored console lines with
// stack traces on warnings; production writes JSON.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig = encoderConfig(cfg.Development)
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig = encoderConfig(true)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = outputs
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.Sampling = nil

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// FromConfig builds the logger described by the LOG_* settings. A bad level
// string falls back to info.
func FromConfig(level string, development bool) *Logger {
	if level == "" {
		level = "info"
		if development {
			level = "debug"
		}
	}
	logger, err := New(Config{Level: level, Development: development})
	if err == nil {
		return logger
	}
	if logger, err = New(Config{Level: "info", Development: development}); err == nil {
		logger.Warn("Invalid log level, using info", zap.String("level", level))
		return logger
	}
	return NewNop()
}

// Sync flushes buffered entries. Syncing a terminal or pipe fails with
// EINVAL or ENOTTY on some platforms; those errors are dropped.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// Session tags entries with a prompt session id.
func Session(id uint64) zap.Field {
	return zap.Uint64("session", id)
}

// Conn tags entries with a host connection id.
func Conn(id string) zap.Field {
	return zap.String("conn", id)
}

// Prompt tags entries with a catalog prompt name.
func Prompt(name string) zap.Field {
	return zap.String("prompt", name)
}

// ForSession returns a child of logger tagged with the session id.
func ForSession(logger *zap.Logger, id uint64) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(Session(id))
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		return cfg
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	return cfg
}
