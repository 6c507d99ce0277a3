package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the process logger. JSON output uses the production encoder
// with millisecond timestamps; console output is colored for local runs.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if cfg.Level == "" {
		level, err = zapcore.InfoLevel, nil
	}
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "json":
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "time"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeDuration = zapcore.MillisDurationEncoder
		enc = zapcore.NewJSONEncoder(ec)
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		return nil, fmt.Errorf("log format %q: want json or console", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(sink(cfg)), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// sink is stdout, stderr, or a size-rotated file at cfg.Output
func sink(cfg config.LogConfig) io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}
