package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger sends GORM statements and messages to zap. Unless full SQL is
// enabled, statements are cut before their first value-bearing clause so
// tax ids and other bound values stay out of the logs.
type GormLogger struct {
	log      *zap.Logger
	level    gormlogger.LogLevel
	slow     time.Duration
	verbatim bool
}

type GormOption func(*GormLogger)

// WithSlowThreshold sets when a statement counts as slow; zero turns slow logging off
func WithSlowThreshold(d time.Duration) GormOption {
	return func(l *GormLogger) { l.slow = d }
}

func WithFullSQL(on bool) GormOption {
	return func(l *GormLogger) { l.verbatim = on }
}

func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{log: base.Named("gorm"), level: level, slow: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, floor gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < floor {
		return
	}
	For(ctx, l.log).Log(lvl, fmt.Sprintf(msg, data...))
}

// Trace logs failed statements at error, slow ones at warn and the rest at debug
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	took := time.Since(begin)

	var (
		msg   string
		lvl   zapcore.Level
		extra zap.Field
	)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		msg, lvl, extra = "sql failed", zapcore.ErrorLevel, zap.Error(err)
	case err == nil && l.slow > 0 && took > l.slow && l.level >= gormlogger.Warn:
		msg, lvl, extra = "slow sql", zapcore.WarnLevel, zap.Duration("threshold", l.slow)
	case err == nil && l.level >= gormlogger.Info:
		msg, lvl, extra = "sql", zapcore.DebugLevel, zap.Skip()
	default:
		return
	}

	stmt, rows := fc()
	if !l.verbatim {
		stmt = redactSQL(stmt)
	}
	For(ctx, l.log).Log(lvl, msg,
		zap.String("sql", stmt),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", took),
		extra,
	)
}

func redactSQL(stmt string) string {
	upper := strings.ToUpper(stmt)
	end := len(stmt)
	for _, clause := range [...]string{" WHERE ", " VALUES ", " SET "} {
		if i := strings.Index(upper, clause); i >= 0 {
			end = min(end, i)
		}
	}
	return strings.TrimSpace(stmt[:end])
}

// MapGormLogLevel picks the GORM level for an application log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
