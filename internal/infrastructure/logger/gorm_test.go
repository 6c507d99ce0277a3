package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const insertSQL = `INSERT INTO "verification_cases" ("id","tax_id") VALUES ('a','DE123')`

func newObservedGorm(level gormlogger.LogLevel, opts ...GormOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFunc(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	l, _ := newObservedGorm(gormlogger.Info)
	quiet, ok := l.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Info, l.level)
}

func TestGormLogger_TraceRedactsValues(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Info)
	l.Trace(context.Background(), time.Now(), sqlFunc(insertSQL), nil)

	entries := recorded.FilterMessage("sql").All()
	require.Len(t, entries, 1)
	sql := entries[0].ContextMap()["sql"]
	assert.Equal(t, `INSERT INTO "verification_cases" ("id","tax_id")`, sql)
}

func TestGormLogger_TraceFullSQL(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Info, WithFullSQL(true))
	l.Trace(context.Background(), time.Now(), sqlFunc(insertSQL), nil)

	entries := recorded.FilterMessage("sql").All()
	require.Len(t, entries, 1)
	assert.Equal(t, insertSQL, entries[0].ContextMap()["sql"])
}

func TestGormLogger_TraceErrors(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Warn)
	ctx := WithRequestID(context.Background(), "req-3")

	l.Trace(ctx, time.Now(), sqlFunc("SELECT 1"), gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, recorded.Len())

	l.Trace(ctx, time.Now(), sqlFunc("SELECT 1"), errors.New("connection reset"))
	entries := recorded.FilterMessage("sql failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-3", entries[0].ContextMap()["request_id"])
}

func TestGormLogger_TraceSlowQuery(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFunc("SELECT 1"), nil)

	assert.Equal(t, 1, recorded.FilterMessage("slow sql").Len())
}

func TestGormLogger_Silent(t *testing.T) {
	l, recorded := newObservedGorm(gormlogger.Silent)
	l.Trace(context.Background(), time.Now(), sqlFunc("SELECT 1"), errors.New("x"))
	l.Info(context.Background(), "ignored")
	assert.Equal(t, 0, recorded.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = (*GormLogger)(nil)
}
