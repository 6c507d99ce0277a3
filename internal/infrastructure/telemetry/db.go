package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation
type DBConfig struct {
	TraceEnabled       bool
	LogFullSQL         bool // include bound variables in span statements
	SlowQueryThreshold time.Duration
	DBName             string
}

const startedAtKey = "telemetry:started_at"

// InstrumentDB installs the otelgorm plugin (when TraceEnabled), a slow query
// detector and, if registry is non-nil, a connection pool stats collector.
func InstrumentDB(db *gorm.DB, cfg DBConfig, registry *prometheus.Registry, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
	}

	if cfg.SlowQueryThreshold > 0 {
		d := &slowQueryDetector{threshold: cfg.SlowQueryThreshold, logger: logger.Named("db")}
		if err := d.register(db); err != nil {
			return fmt.Errorf("register slow query callbacks: %w", err)
		}
	}

	if registry != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		if err := registry.Register(collectors.NewDBStatsCollector(sqlDB, cfg.DBName)); err != nil {
			return fmt.Errorf("register db stats collector: %w", err)
		}
	}
	return nil
}

type slowQueryDetector struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (d *slowQueryDetector) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", d.before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", d.after),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", d.before),
		cb.Query().After("gorm:query").Register("telemetry:after_query", d.after),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", d.before),
		cb.Update().After("gorm:update").Register("telemetry:after_update", d.after),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", d.before),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", d.after),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", d.before),
		cb.Row().After("gorm:row").Register("telemetry:after_row", d.after),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", d.before),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", d.after),
	)
}

func (d *slowQueryDetector) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (d *slowQueryDetector) after(db *gorm.DB) {
	v, ok := db.InstanceGet(startedAtKey)
	if !ok {
		return
	}
	startedAt, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(startedAt)
	if elapsed < d.threshold {
		return
	}

	ctx := db.Statement.Context
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	d.logger.Warn("slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", d.threshold),
		zap.Int64("rows", db.Statement.RowsAffected),
	)
}
