package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// connectTimeout bounds the startup ping
const connectTimeout = 10 * time.Second

// Database is the gorm handle plus the pool underneath it. Every repository
// shares DB; pool metrics come from telemetry.InstrumentDB.
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Open connects to Postgres and applies the pool limits from cfg. gormLog
// may be nil for a silent logger. TranslateError is on so unique
// violations reach repositories as gorm.ErrDuplicatedKey.
func Open(ctx context.Context, cfg *config.DatabaseConfig, gormLog gormlogger.Interface) (*Database, error) {
	if gormLog == nil {
		gormLog = gormlogger.Discard
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.DBName, err)
	}

	db, err := wrap(gdb)
	if err != nil {
		return nil, err
	}
	db.sql.SetMaxOpenConns(cfg.MaxOpenConns)
	db.sql.SetMaxIdleConns(cfg.MaxIdleConns)
	db.sql.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	db.sql.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func wrap(gdb *gorm.DB) (*Database, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return &Database{DB: gdb, sql: sqlDB}, nil
}

// SQL exposes the pool for migrations and metrics collectors
func (d *Database) SQL() *sql.DB { return d.sql }

// Ping backs the database readiness probe
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.sql.Close()
}

// Transaction runs fn in a transaction bound to ctx
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
