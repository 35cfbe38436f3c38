package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-cms/internal/config"
	"github.com/sethvargo/go-retry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the configured database, retrying a few times so the app can
// start alongside a Postgres container that is still booting.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.IsSQLite() {
		return OpenSQLite(cfg.DSN(), gcfg)
	}

	dsn := NormalizeDSN(cfg.DSN())
	log.Info("connecting to database", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.DBName, "user", cfg.User)

	var conn *gorm.DB
	backoff := retry.WithMaxRetries(4, retry.NewConstant(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err != nil {
			log.Warn("database not reachable, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return conn, nil
}

// OpenSQLite opens a sqlite database limited to one connection, which keeps
// ":memory:" databases shared across queries.
func OpenSQLite(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{}
	}
	conn, err := gorm.Open(sqlite.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

// Ping runs a trivial query; used by the health check.
func Ping(ctx context.Context, conn *gorm.DB) error {
	return conn.WithContext(ctx).Exec("SELECT 1").Error
}
