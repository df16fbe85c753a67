// Package db opens the PostgreSQL pool and owns the schema migration.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/money-tracker/backend/config"
	"github.com/money-tracker/backend/internal/integration/persistence/model"
)

const connectTimeout = 5 * time.Second

// Database wraps the GORM connection shared by every repository.
type Database struct {
	db *gorm.DB
}

// NewPostgresConnection opens the pool described by cfg and fails unless the server answers.
func NewPostgresConnection(ctx context.Context, cfg *config.DatabaseConfig) (*Database, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{db: gormDB}
	pool, err := database.pool()
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := database.HealthCheck(pingCtx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	slog.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return database, nil
}

// NewDatabase wraps a connection opened elsewhere, such as the SQLite one used in tests.
func NewDatabase(gormDB *gorm.DB) *Database {
	return &Database{db: gormDB}
}

func (d *Database) DB() *gorm.DB {
	return d.db
}

// HealthCheck is the database check of the health endpoint.
func (d *Database) HealthCheck(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	if err := pool.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Migrate creates or alters the users, tokens, records, settings and email queue tables.
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}

	stats := pool.Stats()
	if err := pool.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	slog.Info("Database connection closed", "open_connections", stats.OpenConnections, "wait_count", stats.WaitCount)
	return nil
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return pool, nil
}
