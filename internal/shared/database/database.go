package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/husteen/accounts/internal/shared/config"
	"github.com/husteen/accounts/internal/shared/database/migrations"
)

// NewDB opens a PostgreSQL connection through the pgx stdlib driver and runs
// the embedded schema migrations. Pool settings: max 10 connections,
// 5 idle connections, 1-hour max lifetime, 30-min idle timeout.
func NewDB(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	logger.Debug().Str("DATABASE_URL", cfg.DatabaseURL).Msg("Initializing database connection pool")

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(time.Minute * 30)

	if err := RunMigrations(context.Background(), db); err != nil {
		logger.Error().Err(err).Msg("Failed to run database migrations")
		return nil, err
	}

	logger.Debug().Msg("Database connection pool created and migrations applied")
	return db, nil
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
