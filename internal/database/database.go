package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sangjo/reservation-desk/internal/config"
	log "github.com/sirupsen/logrus"
)

const (
	maxConns = 10
	minConns = 1
)

// ConnString is the postgres:// URL for cfg, shared by the pool and the migrator.
// Every connection resolves unqualified names in cfg.Schema.
func ConnString(cfg config.Database) string {
	query := url.Values{}
	query.Set("sslmode", "disable")
	query.Set("search_path", cfg.Schema)
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Pass),
		Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Open opens a Postgres connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database %s at %s:%d: %w", cfg.Name, cfg.Host, cfg.Port, err)
	}
	log.Debugf("Connected to database %s at %s:%d", cfg.Name, cfg.Host, cfg.Port)
	return pool, nil
}

// Migrate applies all pending migrations. Running it on an up-to-date schema is a no-op.
func Migrate(cfg config.Database) error {
	dir, err := migrationsDir(cfg.Migrations)
	if err != nil {
		return fmt.Errorf("failed to locate migrations directory: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), ConnString(cfg))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debug("Database schema already up to date")
	case err != nil:
		return fmt.Errorf("migration up failed: %w", err)
	default:
		version, _, _ := m.Version()
		log.Infof("Database migrated to version %d", version)
	}
	return nil
}

// migrationsDir returns configured when set, otherwise the nearest "migrations"
// directory at or above the working directory (package tests run one level down).
func migrationsDir(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("no migrations directory found")
		}
		dir = parent
	}
}
