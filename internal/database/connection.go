package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DMHCAIT/crm-backend-sub002/pkg/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const pingTimeout = 5 * time.Second

// DriverFor returns the database/sql driver name and DSN for cfg
func DriverFor(cfg *config.DatabaseConfig) (string, string, error) {
	switch cfg.Type {
	case "postgres":
		if cfg.URL != "" {
			return "postgres", cfg.URL, nil
		}
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		return "postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode), nil
	case "sqlite":
		return "sqlite3", cfg.Path, nil
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// NewConnection creates a new database connection based on configuration
func NewConnection(cfg *config.DatabaseConfig) (*sql.DB, error) {
	driverName, dsn, err := DriverFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	return db, nil
}
