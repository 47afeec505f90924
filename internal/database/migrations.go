package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RunMigrations creates the CRM tables when they do not exist yet. The DDL
// sticks to types both Postgres and SQLite accept.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		createUsersTable,
		createLeadsTable,
		createUsersEmailIndex,
		createLeadsAssignedIndex,
		createLeadsStatusIndex,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id VARCHAR(64) PRIMARY KEY,
    username VARCHAR(100) UNIQUE NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    name VARCHAR(255) NOT NULL DEFAULT '',
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(32) NOT NULL,
    role_level INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createLeadsTable = `
CREATE TABLE IF NOT EXISTS leads (
    id VARCHAR(64) PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL DEFAULT '',
    phone VARCHAR(32) NOT NULL DEFAULT '',
    course VARCHAR(255) NOT NULL DEFAULT '',
    source VARCHAR(64) NOT NULL DEFAULT '',
    status VARCHAR(32) NOT NULL DEFAULT 'new',
    assigned_to VARCHAR(64) NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const createUsersEmailIndex = `CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`

const createLeadsAssignedIndex = `CREATE INDEX IF NOT EXISTS idx_leads_assigned_to ON leads(assigned_to);`

const createLeadsStatusIndex = `CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);`
