package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB holds the database connection
var DB *sql.DB

// InitDB initializes the database connection from environment variables and
// ensures the application schema exists
func InitDB() error {
	// Get database connection string from environment
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Build connection string from individual variables
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		user := os.Getenv("DB_USER")
		password := os.Getenv("DB_PASSWORD")
		dbname := os.Getenv("DB_NAME")
		sslmode := os.Getenv("DB_SSLMODE")

		if host == "" || user == "" || dbname == "" {
			return fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
		}

		if port == "" {
			port = "5432"
		}
		if sslmode == "" {
			sslmode = "disable"
		}

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	var err error
	DB, err = sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	ctx := context.Background()
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := ensureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Printf("✓ Database connection established successfully")
	return nil
}

// ensureSchema creates the application's tables when they do not exist yet.
// The template blob lives in app_settings; contracts carry their form data
// as an opaque jsonb column.
func ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS app_settings (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role     TEXT NOT NULL DEFAULT 'employee'
		)`,
		`CREATE TABLE IF NOT EXISTS clients (
			id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			name        TEXT NOT NULL,
			father_name TEXT,
			tazkira     TEXT,
			phone       TEXT,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			client_id       TEXT NOT NULL,
			client_name     TEXT NOT NULL,
			form_data       JSONB NOT NULL DEFAULT '{}',
			timestamp       TIMESTAMPTZ NOT NULL DEFAULT now(),
			expiry_date     TIMESTAMPTZ,
			template_id     TEXT,
			is_extended     BOOLEAN NOT NULL DEFAULT false,
			assigned_to     TEXT,
			last_printed_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_timestamp ON contracts (timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_assigned_to ON contracts (assigned_to)`,
	}
	for _, stmt := range statements {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
