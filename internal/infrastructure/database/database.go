package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"dealdesk/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewDatabase(cfg *config.Config, logger *zap.Logger) (*Database, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := &Database{
		DB:     db,
		logger: logger,
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database, nil
}

func (d *Database) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			issuer_id VARCHAR(64) NOT NULL,
			counterparty_email VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			amount_cents BIGINT NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			content TEXT NOT NULL DEFAULT '',
			deliverables TEXT[] NOT NULL DEFAULT '{}',
			timeline VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'draft',
			viewed_at TIMESTAMPTZ,
			responded_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_documents_issuer ON documents(issuer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_counterparty ON documents(counterparty_email);`,

		`CREATE TABLE IF NOT EXISTS contracts (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES documents(id),
			issuer_id VARCHAR(64) NOT NULL,
			counterparty_email VARCHAR(255) NOT NULL,
			title VARCHAR(255) NOT NULL,
			amount_cents BIGINT NOT NULL DEFAULT 0,
			currency VARCHAR(3) NOT NULL DEFAULT 'USD',
			terms TEXT NOT NULL DEFAULT '',
			deliverables TEXT[] NOT NULL DEFAULT '{}',
			timeline VARCHAR(255) NOT NULL DEFAULT '',
			status VARCHAR(16) NOT NULL DEFAULT 'sent',
			signer_name VARCHAR(255) NOT NULL DEFAULT '',
			signed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_contracts_document ON contracts(document_id);`,

		`CREATE TABLE IF NOT EXISTS view_events (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			viewer_id VARCHAR(128) NOT NULL,
			section VARCHAR(64) NOT NULL DEFAULT '',
			time_spent_seconds INT NOT NULL CHECK (time_spent_seconds >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_view_events_document ON view_events(document_id, created_at DESC);`,

		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			author_id VARCHAR(64) NOT NULL,
			content TEXT NOT NULL,
			is_internal BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id, created_at);`,

		`CREATE TABLE IF NOT EXISTS transition_log (
			id UUID PRIMARY KEY,
			document_id UUID NOT NULL,
			from_status VARCHAR(16) NOT NULL,
			to_status VARCHAR(16) NOT NULL,
			actor_id VARCHAR(128) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,

		`CREATE INDEX IF NOT EXISTS idx_transition_log_document ON transition_log(document_id, created_at);`,
	}

	for _, stmt := range statements {
		if _, err := d.DB.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
