package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Staff users
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) DEFAULT 'user',
			is_active BOOLEAN DEFAULT TRUE,
			daily_quota INT DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// Student records
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id SERIAL PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			dni VARCHAR(20),
			phone VARCHAR(30),
			email VARCHAR(255),
			status VARCHAR(50) DEFAULT 'interesado',
			site VARCHAR(100),
			career VARCHAR(255),
			notes TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create students table: %w", err)
	}

	// Chat log. The payload column is opaque text: plain messages, JSON strings
	// and nested bot outputs all land here as produced upstream. id ordering is
	// the time proxy used when rebuilding transcripts.
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id SERIAL PRIMARY KEY,
			session_id VARCHAR(100) NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create chat_messages table: %w", err)
	}
	p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages (session_id);")

	// Document metadata (files live in Drive)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			student_id INT REFERENCES students(id) ON DELETE CASCADE,
			phone VARCHAR(30),
			doc_type VARCHAR(50),
			drive_file_id VARCHAR(255) NOT NULL,
			file_name VARCHAR(255) NOT NULL,
			mime_type VARCHAR(100),
			uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	// Key/value settings (bot_enabled, welcome text, prompt overrides)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR(50) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}

	// Bot question metering per staff user
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bot_usage (
			user_id INT NOT NULL,
			date DATE NOT NULL,
			questions_asked INT DEFAULT 0,
			PRIMARY KEY (user_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("create bot_usage table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
