package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Config holds the settings for the PostgreSQL backend.
type Config struct {
	Pool PoolConfig

	// AutoMigrate applies embedded migrations on Open.
	AutoMigrate bool
}

// Store owns the connection pool shared by the office and employee stores.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL and, when configured, brings the schema up to date.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	pool, err := NewPool(ctx, &cfg.Pool)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("Database migrations completed")
	}

	return &Store{pool: pool}, nil
}

// Offices returns the office store backed by this pool.
func (s *Store) Offices() *OfficeStore {
	return NewOfficeStore(s.pool)
}

// Employees returns the employee store backed by this pool.
func (s *Store) Employees() *EmployeeStore {
	return NewEmployeeStore(s.pool)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
