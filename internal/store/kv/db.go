package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the Badger storage settings.
type Config struct {
	// Dir is the directory holding the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory, for tests and development.
	InMemory bool

	// MaxConflictRetries bounds how often a write is retried after a transaction conflict.
	// Default: 5
	MaxConflictRetries uint
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !c.InMemory && c.Dir == "" {
		return fmt.Errorf("badger directory is required")
	}
	return nil
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.MaxConflictRetries == 0 {
		c.MaxConflictRetries = 5
	}
}

// DB wraps a Badger database shared by the office and employee stores.
type DB struct {
	db         *badger.DB
	maxRetries uint
}

// Open opens (or creates) the Badger database described by cfg.
func Open(cfg Config) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid badger config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Dir).WithLogger(badgerLogger{logger: log.With().Str("component", "badger").Logger()})
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &DB{db: db, maxRetries: cfg.MaxConflictRetries}, nil
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// update runs fn in a read-write transaction, retrying when Badger reports a conflict.
func (d *DB) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := d.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			zerolog.Ctx(ctx).Debug().Msg("Badger transaction conflict, retrying")
			return struct{}{}, err
		}
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(d.maxRetries))

	return err
}

// badgerLogger routes Badger's internal logging through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(trimLine(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(trimLine(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msg(trimLine(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msg(trimLine(format, args...))
}

func trimLine(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
