package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/offices/internal/store"
)

// transientErrors are codes where retrying the same statement later can succeed.
var transientErrors = map[string]error{
	pgerrcode.SerializationFailure:  store.ErrThrottled,
	pgerrcode.DeadlockDetected:      store.ErrThrottled,
	pgerrcode.InsufficientResources: store.ErrThrottled,
	pgerrcode.DiskFull:              store.ErrThrottled,
	pgerrcode.OutOfMemory:           store.ErrThrottled,
	pgerrcode.TooManyConnections:    store.ErrThrottled,

	pgerrcode.ConnectionException:                     store.ErrUnavailable,
	pgerrcode.ConnectionDoesNotExist:                  store.ErrUnavailable,
	pgerrcode.ConnectionFailure:                       store.ErrUnavailable,
	pgerrcode.CannotConnectNow:                        store.ErrUnavailable,
	pgerrcode.SQLClientUnableToEstablishSQLConnection: store.ErrUnavailable,
	pgerrcode.AdminShutdown:                           store.ErrUnavailable,
	pgerrcode.CrashShutdown:                           store.ErrUnavailable,
}

// mapPostgresError classifies PostgreSQL errors. Transient failures wrap
// store.ErrThrottled or store.ErrUnavailable; anything else keeps the server's
// code and message. Non PostgreSQL errors are returned unchanged.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if sentinel, ok := transientErrors[pgErr.Code]; ok {
		return fmt.Errorf("%w: %w", sentinel, err)
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		// only primary keys are unique, so this is an id collision
		return fmt.Errorf("duplicate id (%s): %w", pgErr.ConstraintName, err)
	case pgerrcode.UndefinedTable:
		return fmt.Errorf("schema not migrated, run with --postgres-auto-migrate: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
