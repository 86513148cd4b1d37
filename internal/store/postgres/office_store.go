package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

const officeColumns = `id, owner, company, city, state, general_manager, phone_number, self, employees`

// OfficeStore implements store.OfficeStore using PostgreSQL.
type OfficeStore struct {
	pool *pgxpool.Pool
}

// NewOfficeStore creates a new PostgreSQL-backed office store.
// It shares the connection pool with other stores.
func NewOfficeStore(pool *pgxpool.Pool) *OfficeStore {
	return &OfficeStore{
		pool: pool,
	}
}

// Create inserts a new office with a freshly assigned ID.
func (s *OfficeStore) Create(ctx context.Context, office *models.Office) error {
	id, err := store.NewID()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO offices (` + officeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.pool.Exec(ctx, query,
		id,
		office.Owner,
		office.Company,
		office.City,
		office.State,
		office.GeneralManager,
		office.PhoneNumber,
		office.Self,
		employeesOrEmpty(office.Employees),
	)
	if err != nil {
		return fmt.Errorf("failed to create office: %w", mapPostgresError(err))
	}

	office.ID = id

	log.Debug().
		Str("office_id", id).
		Str("owner", office.Owner).
		Msg("Created office")

	return nil
}

// Get retrieves an office by ID.
func (s *OfficeStore) Get(ctx context.Context, officeID string) (*models.Office, error) {
	query := `SELECT ` + officeColumns + ` FROM offices WHERE id = $1`

	office, err := scanOffice(s.pool.QueryRow(ctx, query, officeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to get office: %w", mapPostgresError(err))
	}

	return office, nil
}

// Put overwrites every column of an existing office.
func (s *OfficeStore) Put(ctx context.Context, office *models.Office) error {
	query := `
		UPDATE offices SET
			owner = $2,
			company = $3,
			city = $4,
			state = $5,
			general_manager = $6,
			phone_number = $7,
			self = $8,
			employees = $9,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		office.ID,
		office.Owner,
		office.Company,
		office.City,
		office.State,
		office.GeneralManager,
		office.PhoneNumber,
		office.Self,
		employeesOrEmpty(office.Employees),
	)
	if err != nil {
		return fmt.Errorf("failed to update office: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrOfficeNotFound
	}

	return nil
}

// Delete deletes an office by ID.
func (s *OfficeStore) Delete(ctx context.Context, officeID string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM offices WHERE id = $1`, officeID)
	if err != nil {
		return fmt.Errorf("failed to delete office: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrOfficeNotFound
	}

	log.Debug().Str("office_id", officeID).Msg("Deleted office")

	return nil
}

// FindByIdentity returns the offices of owner with the given company, city and state.
func (s *OfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	query := `
		SELECT ` + officeColumns + `
		FROM offices
		WHERE owner = $1 AND company = $2 AND city = $3 AND state = $4
	`

	rows, err := s.pool.Query(ctx, query, owner, company, city, state)
	if err != nil {
		return nil, fmt.Errorf("failed to query offices by identity: %w", mapPostgresError(err))
	}

	return collectOffices(rows)
}

// ListByOwner pages through the owner's offices by ascending ID.
// The cursor is the base58-encoded ID of the last office of the previous page.
func (s *OfficeStore) ListByOwner(ctx context.Context, owner, cursor string, limit int) (*store.OfficePage, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + officeColumns + `
		FROM offices
		WHERE owner = $1 AND id > $2
		ORDER BY id
		LIMIT $3
	`

	// one extra row tells us whether another page exists
	rows, err := s.pool.Query(ctx, query, owner, string(after), limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", mapPostgresError(err))
	}

	offices, err := collectOffices(rows)
	if err != nil {
		return nil, err
	}

	page := &store.OfficePage{Offices: offices}
	if len(offices) > limit {
		page.Offices = offices[:limit]
		page.MoreResults = true
	}

	if n := len(page.Offices); n > 0 {
		page.EndCursor = store.EncodeCursor([]byte(page.Offices[n-1].ID))
	}

	return page, nil
}

func scanOffice(row pgx.Row) (*models.Office, error) {
	var office models.Office
	err := row.Scan(
		&office.ID,
		&office.Owner,
		&office.Company,
		&office.City,
		&office.State,
		&office.GeneralManager,
		&office.PhoneNumber,
		&office.Self,
		&office.Employees,
	)
	if err != nil {
		return nil, err
	}
	return &office, nil
}

func collectOffices(rows pgx.Rows) ([]*models.Office, error) {
	defer rows.Close()

	var offices []*models.Office
	for rows.Next() {
		office, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan office: %w", err)
		}
		offices = append(offices, office)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offices: %w", mapPostgresError(err))
	}

	return offices, nil
}

func employeesOrEmpty(employees []models.EmployeeRef) []models.EmployeeRef {
	if employees == nil {
		return []models.EmployeeRef{}
	}
	return employees
}

var (
	_ store.OfficeStore   = (*OfficeStore)(nil)
	_ store.EmployeeStore = (*EmployeeStore)(nil)
)
