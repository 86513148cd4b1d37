package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// EmployeeStore implements store.EmployeeStore using PostgreSQL.
type EmployeeStore struct {
	pool *pgxpool.Pool
}

// NewEmployeeStore creates a new PostgreSQL-backed employee store.
func NewEmployeeStore(pool *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{
		pool: pool,
	}
}

// Create inserts an employee, assigning an ID when none is set.
// An existing employee with the same ID is overwritten so seeding is repeatable.
func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		id, err := store.NewID()
		if err != nil {
			return err
		}
		employee.ID = id
	}

	query := `
		INSERT INTO employees (id, owner, first_name, last_name, self, employer)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			owner = EXCLUDED.owner,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			self = EXCLUDED.self,
			employer = EXCLUDED.employer,
			updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query,
		employee.ID,
		employee.Owner,
		employee.FirstName,
		employee.LastName,
		employee.Self,
		employee.Employer,
	)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", mapPostgresError(err))
	}

	return nil
}

// Get retrieves an employee by ID.
func (s *EmployeeStore) Get(ctx context.Context, employeeID string) (*models.Employee, error) {
	query := `
		SELECT id, owner, first_name, last_name, self, employer
		FROM employees
		WHERE id = $1
	`

	var employee models.Employee
	err := s.pool.QueryRow(ctx, query, employeeID).Scan(
		&employee.ID,
		&employee.Owner,
		&employee.FirstName,
		&employee.LastName,
		&employee.Self,
		&employee.Employer,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", mapPostgresError(err))
	}

	return &employee, nil
}

// Put overwrites an existing employee.
func (s *EmployeeStore) Put(ctx context.Context, employee *models.Employee) error {
	query := `
		UPDATE employees SET
			owner = $2,
			first_name = $3,
			last_name = $4,
			self = $5,
			employer = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		employee.ID,
		employee.Owner,
		employee.FirstName,
		employee.LastName,
		employee.Self,
		employee.Employer,
	)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrEmployeeNotFound
	}

	return nil
}
