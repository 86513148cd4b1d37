package store

import (
	"context"

	"github.com/wolfeidau/offices/internal/models"
)

// EmployeeStore defines the storage operations for employees used by this service.
// Employees are created by the employee service; Create exists for seeding and tests.
type EmployeeStore interface {
	// Create stores a new employee, assigning an ID when none is set.
	Create(ctx context.Context, employee *models.Employee) error

	// Get retrieves an employee by ID.
	// Returns ErrEmployeeNotFound if the employee doesn't exist.
	Get(ctx context.Context, employeeID string) (*models.Employee, error)

	// Put overwrites an existing employee. Last write wins.
	// Returns ErrEmployeeNotFound if the employee doesn't exist.
	Put(ctx context.Context, employee *models.Employee) error
}
