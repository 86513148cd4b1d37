package memory

import (
	"context"
	"sync"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// EmployeeStore implements store.EmployeeStore using in-memory storage.
type EmployeeStore struct {
	mu sync.RWMutex

	employees map[string]*models.Employee // employee_id -> Employee
}

// NewEmployeeStore creates a new in-memory employee store.
func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{
		employees: make(map[string]*models.Employee),
	}
}

// Create stores a copy of the employee, assigning an ID when none is set.
func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		id, err := store.NewID()
		if err != nil {
			return err
		}
		employee.ID = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[employee.ID] = employee.Clone()

	return nil
}

// Get retrieves an employee by ID.
func (s *EmployeeStore) Get(ctx context.Context, employeeID string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, exists := s.employees[employeeID]
	if !exists {
		return nil, store.ErrEmployeeNotFound
	}

	return employee.Clone(), nil
}

// Put overwrites an existing employee.
func (s *EmployeeStore) Put(ctx context.Context, employee *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.employees[employee.ID]; !exists {
		return store.ErrEmployeeNotFound
	}

	s.employees[employee.ID] = employee.Clone()

	return nil
}
