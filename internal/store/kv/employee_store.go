package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// EmployeeStore implements store.EmployeeStore on Badger.
type EmployeeStore struct {
	db *DB
}

// NewEmployeeStore creates an employee store on db.
func NewEmployeeStore(db *DB) *EmployeeStore {
	return &EmployeeStore{db: db}
}

// Create stores a new employee, assigning an ID when none is set.
func (s *EmployeeStore) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		id, err := store.NewID()
		if err != nil {
			return err
		}
		employee.ID = id
	}

	return s.set(ctx, employee)
}

// Get retrieves an employee by ID.
func (s *EmployeeStore) Get(ctx context.Context, employeeID string) (*models.Employee, error) {
	employee := &models.Employee{}

	err := s.db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(employeeKey(employeeID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, employee)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to read employee: %w", err)
	}

	return employee, nil
}

// Put overwrites an existing employee.
func (s *EmployeeStore) Put(ctx context.Context, employee *models.Employee) error {
	value, err := cbor.Marshal(employee)
	if err != nil {
		return fmt.Errorf("failed to encode employee: %w", err)
	}

	return s.db.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(employeeKey(employee.ID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrEmployeeNotFound
			}
			return err
		}
		return txn.Set(employeeKey(employee.ID), value)
	})
}

func (s *EmployeeStore) set(ctx context.Context, employee *models.Employee) error {
	value, err := cbor.Marshal(employee)
	if err != nil {
		return fmt.Errorf("failed to encode employee: %w", err)
	}

	err = s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(employeeKey(employee.ID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to store employee: %w", err)
	}
	return nil
}
