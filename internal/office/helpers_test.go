package office

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
	"github.com/wolfeidau/offices/internal/store/memory"
)

var errStorage = errors.New("storage unavailable")

func testOffice(owner string) *models.Office {
	return &models.Office{
		Company:        "Acme Widgets",
		City:           "Portland",
		State:          "OR",
		GeneralManager: "Jane Doe",
		PhoneNumber:    "(503) 555-0100",
		Owner:          owner,
		Employees:      []models.EmployeeRef{},
	}
}

func testEmployee(owner, first string) *models.Employee {
	return &models.Employee{
		FirstName: first,
		LastName:  "Smith",
		Owner:     owner,
	}
}

func testCaller(subject string) Caller {
	return Caller{Subject: subject, CollectionURL: "http://localhost:8080/offices"}
}

// countingOfficeStore records how often the uniqueness query runs.
type countingOfficeStore struct {
	store.OfficeStore
	identityQueries atomic.Int32
}

func (c *countingOfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	c.identityQueries.Add(1)
	return c.OfficeStore.FindByIdentity(ctx, owner, company, city, state)
}

// failingOfficeStore fails the selected operations.
type failingOfficeStore struct {
	store.OfficeStore
	failCreate, failGet, failPut, failDelete, failFind, failList bool
}

func (f *failingOfficeStore) Create(ctx context.Context, office *models.Office) error {
	if f.failCreate {
		return errStorage
	}
	return f.OfficeStore.Create(ctx, office)
}

func (f *failingOfficeStore) Get(ctx context.Context, id string) (*models.Office, error) {
	if f.failGet {
		return nil, errStorage
	}
	return f.OfficeStore.Get(ctx, id)
}

func (f *failingOfficeStore) Put(ctx context.Context, office *models.Office) error {
	if f.failPut {
		return errStorage
	}
	return f.OfficeStore.Put(ctx, office)
}

func (f *failingOfficeStore) Delete(ctx context.Context, id string) error {
	if f.failDelete {
		return errStorage
	}
	return f.OfficeStore.Delete(ctx, id)
}

func (f *failingOfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	if f.failFind {
		return nil, errStorage
	}
	return f.OfficeStore.FindByIdentity(ctx, owner, company, city, state)
}

func (f *failingOfficeStore) ListByOwner(ctx context.Context, owner, cursor string, limit int) (*store.OfficePage, error) {
	if f.failList {
		return nil, errStorage
	}
	return f.OfficeStore.ListByOwner(ctx, owner, cursor, limit)
}

// failingEmployeeStore fails Put once armed.
type failingEmployeeStore struct {
	store.EmployeeStore
	failPut bool
}

func (f *failingEmployeeStore) Put(ctx context.Context, employee *models.Employee) error {
	if f.failPut {
		return errStorage
	}
	return f.EmployeeStore.Put(ctx, employee)
}

type fixture struct {
	offices   *memory.OfficeStore
	employees *memory.EmployeeStore
	svc       *Service
}

func newFixture() *fixture {
	offices := memory.NewOfficeStore()
	employees := memory.NewEmployeeStore()
	return &fixture{
		offices:   offices,
		employees: employees,
		svc:       NewService(offices, employees),
	}
}
