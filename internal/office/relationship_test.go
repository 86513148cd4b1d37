package office

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store/memory"
)

func seedLink(t *testing.T, f *fixture, owner string) (*models.Office, *models.Employee) {
	t.Helper()
	ctx := context.Background()

	office := testOffice(owner)
	require.NoError(t, f.offices.Create(ctx, office))

	employee := testEmployee(owner, "Ann")
	require.NoError(t, f.employees.Create(ctx, employee))

	return office, employee
}

func TestRelationships_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("links both records", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")

		require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), office.ID, employee.ID))

		storedOffice, err := f.offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Len(t, storedOffice.Employees, 1)
		require.Equal(t, employee.ID, storedOffice.Employees[0].ID)
		require.Equal(t, "Ann", storedOffice.Employees[0].FirstName)

		storedEmployee, err := f.employees.Get(ctx, employee.ID)
		require.NoError(t, err)
		require.NotNil(t, storedEmployee.Employer)
		require.Equal(t, office.ID, storedEmployee.Employer.ID)
		require.Equal(t, office.Company, storedEmployee.Employer.Company)
	})

	t.Run("already assigned mutates nothing", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")
		require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), office.ID, employee.ID))

		other := testOffice("user-1")
		other.Company = "Globex"
		require.NoError(t, f.offices.Create(ctx, other))

		err := f.svc.Assign(ctx, testCaller("user-1"), other.ID, employee.ID)
		require.Equal(t, KindAlreadyAssigned, KindOf(err))

		storedOther, err := f.offices.Get(ctx, other.ID)
		require.NoError(t, err)
		require.Empty(t, storedOther.Employees)

		storedEmployee, err := f.employees.Get(ctx, employee.ID)
		require.NoError(t, err)
		require.Equal(t, office.ID, storedEmployee.Employer.ID)

		// repeating against the same office is refused as well
		err = f.svc.Assign(ctx, testCaller("user-1"), office.ID, employee.ID)
		require.Equal(t, KindAlreadyAssigned, KindOf(err))

		storedOffice, err := f.offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Len(t, storedOffice.Employees, 1)
	})

	t.Run("missing records", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")

		err := f.svc.Assign(ctx, testCaller("user-1"), "nope", employee.ID)
		require.Equal(t, KindNotFound, KindOf(err))

		err = f.svc.Assign(ctx, testCaller("user-1"), office.ID, "nope")
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("foreign employee", func(t *testing.T) {
		f := newFixture()
		office, _ := seedLink(t, f, "user-1")

		foreign := testEmployee("user-2", "Zed")
		require.NoError(t, f.employees.Create(ctx, foreign))

		err := f.svc.Assign(ctx, testCaller("user-1"), office.ID, foreign.ID)
		require.Equal(t, KindForbidden, KindOf(err))
		require.Equal(t, OpAssign, OpOf(err))
	})

	t.Run("office write failure after employee write", func(t *testing.T) {
		mem := memory.NewOfficeStore()
		offices := &failingOfficeStore{OfficeStore: mem}
		employees := memory.NewEmployeeStore()
		rel := NewRelationships(offices, employees)

		office := testOffice("user-1")
		require.NoError(t, mem.Create(ctx, office))
		employee := testEmployee("user-1", "Ann")
		require.NoError(t, employees.Create(ctx, employee))

		offices.failPut = true
		err := rel.Assign(ctx, office.ID, employee.ID, "user-1")
		require.Equal(t, KindOperationFailed, KindOf(err))

		// the employee write is not compensated
		storedEmployee, err := employees.Get(ctx, employee.ID)
		require.NoError(t, err)
		require.NotNil(t, storedEmployee.Employer)

		storedOffice, err := mem.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Empty(t, storedOffice.Employees)
	})

	t.Run("employee write failure leaves both untouched", func(t *testing.T) {
		offices := memory.NewOfficeStore()
		employees := &failingEmployeeStore{EmployeeStore: memory.NewEmployeeStore()}
		rel := NewRelationships(offices, employees)

		office := testOffice("user-1")
		require.NoError(t, offices.Create(ctx, office))
		employee := testEmployee("user-1", "Ann")
		require.NoError(t, employees.Create(ctx, employee))

		employees.failPut = true
		err := rel.Assign(ctx, office.ID, employee.ID, "user-1")
		require.Equal(t, KindOperationFailed, KindOf(err))

		storedOffice, err := offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Empty(t, storedOffice.Employees)
	})
}

func TestRelationships_Unassign(t *testing.T) {
	ctx := context.Background()

	t.Run("removes one entry and keeps order", func(t *testing.T) {
		f := newFixture()
		office, first := seedLink(t, f, "user-1")

		second := testEmployee("user-1", "Bob")
		require.NoError(t, f.employees.Create(ctx, second))
		third := testEmployee("user-1", "Cid")
		require.NoError(t, f.employees.Create(ctx, third))

		for _, e := range []*models.Employee{first, second, third} {
			require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), office.ID, e.ID))
		}

		require.NoError(t, f.svc.Unassign(ctx, testCaller("user-1"), office.ID, second.ID))

		storedOffice, err := f.offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Len(t, storedOffice.Employees, 2)
		require.Equal(t, first.ID, storedOffice.Employees[0].ID)
		require.Equal(t, third.ID, storedOffice.Employees[1].ID)

		storedSecond, err := f.employees.Get(ctx, second.ID)
		require.NoError(t, err)
		require.Nil(t, storedSecond.Employer)
	})

	t.Run("not assigned mutates nothing", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")

		err := f.svc.Unassign(ctx, testCaller("user-1"), office.ID, employee.ID)
		require.Equal(t, KindNotAssigned, KindOf(err))

		storedOffice, err := f.offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Empty(t, storedOffice.Employees)
	})

	t.Run("assigned elsewhere is not assigned here", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")
		require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), office.ID, employee.ID))

		other := testOffice("user-1")
		require.NoError(t, f.offices.Create(ctx, other))

		err := f.svc.Unassign(ctx, testCaller("user-1"), other.ID, employee.ID)
		require.Equal(t, KindNotAssigned, KindOf(err))

		storedEmployee, err := f.employees.Get(ctx, employee.ID)
		require.NoError(t, err)
		require.Equal(t, office.ID, storedEmployee.Employer.ID)
	})

	t.Run("forbidden", func(t *testing.T) {
		f := newFixture()
		office, employee := seedLink(t, f, "user-1")
		require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), office.ID, employee.ID))

		err := f.svc.Unassign(ctx, testCaller("user-2"), office.ID, employee.ID)
		require.Equal(t, KindForbidden, KindOf(err))
	})
}
