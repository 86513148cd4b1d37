package office

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
	"github.com/wolfeidau/offices/internal/store/memory"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stores office with self and owner", func(t *testing.T) {
		f := newFixture()

		office, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)
		require.NotEmpty(t, office.ID)
		require.Equal(t, "user-1", office.Owner)
		require.Equal(t, "http://localhost:8080/offices/"+office.ID, office.Self)
		require.NotNil(t, office.Employees)
		require.Empty(t, office.Employees)

		stored, err := f.offices.Get(ctx, office.ID)
		require.NoError(t, err)
		require.Equal(t, office.Self, stored.Self)
	})

	t.Run("same identity for same owner conflicts", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.Equal(t, KindConflict, KindOf(err))
		require.Equal(t, OpCreate, OpOf(err))
	})

	t.Run("same identity for different owners succeeds", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, testCaller("user-2"), validFields())
		require.NoError(t, err)
	})

	t.Run("validation failure stores nothing", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, testCaller("user-1"), with(validFields(), "state", "XX"))
		require.Equal(t, KindInvalidField, KindOf(err))

		page, err := f.offices.ListByOwner(ctx, "user-1", "", 10)
		require.NoError(t, err)
		require.Empty(t, page.Offices)
	})

	t.Run("storage failure", func(t *testing.T) {
		offices := &failingOfficeStore{OfficeStore: memory.NewOfficeStore(), failCreate: true}
		svc := NewService(offices, memory.NewEmployeeStore())

		_, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.Equal(t, KindOperationFailed, KindOf(err))
		require.Equal(t, OpCreate, OpOf(err))
		require.ErrorIs(t, err, errStorage)
	})

	t.Run("uniqueness query failure", func(t *testing.T) {
		offices := &failingOfficeStore{OfficeStore: memory.NewOfficeStore(), failFind: true}
		svc := NewService(offices, memory.NewEmployeeStore())

		_, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.Equal(t, KindOperationFailed, KindOf(err))
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
	require.NoError(t, err)

	t.Run("owner", func(t *testing.T) {
		office, err := f.svc.Get(ctx, testCaller("user-1"), created.ID)
		require.NoError(t, err)
		require.Equal(t, created.ID, office.ID)
	})

	t.Run("other caller", func(t *testing.T) {
		_, err := f.svc.Get(ctx, testCaller("user-2"), created.ID)
		require.Equal(t, KindForbidden, KindOf(err))
		require.Equal(t, OpGet, OpOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.Get(ctx, testCaller("user-1"), "does-not-exist")
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("unowned office is readable by anyone", func(t *testing.T) {
		legacy := testOffice("")
		require.NoError(t, f.offices.Create(ctx, legacy))

		_, err := f.svc.Get(ctx, testCaller("user-2"), legacy.ID)
		require.NoError(t, err)
	})
}

func TestService_Replace(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and keeps links", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		body := with(with(validFields(), "company", "Globex"), "general_manager", "Hank Scorpio")
		office, err := f.svc.Replace(ctx, testCaller("user-1"), created.ID, body)
		require.NoError(t, err)
		require.Equal(t, "Globex", office.Company)
		require.Equal(t, "Hank Scorpio", office.GeneralManager)
		require.Equal(t, created.ID, office.ID)
		require.Equal(t, created.Self, office.Self)
		require.Equal(t, "user-1", office.Owner)
	})

	t.Run("resubmitting identical identity conflicts", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Replace(ctx, testCaller("user-1"), created.ID, validFields())
		require.Equal(t, KindConflict, KindOf(err))
		require.Equal(t, OpReplace, OpOf(err))
	})

	t.Run("missing attribute", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Replace(ctx, testCaller("user-1"), created.ID, without(validFields(), "phone_number"))
		require.Equal(t, KindMissingAttributes, KindOf(err))
	})

	t.Run("ownership is checked before validation", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Replace(ctx, testCaller("user-2"), created.ID, map[string]any{"bogus": true})
		require.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("missing office", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Replace(ctx, testCaller("user-1"), "nope", validFields())
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("storage failure on write", func(t *testing.T) {
		mem := memory.NewOfficeStore()
		offices := &failingOfficeStore{OfficeStore: mem}
		svc := NewService(offices, memory.NewEmployeeStore())

		created, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		offices.failPut = true
		_, err = svc.Replace(ctx, testCaller("user-1"), created.ID, with(validFields(), "company", "Globex"))
		require.Equal(t, KindOperationFailed, KindOf(err))
		require.Equal(t, OpReplace, OpOf(err))
	})
}

func TestService_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("city only patch skips uniqueness", func(t *testing.T) {
		offices := &countingOfficeStore{OfficeStore: memory.NewOfficeStore()}
		svc := NewService(offices, memory.NewEmployeeStore())

		first, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)
		_, err = svc.Create(ctx, testCaller("user-1"), with(validFields(), "city", "Reno"))
		require.NoError(t, err)

		before := offices.identityQueries.Load()

		// produces a duplicate of the second office, accepted because identity was not fully supplied
		office, err := svc.Patch(ctx, testCaller("user-1"), first.ID, map[string]any{"city": "Reno"})
		require.NoError(t, err)
		require.Equal(t, "Reno", office.City)
		require.Equal(t, "Acme Widgets", office.Company)
		require.Equal(t, before, offices.identityQueries.Load())
	})

	t.Run("full identity patch is rechecked", func(t *testing.T) {
		offices := &countingOfficeStore{OfficeStore: memory.NewOfficeStore()}
		svc := NewService(offices, memory.NewEmployeeStore())

		first, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)
		_, err = svc.Create(ctx, testCaller("user-1"), with(validFields(), "city", "Reno"))
		require.NoError(t, err)

		before := offices.identityQueries.Load()

		_, err = svc.Patch(ctx, testCaller("user-1"), first.ID, map[string]any{
			"company": "Acme Widgets",
			"city":    "Reno",
			"state":   "OR",
		})
		require.Equal(t, KindConflict, KindOf(err))
		require.Equal(t, OpPatch, OpOf(err))
		require.Equal(t, before+1, offices.identityQueries.Load())
	})

	t.Run("invalid field leaves record unchanged", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Patch(ctx, testCaller("user-1"), created.ID, map[string]any{"city": "Reno", "phone_number": "123"})
		require.Equal(t, KindInvalidField, KindOf(err))

		stored, err := f.offices.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, "Portland", stored.City)
	})

	t.Run("forbidden", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		_, err = f.svc.Patch(ctx, testCaller("user-2"), created.ID, map[string]any{"city": "Reno"})
		require.Equal(t, KindForbidden, KindOf(err))
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("releases every employee", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		var ids []string
		for _, name := range []string{"Ann", "Bob", "Cid"} {
			employee := testEmployee("user-1", name)
			require.NoError(t, f.employees.Create(ctx, employee))
			require.NoError(t, f.svc.Assign(ctx, testCaller("user-1"), created.ID, employee.ID))
			ids = append(ids, employee.ID)
		}

		require.NoError(t, f.svc.Delete(ctx, testCaller("user-1"), created.ID))

		_, err = f.svc.Get(ctx, testCaller("user-1"), created.ID)
		require.Equal(t, KindNotFound, KindOf(err))

		for _, id := range ids {
			employee, err := f.employees.Get(ctx, id)
			require.NoError(t, err)
			require.Nil(t, employee.Employer)
		}
	})

	t.Run("skips employees that no longer exist", func(t *testing.T) {
		f := newFixture()
		office := testOffice("user-1")
		office.Employees = []models.EmployeeRef{{ID: "gone", FirstName: "Ghost"}}
		require.NoError(t, f.offices.Create(ctx, office))

		require.NoError(t, f.svc.Delete(ctx, testCaller("user-1"), office.ID))

		_, err := f.offices.Get(ctx, office.ID)
		require.ErrorIs(t, err, store.ErrOfficeNotFound)
	})

	t.Run("forbidden", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		err = f.svc.Delete(ctx, testCaller("user-2"), created.ID)
		require.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture()
		err := f.svc.Delete(ctx, testCaller("user-1"), "nope")
		require.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		offices := &failingOfficeStore{OfficeStore: memory.NewOfficeStore()}
		svc := NewService(offices, memory.NewEmployeeStore())

		created, err := svc.Create(ctx, testCaller("user-1"), validFields())
		require.NoError(t, err)

		offices.failDelete = true
		err = svc.Delete(ctx, testCaller("user-1"), created.ID)
		require.Equal(t, KindOperationFailed, KindOf(err))
		require.Equal(t, OpDelete, OpOf(err))
	})
}
