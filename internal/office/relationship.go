package office

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
	"github.com/wolfeidau/offices/internal/telemetry"
)

// Relationships keeps the office employees sequence and the employee employer
// reference in step.
//
// The two records are written separately: employee first, then office. There is
// no compensation when the office write fails after the employee write landed;
// the failure is logged with both ids and surfaced as KindOperationFailed.
// Concurrent assigns of one employee can both pass the not-assigned check.
type Relationships struct {
	offices   store.OfficeStore
	employees store.EmployeeStore
	metrics   *telemetry.Metrics
}

// NewRelationships creates a relationship manager over the two stores.
func NewRelationships(offices store.OfficeStore, employees store.EmployeeStore) *Relationships {
	return &Relationships{
		offices:   offices,
		employees: employees,
		metrics:   telemetry.GetMetrics(),
	}
}

// Assign links employee to office. The employee must not already have an employer.
func (r *Relationships) Assign(ctx context.Context, officeID, employeeID, caller string) error {
	office, employee, err := r.load(ctx, OpAssign, officeID, employeeID)
	if err != nil {
		return err
	}

	if err := AuthorizeLink(office, employee, caller); err != nil {
		return withOp(err, OpAssign)
	}

	if employee.Assigned() {
		return newError(KindAlreadyAssigned, OpAssign)
	}

	office.Employees = append(office.Employees, employee.Ref())
	employee.Employer = office.Ref()

	if err := r.write(ctx, OpAssign, office, employee); err != nil {
		return err
	}

	r.metrics.AssignmentsTotal.Add(ctx, 1)
	return nil
}

// Unassign removes employee from office. The employee must appear in the
// office's employees sequence.
func (r *Relationships) Unassign(ctx context.Context, officeID, employeeID, caller string) error {
	office, employee, err := r.load(ctx, OpUnassign, officeID, employeeID)
	if err != nil {
		return err
	}

	if err := AuthorizeLink(office, employee, caller); err != nil {
		return withOp(err, OpUnassign)
	}

	idx := office.IndexOfEmployee(employeeID)
	if idx < 0 {
		return newError(KindNotAssigned, OpUnassign)
	}

	office.Employees = append(office.Employees[:idx], office.Employees[idx+1:]...)
	employee.Employer = nil

	if err := r.write(ctx, OpUnassign, office, employee); err != nil {
		return err
	}

	r.metrics.UnassignmentsTotal.Add(ctx, 1)
	return nil
}

// CascadeUnassign clears the employer of every employee listed on office, one
// at a time. Employees that no longer exist are skipped. The office record
// itself is not written.
func (r *Relationships) CascadeUnassign(ctx context.Context, office *models.Office) error {
	logger := zerolog.Ctx(ctx)

	for _, ref := range office.Employees {
		employee, err := r.employees.Get(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, store.ErrEmployeeNotFound) {
				logger.Warn().
					Str("office_id", office.ID).
					Str("employee_id", ref.ID).
					Msg("Skipping missing employee while releasing office")
				continue
			}
			return &Error{Kind: KindOperationFailed, Op: OpDelete, Err: err}
		}

		employee.Employer = nil
		if err := r.employees.Put(ctx, employee); err != nil {
			return &Error{Kind: KindOperationFailed, Op: OpDelete, Err: err}
		}

		r.metrics.CascadeUnassignedTotal.Add(ctx, 1)
	}

	return nil
}

func (r *Relationships) load(ctx context.Context, op Op, officeID, employeeID string) (*models.Office, *models.Employee, error) {
	office, err := r.offices.Get(ctx, officeID)
	if err != nil && !errors.Is(err, store.ErrOfficeNotFound) {
		return nil, nil, &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	employee, eerr := r.employees.Get(ctx, employeeID)
	if eerr != nil && !errors.Is(eerr, store.ErrEmployeeNotFound) {
		return nil, nil, &Error{Kind: KindOperationFailed, Op: op, Err: eerr}
	}

	if office == nil || employee == nil {
		return nil, nil, newError(KindNotFound, op)
	}

	return office, employee, nil
}

func (r *Relationships) write(ctx context.Context, op Op, office *models.Office, employee *models.Employee) error {
	if err := r.employees.Put(ctx, employee); err != nil {
		return &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	if err := r.offices.Put(ctx, office); err != nil {
		r.metrics.PartialWriteFailedTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("op", string(op)).
			Str("office_id", office.ID).
			Str("employee_id", employee.ID).
			Msg("Employee updated but office write failed, records are inconsistent")
		return &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	return nil
}
