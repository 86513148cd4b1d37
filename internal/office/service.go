package office

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
	"github.com/wolfeidau/offices/internal/telemetry"
)

var tracer = otel.Tracer("github.com/wolfeidau/offices/internal/office")

// Caller identifies who is making a request and where the collection lives.
type Caller struct {
	// Subject is the authenticated principal, used as the owner of new offices.
	Subject string
	// CollectionURL is the absolute URL of the offices collection, for example
	// https://api.example.com/offices. Self and next links are built on it.
	CollectionURL string
}

// SelfURL returns the canonical URL of the office with id.
func (c Caller) SelfURL(id string) string {
	return c.CollectionURL + "/" + id
}

// Service implements the office lifecycle on top of the storage backends.
type Service struct {
	offices       store.OfficeStore
	uniqueness    *UniquenessChecker
	relationships *Relationships
	paginator     *Paginator
	metrics       *telemetry.Metrics
}

// NewService wires the lifecycle orchestrator and its collaborators.
func NewService(offices store.OfficeStore, employees store.EmployeeStore) *Service {
	return &Service{
		offices:       offices,
		uniqueness:    NewUniquenessChecker(offices),
		relationships: NewRelationships(offices, employees),
		paginator:     NewPaginator(offices),
		metrics:       telemetry.GetMetrics(),
	}
}

// Create validates fields and stores a new office owned by the caller.
func (s *Service) Create(ctx context.Context, caller Caller, fields map[string]any) (_ *models.Office, err error) {
	ctx, span := s.start(ctx, OpCreate, caller)
	defer func() { s.finish(ctx, span, OpCreate, err) }()

	attrs, err := ValidateFull(fields)
	if err != nil {
		return nil, withOp(err, OpCreate)
	}

	if err := s.checkConflict(ctx, OpCreate, caller.Subject, attrs.Company, attrs.City, attrs.State); err != nil {
		return nil, err
	}

	office := &models.Office{
		Owner:     caller.Subject,
		Employees: []models.EmployeeRef{},
	}
	attrs.Apply(office)

	if err := s.offices.Create(ctx, office); err != nil {
		return nil, &Error{Kind: KindOperationFailed, Op: OpCreate, Err: err}
	}
	id := office.ID

	// the id only exists after the first write, self is derived from it
	stored, err := s.offices.Get(ctx, id)
	if err != nil {
		return nil, &Error{Kind: KindOperationFailed, Op: OpCreate, Err: err}
	}

	stored.Self = caller.SelfURL(id)
	if err := s.offices.Put(ctx, stored); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("office_id", id).Msg("Office stored without self link")
		return nil, &Error{Kind: KindOperationFailed, Op: OpCreate, Err: err}
	}

	created, err := s.offices.Get(ctx, id)
	if err != nil {
		return nil, &Error{Kind: KindOperationFailed, Op: OpCreate, Err: err}
	}

	s.metrics.OfficesCreatedTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().Str("office_id", id).Str("owner", caller.Subject).Msg("Office created")

	return created, nil
}

// Get returns a single office.
func (s *Service) Get(ctx context.Context, caller Caller, id string) (_ *models.Office, err error) {
	ctx, span := s.start(ctx, OpGet, caller)
	defer func() { s.finish(ctx, span, OpGet, err) }()

	return s.load(ctx, OpGet, caller, id)
}

// List returns the page of the caller's offices starting at cursor.
func (s *Service) List(ctx context.Context, caller Caller, cursor string) (_ *Page, err error) {
	ctx, span := s.start(ctx, OpList, caller)
	defer func() { s.finish(ctx, span, OpList, err) }()

	return s.paginator.List(ctx, caller.Subject, cursor, caller.CollectionURL)
}

// Replace overwrites every editable field of an office.
//
// The uniqueness check does not exclude the office being replaced, so
// resubmitting its current company, city and state is a conflict.
func (s *Service) Replace(ctx context.Context, caller Caller, id string, fields map[string]any) (_ *models.Office, err error) {
	ctx, span := s.start(ctx, OpReplace, caller)
	defer func() { s.finish(ctx, span, OpReplace, err) }()

	office, err := s.load(ctx, OpReplace, caller, id)
	if err != nil {
		return nil, err
	}

	attrs, err := ValidateFull(fields)
	if err != nil {
		return nil, withOp(err, OpReplace)
	}

	if err := s.checkConflict(ctx, OpReplace, caller.Subject, attrs.Company, attrs.City, attrs.State); err != nil {
		return nil, err
	}

	attrs.Apply(office)

	updated, err := s.save(ctx, OpReplace, office)
	if err != nil {
		return nil, err
	}

	s.metrics.OfficesReplacedTotal.Add(ctx, 1)
	return updated, nil
}

// Patch merges the supplied fields into an office. Identity is only rechecked
// for uniqueness when company, city and state are all supplied.
func (s *Service) Patch(ctx context.Context, caller Caller, id string, fields map[string]any) (_ *models.Office, err error) {
	ctx, span := s.start(ctx, OpPatch, caller)
	defer func() { s.finish(ctx, span, OpPatch, err) }()

	office, err := s.load(ctx, OpPatch, caller, id)
	if err != nil {
		return nil, err
	}

	patch, err := ValidatePartial(fields)
	if err != nil {
		return nil, withOp(err, OpPatch)
	}

	if patch.ChangesIdentity() {
		if err := s.checkConflict(ctx, OpPatch, caller.Subject, *patch.Company, *patch.City, *patch.State); err != nil {
			return nil, err
		}
	}

	patch.Apply(office)

	updated, err := s.save(ctx, OpPatch, office)
	if err != nil {
		return nil, err
	}

	s.metrics.OfficesPatchedTotal.Add(ctx, 1)
	return updated, nil
}

// Delete releases every employee assigned to an office and then removes it.
func (s *Service) Delete(ctx context.Context, caller Caller, id string) (err error) {
	ctx, span := s.start(ctx, OpDelete, caller)
	defer func() { s.finish(ctx, span, OpDelete, err) }()

	office, err := s.load(ctx, OpDelete, caller, id)
	if err != nil {
		return err
	}

	if err := s.relationships.CascadeUnassign(ctx, office); err != nil {
		return err
	}

	if err := s.offices.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrOfficeNotFound) {
			return newError(KindNotFound, OpDelete)
		}
		return &Error{Kind: KindOperationFailed, Op: OpDelete, Err: err}
	}

	s.metrics.OfficesDeletedTotal.Add(ctx, 1)
	zerolog.Ctx(ctx).Info().Str("office_id", id).Int("released", len(office.Employees)).Msg("Office deleted")

	return nil
}

// Assign places an employee in an office.
func (s *Service) Assign(ctx context.Context, caller Caller, officeID, employeeID string) (err error) {
	ctx, span := s.start(ctx, OpAssign, caller)
	span.SetAttributes(attribute.String("office.id", officeID), attribute.String("employee.id", employeeID))
	defer func() { s.finish(ctx, span, OpAssign, err) }()

	return s.relationships.Assign(ctx, officeID, employeeID, caller.Subject)
}

// Unassign removes an employee from an office.
func (s *Service) Unassign(ctx context.Context, caller Caller, officeID, employeeID string) (err error) {
	ctx, span := s.start(ctx, OpUnassign, caller)
	span.SetAttributes(attribute.String("office.id", officeID), attribute.String("employee.id", employeeID))
	defer func() { s.finish(ctx, span, OpUnassign, err) }()

	return s.relationships.Unassign(ctx, officeID, employeeID, caller.Subject)
}

func (s *Service) load(ctx context.Context, op Op, caller Caller, id string) (*models.Office, error) {
	office, err := s.offices.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOfficeNotFound) {
			return nil, newError(KindNotFound, op)
		}
		return nil, &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	if err := Authorize(office.Owner, caller.Subject); err != nil {
		return nil, withOp(err, op)
	}

	return office, nil
}

func (s *Service) save(ctx context.Context, op Op, office *models.Office) (*models.Office, error) {
	if err := s.offices.Put(ctx, office); err != nil {
		if errors.Is(err, store.ErrOfficeNotFound) {
			return nil, newError(KindNotFound, op)
		}
		return nil, &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	updated, err := s.offices.Get(ctx, office.ID)
	if err != nil {
		return nil, &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}

	return updated, nil
}

func (s *Service) checkConflict(ctx context.Context, op Op, owner, company, city, state string) error {
	conflict, err := s.uniqueness.FindConflict(ctx, owner, company, city, state)
	if err != nil {
		return &Error{Kind: KindOperationFailed, Op: op, Err: err}
	}
	if conflict {
		s.metrics.ConflictsTotal.Add(ctx, 1)
		return newError(KindConflict, op)
	}
	return nil
}

func (s *Service) start(ctx context.Context, op Op, caller Caller) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "office."+string(op))
	span.SetAttributes(attribute.String("caller.subject", caller.Subject))
	return ctx, span
}

func (s *Service) finish(ctx context.Context, span trace.Span, op Op, err error) {
	defer span.End()

	if err == nil {
		return
	}

	kind := KindOf(err)
	span.SetAttributes(attribute.String("error.kind", string(kind)))

	if kind != KindOperationFailed {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.OperationFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", string(op))))
	zerolog.Ctx(ctx).Error().Err(err).Str("op", string(op)).Msg("Office operation failed")
}
