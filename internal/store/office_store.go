package store

import (
	"context"

	"github.com/wolfeidau/offices/internal/models"
)

// OfficeStore defines the storage operations for offices.
// Every method touches a single record; no backend offers a transaction spanning
// an office and an employee, and callers must not assume one.
type OfficeStore interface {
	// Create stores a new office and assigns its ID.
	Create(ctx context.Context, office *models.Office) error

	// Get retrieves an office by ID.
	// Returns ErrOfficeNotFound if the office doesn't exist.
	Get(ctx context.Context, officeID string) (*models.Office, error)

	// Put overwrites an existing office. Last write wins.
	// Returns ErrOfficeNotFound if the office doesn't exist.
	Put(ctx context.Context, office *models.Office) error

	// Delete deletes an office by ID.
	// Returns ErrOfficeNotFound if the office doesn't exist.
	Delete(ctx context.Context, officeID string) error

	// FindByIdentity returns the offices of owner matching company, city and state.
	// This is a read; no backend enforces the tuple as a unique constraint.
	FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error)

	// ListByOwner returns up to limit offices owned by owner, resuming after cursor.
	// An empty cursor starts at the beginning of the backend's native ordering.
	// Returns ErrInvalidCursor if the cursor cannot be resumed.
	ListByOwner(ctx context.Context, owner, cursor string, limit int) (*OfficePage, error)
}

// OfficePage is one page of a ListByOwner query.
type OfficePage struct {
	Offices []*models.Office

	// EndCursor resumes the query after the last office of this page.
	EndCursor string

	// MoreResults is true when the backend reports results beyond this page.
	MoreResults bool
}
