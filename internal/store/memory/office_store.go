package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// OfficeStore implements store.OfficeStore using in-memory storage.
// This implementation is for testing and development - data is lost on restart.
type OfficeStore struct {
	mu sync.RWMutex

	offices map[string]*models.Office // office_id -> Office
}

// NewOfficeStore creates a new in-memory office store.
func NewOfficeStore() *OfficeStore {
	return &OfficeStore{
		offices: make(map[string]*models.Office),
	}
}

// Create assigns an ID to the office and stores a copy.
func (s *OfficeStore) Create(ctx context.Context, office *models.Office) error {
	id, err := store.NewID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	office.ID = id
	s.offices[id] = office.Clone()

	return nil
}

// Get retrieves an office by ID.
func (s *OfficeStore) Get(ctx context.Context, officeID string) (*models.Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	office, exists := s.offices[officeID]
	if !exists {
		return nil, store.ErrOfficeNotFound
	}

	// Clone to avoid external modifications
	return office.Clone(), nil
}

// Put overwrites an existing office.
func (s *OfficeStore) Put(ctx context.Context, office *models.Office) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.offices[office.ID]; !exists {
		return store.ErrOfficeNotFound
	}

	s.offices[office.ID] = office.Clone()

	return nil
}

// Delete deletes an office by ID.
func (s *OfficeStore) Delete(ctx context.Context, officeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.offices[officeID]; !exists {
		return store.ErrOfficeNotFound
	}

	delete(s.offices, officeID)

	return nil
}

// FindByIdentity returns the offices of owner with the given company, city and state.
func (s *OfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Office
	for _, office := range s.offices {
		if office.Owner == owner && office.Company == company && office.City == city && office.State == state {
			result = append(result, office.Clone())
		}
	}

	return result, nil
}

// ListByOwner returns a page of offices owned by owner in ID order.
// The cursor is the base58-encoded ID of the last office of the previous page.
func (s *OfficeStore) ListByOwner(ctx context.Context, owner, cursor string, limit int) (*store.OfficePage, error) {
	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*models.Office
	for _, office := range s.offices {
		if office.Owner != owner {
			continue
		}
		if after != nil && office.ID <= string(after) {
			continue
		}
		owned = append(owned, office)
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].ID < owned[j].ID
	})

	page := &store.OfficePage{}
	for i, office := range owned {
		if limit > 0 && i == limit {
			page.MoreResults = true
			break
		}
		page.Offices = append(page.Offices, office.Clone())
	}

	if n := len(page.Offices); n > 0 {
		page.EndCursor = store.EncodeCursor([]byte(page.Offices[n-1].ID))
	}

	return page, nil
}

var (
	_ store.OfficeStore   = (*OfficeStore)(nil)
	_ store.EmployeeStore = (*EmployeeStore)(nil)
)
