package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// OfficeStore implements store.OfficeStore on Badger.
//
// Each office is stored under office/<id> with an empty owner index entry at
// office_owner/<owner>/<id>; both are written in one transaction so the index
// never drifts from the record. Paging walks the owner index in key order.
type OfficeStore struct {
	db *DB
}

// NewOfficeStore creates an office store on db.
func NewOfficeStore(db *DB) *OfficeStore {
	return &OfficeStore{db: db}
}

// Create assigns an ID to the office and stores it.
func (s *OfficeStore) Create(ctx context.Context, office *models.Office) error {
	id, err := store.NewID()
	if err != nil {
		return err
	}

	stored := office.Clone()
	stored.ID = id

	value, err := cbor.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode office: %w", err)
	}

	err = s.db.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Set(officeKey(id), value); err != nil {
			return err
		}
		return txn.Set(ownerIndexKey(stored.Owner, id), nil)
	})
	if err != nil {
		return fmt.Errorf("failed to create office: %w", err)
	}

	office.ID = id
	return nil
}

// Get retrieves an office by ID.
func (s *OfficeStore) Get(ctx context.Context, officeID string) (*models.Office, error) {
	var office *models.Office

	err := s.db.db.View(func(txn *badger.Txn) error {
		var err error
		office, err = getOffice(txn, officeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return office, nil
}

// Put overwrites an existing office, moving its owner index entry if needed.
func (s *OfficeStore) Put(ctx context.Context, office *models.Office) error {
	value, err := cbor.Marshal(office)
	if err != nil {
		return fmt.Errorf("failed to encode office: %w", err)
	}

	return s.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := getOffice(txn, office.ID)
		if err != nil {
			return err
		}

		if existing.Owner != office.Owner {
			if err := txn.Delete(ownerIndexKey(existing.Owner, office.ID)); err != nil {
				return err
			}
		}

		if err := txn.Set(officeKey(office.ID), value); err != nil {
			return err
		}
		return txn.Set(ownerIndexKey(office.Owner, office.ID), nil)
	})
}

// Delete deletes an office and its owner index entry.
func (s *OfficeStore) Delete(ctx context.Context, officeID string) error {
	return s.db.update(ctx, func(txn *badger.Txn) error {
		existing, err := getOffice(txn, officeID)
		if err != nil {
			return err
		}

		if err := txn.Delete(ownerIndexKey(existing.Owner, officeID)); err != nil {
			return err
		}
		return txn.Delete(officeKey(officeID))
	})
}

// FindByIdentity scans the owner's offices for a matching company, city and state.
func (s *OfficeStore) FindByIdentity(ctx context.Context, owner, company, city, state string) ([]*models.Office, error) {
	var result []*models.Office

	err := s.db.db.View(func(txn *badger.Txn) error {
		prefix := ownerPrefix(owner)

		it := txn.NewIterator(keyOnly(prefix))
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			office, err := getOffice(txn, idFromIndexKey(prefix, it.Item().Key()))
			if err != nil {
				return err
			}
			if office.Company == company && office.City == city && office.State == state {
				result = append(result, office)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan offices: %w", err)
	}

	return result, nil
}

// ListByOwner returns a page of the owner's offices in index key order.
// The cursor is the base58-encoded index key of the last office of the previous page.
func (s *OfficeStore) ListByOwner(ctx context.Context, owner, cursor string, limit int) (*store.OfficePage, error) {
	prefix := ownerPrefix(owner)

	after, err := store.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if after != nil && !bytes.HasPrefix(after, prefix) {
		return nil, fmt.Errorf("%w: cursor belongs to another listing", store.ErrInvalidCursor)
	}

	page := &store.OfficePage{}

	err = s.db.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(keyOnly(prefix))
		defer it.Close()

		start := prefix
		if after != nil {
			start = after
		}

		var lastKey []byte
		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if after != nil && bytes.Equal(key, after) {
				continue
			}

			if limit > 0 && len(page.Offices) == limit {
				page.MoreResults = true
				break
			}

			office, err := getOffice(txn, idFromIndexKey(prefix, key))
			if err != nil {
				return err
			}
			page.Offices = append(page.Offices, office)
			lastKey = key
		}

		page.EndCursor = store.EncodeCursor(lastKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list offices: %w", err)
	}

	return page, nil
}

func getOffice(txn *badger.Txn, id string) (*models.Office, error) {
	item, err := txn.Get(officeKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrOfficeNotFound
		}
		return nil, fmt.Errorf("failed to read office: %w", err)
	}

	office := &models.Office{}
	err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, office)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode office: %w", err)
	}

	return office, nil
}

func keyOnly(prefix []byte) badger.IteratorOptions {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	return opts
}

var (
	_ store.OfficeStore   = (*OfficeStore)(nil)
	_ store.EmployeeStore = (*EmployeeStore)(nil)
)
