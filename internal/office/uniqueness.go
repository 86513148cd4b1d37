package office

import (
	"context"
	"fmt"

	"github.com/wolfeidau/offices/internal/store"
)

// UniquenessChecker looks up offices sharing an owner-scoped identity.
//
// The check is a read followed later by a separate write, so two concurrent
// requests can both see no conflict and both commit. Backends do not carry a
// unique index on the identity because a partial patch is allowed to produce
// a duplicate.
type UniquenessChecker struct {
	offices store.OfficeStore
}

// NewUniquenessChecker creates a checker over offices.
func NewUniquenessChecker(offices store.OfficeStore) *UniquenessChecker {
	return &UniquenessChecker{offices: offices}
}

// FindConflict reports whether owner already has an office with company, city and state.
func (u *UniquenessChecker) FindConflict(ctx context.Context, owner, company, city, state string) (bool, error) {
	existing, err := u.offices.FindByIdentity(ctx, owner, company, city, state)
	if err != nil {
		return false, fmt.Errorf("failed to query offices by identity: %w", err)
	}
	return len(existing) > 0, nil
}
