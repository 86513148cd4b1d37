package office

import (
	"context"
	"errors"
	"net/url"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// PageSize is the number of offices returned per list page.
const PageSize = 5

// Page is one page of a caller's offices.
// Next and Cursor are both empty on the last page.
type Page struct {
	Offices []*models.Office `json:"offices"`
	Next    string           `json:"next,omitempty"`
	Cursor  string           `json:"cursor,omitempty"`
}

// Paginator translates between the opaque cursor seen by callers and the
// storage backend's resume token. Tokens are never inspected, only passed through.
type Paginator struct {
	offices  store.OfficeStore
	pageSize int
}

// NewPaginator creates a paginator returning PageSize offices per page.
func NewPaginator(offices store.OfficeStore) *Paginator {
	return &Paginator{offices: offices, pageSize: PageSize}
}

// List returns the page of owner's offices that starts at cursor.
// cursor is the percent-encoded value received from the caller; collectionURL
// is the address the next link is built on.
func (p *Paginator) List(ctx context.Context, owner, cursor, collectionURL string) (*Page, error) {
	token, err := url.QueryUnescape(cursor)
	if err != nil {
		return nil, newError(KindInvalidCursor, OpList)
	}

	result, err := p.offices.ListByOwner(ctx, owner, token, p.pageSize)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, &Error{Kind: KindInvalidCursor, Op: OpList, Err: err}
		}
		return nil, &Error{Kind: KindOperationFailed, Op: OpList, Err: err}
	}

	page := &Page{Offices: result.Offices}
	if page.Offices == nil {
		page.Offices = []*models.Office{}
	}

	if result.MoreResults {
		encoded := url.QueryEscape(result.EndCursor)
		page.Next = collectionURL + "?cursor=" + encoded
		page.Cursor = encoded
	}

	return page, nil
}
