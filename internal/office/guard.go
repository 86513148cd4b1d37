package office

import "github.com/wolfeidau/offices/internal/models"

// unownedIsUnrestricted reports whether a record without an owner may be
// acted on by any authenticated caller. Offices written before ownership was
// recorded have no owner and stay reachable this way.
func unownedIsUnrestricted(owner string) bool {
	return owner == ""
}

// Authorize decides whether caller may act on a record owned by owner.
func Authorize(owner, caller string) error {
	if unownedIsUnrestricted(owner) {
		return nil
	}
	if owner != caller {
		return newError(KindForbidden, "")
	}
	return nil
}

// AuthorizeLink decides whether caller may link or unlink employee and office.
// Both records must be owned by caller; the unowned rule does not apply here.
func AuthorizeLink(office *models.Office, employee *models.Employee, caller string) error {
	if office.Owner != caller || employee.Owner != caller {
		return newError(KindForbidden, "")
	}
	return nil
}
