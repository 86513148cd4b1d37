package server

import (
	"errors"
	"net/http"

	"github.com/wolfeidau/offices/internal/office"
)

const (
	msgUnauthorized     = "Invalid token..."
	msgNotAcceptable    = "Server only accepts application/json data."
	msgInvalidJSON      = "The request object is not valid JSON"
	msgMethodNotAllowed = "Method Not Allowed"

	msgInvalidAttribute  = "The request object contains an invalid attribute"
	msgMissingAttributes = "The request object is missing at least one of the required attributes"
	msgConflict          = "The company provided in request already exists for this user"
	msgOfficeNotFound    = "No office with this office_id exists"
	msgForbidden         = "Forbidden"
	msgLinkNotFound      = "The specified employee and/or office does not exist"
	msgAlreadyAssigned   = "The employee is already assigned a company"
	msgNotAssigned       = "No office with this office_id is loaded with the employee with this employee_id"
	msgInvalidCursor     = "The cursor is not valid"
)

// fieldLabels are the attribute names as they appear in error messages.
var fieldLabels = map[string]string{
	office.FieldCompany:        "company",
	office.FieldCity:           "city",
	office.FieldState:          "state",
	office.FieldGeneralManager: "general manager",
	office.FieldPhoneNumber:    "phone number",
}

// statusFor maps an error returned by the office service to the response
// status and message.
func statusFor(err error) (int, string) {
	op := office.OpOf(err)

	switch office.KindOf(err) {
	case office.KindInvalidAttribute:
		return http.StatusBadRequest, msgInvalidAttribute
	case office.KindMissingAttributes:
		return http.StatusBadRequest, msgMissingAttributes
	case office.KindInvalidField:
		return http.StatusBadRequest, "The request object's " + fieldLabel(err) + " attribute is not valid"
	case office.KindConflict:
		return http.StatusForbidden, msgConflict
	case office.KindForbidden:
		return http.StatusForbidden, msgForbidden
	case office.KindNotFound:
		if op == office.OpAssign || op == office.OpUnassign {
			return http.StatusNotFound, msgLinkNotFound
		}
		return http.StatusNotFound, msgOfficeNotFound
	case office.KindAlreadyAssigned:
		return http.StatusForbidden, msgAlreadyAssigned
	case office.KindNotAssigned:
		return http.StatusNotFound, msgNotAssigned
	case office.KindInvalidCursor:
		return http.StatusBadRequest, msgInvalidCursor
	default:
		return http.StatusBadRequest, failureMessage(op)
	}
}

func fieldLabel(err error) string {
	var field string
	var oerr *office.Error
	if errors.As(err, &oerr) {
		field = oerr.Field
	}
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

func failureMessage(op office.Op) string {
	switch op {
	case office.OpCreate:
		return "Failed to create asset"
	case office.OpDelete:
		return "Failed to delete asset"
	case office.OpGet, office.OpList:
		return "Failed to retrieve asset"
	default:
		return "Failed to edit asset"
	}
}
