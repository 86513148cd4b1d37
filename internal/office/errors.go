package office

import "errors"

// Kind classifies the outcome of a failed office operation.
type Kind string

const (
	KindInvalidAttribute  Kind = "invalid attribute"
	KindMissingAttributes Kind = "missing attributes"
	KindInvalidField      Kind = "invalid field"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not found"
	KindForbidden         Kind = "forbidden"
	KindAlreadyAssigned   Kind = "already assigned"
	KindNotAssigned       Kind = "not assigned"
	KindInvalidCursor     Kind = "invalid cursor"
	KindOperationFailed   Kind = "operation failed"
)

// Op names the operation an error was produced by.
type Op string

const (
	OpCreate   Op = "create"
	OpGet      Op = "get"
	OpList     Op = "list"
	OpReplace  Op = "replace"
	OpPatch    Op = "patch"
	OpDelete   Op = "delete"
	OpAssign   Op = "assign"
	OpUnassign Op = "unassign"
)

// Error is returned by every operation in this package.
type Error struct {
	Kind  Kind
	Op    Op
	Field string // attribute name for KindInvalidField and KindInvalidAttribute
	Err   error  // underlying cause, usually a storage error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = string(e.Op) + ": " + msg
	}
	if e.Field != "" {
		msg += " " + e.Field
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err. Errors not produced by this package are
// reported as KindOperationFailed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr.Kind
	}
	return KindOperationFailed
}

// OpOf returns the Op recorded on err, if any.
func OpOf(err error) Op {
	var oerr *Error
	if errors.As(err, &oerr) {
		return oerr.Op
	}
	return ""
}

func newError(kind Kind, op Op) *Error {
	return &Error{Kind: kind, Op: op}
}

func withOp(err error, op Op) error {
	var oerr *Error
	if errors.As(err, &oerr) && oerr.Op == "" {
		oerr.Op = op
	}
	return err
}
