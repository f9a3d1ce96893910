package negotiation

import (
	"errors"
	"fmt"
)

// Error codes of the negotiation engine. Handlers map them onto HTTP
// statuses; everything except state_conflict is rejected before any write.
const (
	CodeUnauthorized         = "unauthorized"
	CodeIllegalTransition    = "illegal_transition"
	CodeStateConflict        = "state_conflict"
	CodeValidation           = "validation_error"
	CodeDuplicateAppointment = "duplicate_appointment"
	CodeNotFound             = "not_found"
)

// Error is the typed failure of a negotiation action.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode extracts the negotiation error code, or "" for foreign errors.
func ErrorCode(err error) string {
	var ne *Error
	if errors.As(err, &ne) {
		return ne.Code
	}
	return ""
}

// IsCode reports whether err is a negotiation error with the given code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}
