package usecase

// ErrorKind classifies service failures so handlers can map them to
// transport status codes without string matching.
type ErrorKind int

const (
	ErrorKindNotFound ErrorKind = iota + 1
	ErrorKindInvalidRequest
	ErrorKindConflict
	ErrorKindForbidden
	ErrorKindInvalidState
)

// Error is the failure type returned by services. All validation and
// guard failures are caller errors and are surfaced synchronously, never
// retried.
type Error struct {
	Kind    ErrorKind
	Message string
	// BlockedRanges is set only on ErrorKindConflict, one entry per
	// conflicting reservation, e.g. "2026-03-01 to 2026-03-05".
	BlockedRanges []string
}

func (e *Error) Error() string {
	return e.Message
}

func errNotFound(message string) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: message}
}

func errInvalidRequest(message string) *Error {
	return &Error{Kind: ErrorKindInvalidRequest, Message: message}
}

func errConflict(message string, blockedRanges []string) *Error {
	return &Error{Kind: ErrorKindConflict, Message: message, BlockedRanges: blockedRanges}
}

func errForbidden(message string) *Error {
	return &Error{Kind: ErrorKindForbidden, Message: message}
}

func errInvalidState(message string) *Error {
	return &Error{Kind: ErrorKindInvalidState, Message: message}
}
