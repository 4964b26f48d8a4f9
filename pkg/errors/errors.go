package errors

import "fmt"

// ErrorKind classifies failures originating from provider APIs and the
// dispatch protocol into a single taxonomy shared by all providers.
type ErrorKind string

const (
	KindTimeout             ErrorKind = "TIMEOUT"
	KindUnreachable         ErrorKind = "UNREACHABLE"
	KindAuthFailed          ErrorKind = "AUTH_FAILED"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindProviderServerError ErrorKind = "PROVIDER_SERVER_ERROR"
	KindProviderRejected    ErrorKind = "PROVIDER_REJECTED"
	KindInvalidState        ErrorKind = "INVALID_STATE"
	KindMappingNotFound     ErrorKind = "MAPPING_NOT_FOUND"
)

// ErrProvider is a normalized provider or transport failure. Message is
// suitable for direct display.
type ErrProvider struct {
	Provider string
	Kind     ErrorKind
	Message  string
}

func (e *ErrProvider) Error() string {
	return e.Message
}

// ErrValidation reports a local, pre-network validation failure naming the
// offending field.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ErrInvalidStateTransition is returned when a dispatch lifecycle operation
// is attempted on an order whose state does not permit it.
type ErrInvalidStateTransition struct {
	From string
	To   string
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// Kind returns the taxonomy classification for a dispatch protocol violation.
func (e *ErrInvalidStateTransition) Kind() ErrorKind {
	return KindInvalidState
}

// ErrNotFound represents a resource not found error
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrDuplicateMapping is returned when a second mapping is created for the
// same (local product, provider) pair.
type ErrDuplicateMapping struct {
	LocalProductID string
	Provider       string
}

func (e *ErrDuplicateMapping) Error() string {
	return fmt.Sprintf("a mapping already exists for product %s and provider %s", e.LocalProductID, e.Provider)
}

// ErrUnauthorized represents an authentication failure
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}
