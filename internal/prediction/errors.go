package prediction

import "errors"

// ErrorKind classifies a failed call once, at the client boundary, so
// downstream code never re-inspects raw transport errors.
type ErrorKind int

const (
	// ErrTransport covers network failures, timeouts, and malformed
	// responses: anything that happened before a structured answer arrived.
	ErrTransport ErrorKind = iota

	// ErrRemote is a business-rule rejection from the service, carrying a
	// detail message meant to be shown verbatim.
	ErrRemote
)

// Error is the single error type returned by the client.
type Error struct {
	Kind   ErrorKind
	Detail string
	err    error // underlying cause, transport only
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.err
}

// IsRemote reports whether err is a service-side rejection whose detail
// should be surfaced to the user as-is.
func IsRemote(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == ErrRemote
}

// NewRemoteError builds a Remote classification. Exposed for fakes that
// stand in for the client.
func NewRemoteError(detail string) *Error {
	return &Error{Kind: ErrRemote, Detail: detail}
}

// NewTransportError builds a Transport classification.
func NewTransportError(detail string) *Error {
	return &Error{Kind: ErrTransport, Detail: detail}
}

func remoteError(detail string) *Error {
	return &Error{Kind: ErrRemote, Detail: detail}
}

func transportError(detail string, cause error) *Error {
	return &Error{Kind: ErrTransport, Detail: detail, err: cause}
}
