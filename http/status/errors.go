package status

import "errors"

// Kind classifies protocol-level failures. Every kind is terminal for the
// connection it happened on.
type Kind uint8

const (
	KindUnsupportedMethod Kind = iota + 1
	KindRequestTooLarge
	KindForbidden
	KindNotFound
	KindMalformedAsisFile
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedMethod:
		return "unsupported method"
	case KindRequestTooLarge:
		return "request too large"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindMalformedAsisFile:
		return "malformed asis file"
	default:
		return "unknown"
	}
}

// HTTPError is an error which is reported to the peer. Message is the reason
// phrase used both in the status line and in the body, and may be empty.
type HTTPError struct {
	Message string
	Kind    Kind
	Code    Code
}

func NewError(kind Kind, code Code, message string) error {
	return HTTPError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	if len(h.Message) == 0 {
		return h.Kind.String()
	}

	return h.Message
}

// AsHTTPError unwraps err into an HTTPError, if it is (or wraps) one.
func AsHTTPError(err error) (HTTPError, bool) {
	var httpErr HTTPError
	ok := errors.As(err, &httpErr)

	return httpErr, ok
}

var (
	ErrMethodNotImplemented = NewError(KindUnsupportedMethod, NotImplemented, "Request method not implemented")
	// ErrRequestTooLarge is reported when the request line doesn't fit into a single read.
	// The reason phrase is intentionally left empty.
	ErrRequestTooLarge   = NewError(KindRequestTooLarge, Forbidden, "")
	ErrInvalidLocation   = NewError(KindForbidden, Forbidden, "invalid location")
	ErrNotFound          = NewError(KindNotFound, NotFound, "Not Found")
	ErrNoStatusLine      = NewError(KindMalformedAsisFile, InternalServerError, "no status line")
	ErrInvalidStatusCode = NewError(KindMalformedAsisFile, InternalServerError, "invalid status code")
	ErrInvalidStatusLine = NewError(KindMalformedAsisFile, InternalServerError, "invalid status line")
)
