package parser

// RequestState is a general state of the parser that tells a caller about
// current state of the request. It may be incomplete (Pending), complete
// (HeadersCompleted), and completed with an error (Error). Headers are only
// skipped, the request target is the only thing the parser extracts.
type RequestState uint8

const (
	Pending RequestState = iota + 1
	HeadersCompleted
	Error
)

func (r RequestState) String() string {
	switch r {
	case Pending:
		return "pending"
	case HeadersCompleted:
		return "headers completed"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
