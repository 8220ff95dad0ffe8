package parser

// RequestsParser consumes a request in chunks of arbitrary size. Target() is
// meaningful even if the headers were never completed: a peer closing the
// connection mid-headers leaves whatever target was captured so far.
type RequestsParser interface {
	Parse(chunk []byte) (RequestState, error)
	Target() string
	HeadersCompleted() bool
	Reset()
}
