package http1

import (
	"bytes"

	"github.com/indigo-web/asisd/http/status"
	"github.com/indigo-web/asisd/internal/parser"
	"github.com/indigo-web/utils/uf"
)

var methodToken = []byte("GET ")

// requestsParser extracts the request target out of the request line and skips
// everything until the blank line terminating the headers. The whole request line
// must be presented in the very first chunk, otherwise the request is rejected:
// the line is never spanned across chunks.
//
// Headers are not parsed. The terminator is found by remembering the last
// significant byte: a LF right after a LF ends the headers, and a CR following
// a LF isn't remembered, so CRLFCRLF is seen as LFLF.
type requestsParser struct {
	target      []byte
	err         error
	state       targetState
	prev        byte
	headersDone bool
}

// NewRequestsParser returns a parser with preallocated storage for the target. The
// target can never exceed a single read, so the read buffer size is a natural
// capacity.
func NewRequestsParser(targetPrealloc int) parser.RequestsParser {
	return &requestsParser{
		target: make([]byte, 0, targetPrealloc),
		state:  eTargetNotStarted,
	}
}

func (p *requestsParser) Parse(chunk []byte) (parser.RequestState, error) {
	switch {
	case p.err != nil:
		return parser.Error, p.err
	case p.headersDone:
		return parser.HeadersCompleted, nil
	case len(chunk) == 0:
		return parser.Pending, nil
	}

	if p.state == eTargetNotStarted {
		if err := p.parseTarget(chunk); err != nil {
			p.err = err
			return parser.Error, err
		}
	}

	for _, char := range chunk {
		if char == '\n' && p.prev == '\n' {
			p.headersDone = true
			return parser.HeadersCompleted, nil
		}

		if p.prev != '\n' || char != '\r' {
			p.prev = char
		}
	}

	return parser.Pending, nil
}

func (p *requestsParser) parseTarget(chunk []byte) error {
	if !bytes.HasPrefix(chunk, methodToken) {
		return status.ErrMethodNotImplemented
	}

	p.state = eTargetInProgress
	rest := chunk[len(methodToken):]
	sp := bytes.IndexByte(rest, ' ')
	if sp == -1 {
		return status.ErrRequestTooLarge
	}

	p.target = append(p.target[:0], rest[:sp]...)
	p.state = eTargetComplete

	return nil
}

// Target returns the captured request target. The string shares memory with the
// parser, so it's valid only until Reset.
func (p *requestsParser) Target() string {
	if p.state != eTargetComplete {
		return ""
	}

	return uf.B2S(p.target)
}

func (p *requestsParser) HeadersCompleted() bool {
	return p.headersDone
}

func (p *requestsParser) Reset() {
	p.target = p.target[:0]
	p.err = nil
	p.state = eTargetNotStarted
	p.prev = 0
	p.headersDone = false
}
