package asis

import (
	"bytes"

	"github.com/indigo-web/asisd/http/status"
)

var (
	statusToken    = []byte("Status: ")
	responseProto  = []byte("HTTP/1.0 ")
	responseReason = []byte(" -\r\n")
)

// maxStatusLineLen is the longest line AppendStatusLine may produce, as the code
// has at most 20 decimal digits.
const maxStatusLineLen = len("HTTP/1.0 ") + 20 + len(" -\r\n")

// ParseStatusLine decodes the `Status: <digits>` line which must open the chunk. It
// returns the code and the rest of the chunk right after the terminating LF. A bare
// CR anywhere in the digits is skipped. The line must be terminated within the chunk.
//
// The code isn't range-checked: it just keeps growing, wrapping on overflow.
func ParseStatusLine(chunk []byte) (code status.Code, rest []byte, err error) {
	if !bytes.HasPrefix(chunk, statusToken) {
		return 0, nil, status.ErrNoStatusLine
	}

	for i := len(statusToken); i < len(chunk); i++ {
		switch char := chunk[i]; {
		case char == '\n':
			return code, chunk[i+1:], nil
		case char == '\r':
		case char >= '0' && char <= '9':
			code = code*10 + status.Code(char-'0')
		default:
			return 0, nil, status.ErrInvalidStatusCode
		}
	}

	return 0, nil, status.ErrInvalidStatusLine
}

// AppendStatusLine renders an HTTP/1.0 response line with a placeholder reason.
func AppendStatusLine(buff []byte, code status.Code) []byte {
	buff = append(buff, responseProto...)
	buff = status.AppendCode(buff, code)

	return append(buff, responseReason...)
}
