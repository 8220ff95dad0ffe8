package status

import "strconv"

// Code is a numeric HTTP status code. Codes taken from asis files are never
// range-checked, so the type is wide enough to carry any run of digits (wrapping
// on overflow).
type Code uint64

// Codes the server itself may respond with. Asis files are free to use any other.
const (
	OK                  Code = 200 // RFC 9110, 15.3.1
	Forbidden           Code = 403 // RFC 9110, 15.5.4
	NotFound            Code = 404 // RFC 9110, 15.5.5
	InternalServerError Code = 500 // RFC 9110, 15.6.1
	NotImplemented      Code = 501 // RFC 9110, 15.6.2
)

// KnownCodes lists every code the server may produce on its own.
var KnownCodes = []Code{OK, Forbidden, NotFound, InternalServerError, NotImplemented}

// AppendCode appends the decimal representation of the code to buf.
func AppendCode(buf []byte, code Code) []byte {
	return strconv.AppendUint(buf, uint64(code), 10)
}

func StringCode(code Code) string {
	return strconv.FormatUint(uint64(code), 10)
}
