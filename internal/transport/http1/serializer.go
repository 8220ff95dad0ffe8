package http1

import (
	"io"
	"net"

	"github.com/indigo-web/asisd/http/status"
	"github.com/indigo-web/asisd/internal/asis"
)

var (
	protocol = []byte("HTTP/1.0 ")
	crlf     = []byte("\r\n")
	// finalizer is appended to every asis response, even if the file ends with a
	// blank line already, because there is no other way to delimit the body.
	finalizer = []byte("\r\n\r\n")
)

// Serializer is the only thing writing into a connection. Each response it writes
// is final: the connection is closed right after, and any later write is refused.
type Serializer struct {
	conn     io.WriteCloser
	buff     []byte
	fileBuff []byte
	closed   bool
}

func NewSerializer(conn io.WriteCloser, buff, fileBuff []byte) *Serializer {
	return &Serializer{
		conn:     conn,
		buff:     buff[:0],
		fileBuff: fileBuff,
	}
}

// WriteError renders the error as `HTTP/1.0 <code> <reason>`, an empty line and the
// same `<code> <reason>` line as a body, and closes the connection. Errors that
// can't be reported to the peer just close the connection.
func (s *Serializer) WriteError(err error) error {
	if s.closed {
		return net.ErrClosed
	}

	defer s.Close()

	httpErr, ok := status.AsHTTPError(err)
	if !ok {
		return err
	}

	s.buff = append(s.buff[:0], protocol...)
	s.buff = status.AppendCode(s.buff, httpErr.Code)
	s.buff = append(s.buff, ' ')
	s.buff = append(s.buff, httpErr.Message...)
	s.buff = append(s.buff, crlf...)
	line := s.buff[len(protocol):]
	s.buff = append(s.buff, crlf...)
	s.buff = append(s.buff, line...)

	_, werr := s.conn.Write(s.buff)
	return werr
}

// WriteAsis transcodes the file into the connection and terminates it with a blank
// line. The file is closed in any case. In case the file is malformed, the error
// response is written instead, as nothing was sent yet at that moment.
func (s *Serializer) WriteAsis(file *asis.File) error {
	if s.closed {
		_ = file.Close()
		return net.ErrClosed
	}

	err := file.Transcode(s.conn, s.fileBuff)
	_ = file.Close()
	if err != nil {
		if _, ok := status.AsHTTPError(err); ok {
			return s.WriteError(err)
		}

		_ = s.Close()
		return err
	}

	defer s.Close()

	_, err = s.conn.Write(finalizer)
	return err
}

// Close closes the connection. Calling it more than once is fine.
func (s *Serializer) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	return s.conn.Close()
}
