package dummy

import (
	"io"
	"net"
	"time"
)

// Conn is a net.Conn which returns the chunks it was initialised with, one per
// read, and then io.EOF. Everything written is collected into Data.
type Conn struct {
	Data   []byte
	chunks [][]byte
	closes int
	nop    bool
}

func NewConn(chunks ...[]byte) *Conn {
	return &Conn{chunks: chunks}
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.closes > 0 {
		return 0, net.ErrClosed
	}

	if len(c.chunks) == 0 {
		return 0, io.EOF
	}

	n = copy(b, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closes > 0 {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.Data = append(c.Data, b...)
	}

	return len(b), nil
}

func (c *Conn) Close() error {
	c.closes++
	return nil
}

// Closed reports whether the connection was closed at least once.
func (c *Conn) Closed() bool {
	return c.closes > 0
}

// Closes returns how many times Close was called.
func (c *Conn) Closes() int {
	return c.closes
}

// Pending returns the chunks which were never read.
func (c *Conn) Pending() [][]byte {
	return c.chunks
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return nil
}

func (c *Conn) SetDeadline(t time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}
