package http1

import (
	"bufio"
	"bytes"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/indigo-web/asisd/http/status"
	"github.com/indigo-web/asisd/internal/asis"
	"github.com/indigo-web/asisd/transport/dummy"
	"github.com/stretchr/testify/require"
)

func getSerializer(conn *dummy.Conn) *Serializer {
	return NewSerializer(conn, make([]byte, 0, 1024), make([]byte, 1024))
}

type trackedFile struct {
	io.Reader
	closed bool
}

func (t *trackedFile) Close() error {
	t.closed = true
	return nil
}

func newAsis(content string) (*asis.File, *trackedFile) {
	tracked := &trackedFile{Reader: strings.NewReader(content)}
	return asis.NewFile(tracked), tracked
}

func TestSerializer_WriteError(t *testing.T) {
	tcs := []struct {
		Err  error
		Want string
	}{
		{status.ErrNotFound, "HTTP/1.0 404 Not Found\r\n\r\n404 Not Found\r\n"},
		{status.ErrInvalidLocation, "HTTP/1.0 403 invalid location\r\n\r\n403 invalid location\r\n"},
		{status.ErrRequestTooLarge, "HTTP/1.0 403 \r\n\r\n403 \r\n"},
		{status.ErrMethodNotImplemented, "HTTP/1.0 501 Request method not implemented\r\n\r\n501 Request method not implemented\r\n"},
		{status.ErrNoStatusLine, "HTTP/1.0 500 no status line\r\n\r\n500 no status line\r\n"},
		{status.ErrInvalidStatusCode, "HTTP/1.0 500 invalid status code\r\n\r\n500 invalid status code\r\n"},
		{status.ErrInvalidStatusLine, "HTTP/1.0 500 invalid status line\r\n\r\n500 invalid status line\r\n"},
	}

	for _, tc := range tcs {
		t.Run(tc.Err.Error(), func(t *testing.T) {
			conn := dummy.NewConn()
			s := getSerializer(conn)
			require.NoError(t, s.WriteError(tc.Err))
			require.Equal(t, tc.Want, string(conn.Data))
			require.True(t, conn.Closed())

			// nothing can be written after an error response
			require.Error(t, s.WriteError(status.ErrNotFound))
			file, tracked := newAsis("Status: 200\n\n")
			require.Error(t, s.WriteAsis(file))
			require.True(t, tracked.closed)
			require.Equal(t, tc.Want, string(conn.Data))
			require.Equal(t, 1, conn.Closes())
		})
	}

	t.Run("not an http error", func(t *testing.T) {
		conn := dummy.NewConn()
		require.Error(t, getSerializer(conn).WriteError(io.ErrUnexpectedEOF))
		require.Empty(t, conn.Data)
		require.True(t, conn.Closed())
	})
}

func TestSerializer_WriteAsis(t *testing.T) {
	stdreq, err := stdhttp.NewRequest(stdhttp.MethodGet, "/", nil)
	require.NoError(t, err)

	t.Run("well-formed", func(t *testing.T) {
		const content = "Status: 200\r\nContent-Type: text/plain\r\n\r\nHello, world!"
		conn := dummy.NewConn()
		file, tracked := newAsis(content)
		require.NoError(t, getSerializer(conn).WriteAsis(file))
		require.Equal(t,
			"HTTP/1.0 200 -\r\nContent-Type: text/plain\r\n\r\nHello, world!\r\n\r\n",
			string(conn.Data),
		)
		require.True(t, tracked.closed)
		require.True(t, conn.Closed())

		resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(conn.Data)), stdreq)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "Hello, world!\r\n\r\n", string(body))
	})

	t.Run("file already ends with a blank line", func(t *testing.T) {
		conn := dummy.NewConn()
		file, _ := newAsis("Status: 301\nLocation: /elsewhere\n\n")
		require.NoError(t, getSerializer(conn).WriteAsis(file))
		require.Equal(t, "HTTP/1.0 301 -\r\nLocation: /elsewhere\n\n\r\n\r\n", string(conn.Data))
	})

	t.Run("malformed", func(t *testing.T) {
		conn := dummy.NewConn()
		file, tracked := newAsis("Nope: 200\n\nsecret")
		require.NoError(t, getSerializer(conn).WriteAsis(file))
		require.Equal(t, "HTTP/1.0 500 no status line\r\n\r\n500 no status line\r\n", string(conn.Data))
		require.True(t, tracked.closed)
		require.True(t, conn.Closed())
	})

	t.Run("invalid status code", func(t *testing.T) {
		conn := dummy.NewConn()
		file, _ := newAsis("Status: 2x0\n\nsecret")
		require.NoError(t, getSerializer(conn).WriteAsis(file))
		require.Equal(t, "HTTP/1.0 500 invalid status code\r\n\r\n500 invalid status code\r\n", string(conn.Data))
	})

	t.Run("idempotent", func(t *testing.T) {
		const content = "Status: 200\nX-Foo: bar\n\nbody"
		var responses [2][]byte
		for i := range responses {
			conn := dummy.NewConn()
			file, _ := newAsis(content)
			require.NoError(t, getSerializer(conn).WriteAsis(file))
			responses[i] = conn.Data
		}

		require.Equal(t, responses[0], responses[1])
	})
}
