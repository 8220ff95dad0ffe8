package asisd

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/indigo-web/asisd/config"
	"github.com/stretchr/testify/require"
)

func request(t *testing.T, socket, raw string) string {
	conn, err := net.Dial("unix", socket)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)
	data, err := io.ReadAll(conn)
	require.NoError(t, err)

	return string(data)
}

func TestApp(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "www")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "foo"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "foo", "index.asis"),
		[]byte("Status: 200\r\nContent-Type: text/plain\r\n\r\nHello!"),
		0o644,
	))
	require.NoError(t, os.WriteFile(filepath.Join(root, "teapot.asis"), []byte("Status: 418\n\n"), 0o644))

	cfg := config.Default()
	cfg.NET.SocketPath = filepath.Join(dir, "socket")
	cfg.NET.AcceptLoopInterruptPeriod = config.Duration(50 * time.Millisecond)
	cfg.FS.Root = root

	ctx, cancel := context.WithCancel(context.Background())
	started, stopped := make(chan struct{}), make(chan struct{})
	app := New(cfg).
		Logger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		NotifyOnStart(func() { close(started) }).
		NotifyOnStop(func() { close(stopped) })

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Serve(ctx)
	}()
	<-started

	t.Run("index", func(t *testing.T) {
		resp := request(t, cfg.NET.SocketPath, "GET /foo HTTP/1.0\r\nHost: localhost\r\n\r\n")
		require.Equal(t, "HTTP/1.0 200 -\r\nContent-Type: text/plain\r\n\r\nHello!\r\n\r\n", resp)
	})

	t.Run("direct", func(t *testing.T) {
		resp := request(t, cfg.NET.SocketPath, "GET /teapot HTTP/1.0\r\n\r\n")
		require.Equal(t, "HTTP/1.0 418 -\r\n\n\r\n\r\n", resp)
	})

	t.Run("not found", func(t *testing.T) {
		resp := request(t, cfg.NET.SocketPath, "GET /missing HTTP/1.0\r\n\r\n")
		require.Equal(t, "HTTP/1.0 404 Not Found\r\n\r\n404 Not Found\r\n", resp)
	})

	t.Run("forbidden", func(t *testing.T) {
		resp := request(t, cfg.NET.SocketPath, "GET /../www/foo HTTP/1.0\r\n\r\n")
		require.Equal(t, "HTTP/1.0 403 invalid location\r\n\r\n403 invalid location\r\n", resp)
	})

	t.Run("not implemented", func(t *testing.T) {
		resp := request(t, cfg.NET.SocketPath, "POST /foo HTTP/1.0\r\n\r\n")
		require.Equal(t, "HTTP/1.0 501 Request method not implemented\r\n\r\n501 Request method not implemented\r\n", resp)
	})

	cancel()
	require.NoError(t, <-errCh)
	<-stopped

	_, err := os.Stat(cfg.NET.SocketPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApp_BadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.NET.ReadBufferSize = 4
	require.Error(t, New(cfg).Serve(context.Background()))
}

func TestApp_BindFailure(t *testing.T) {
	cfg := config.Default()
	cfg.NET.SocketPath = filepath.Join(t.TempDir(), "no", "such", "dir", "socket")
	require.Error(t, New(cfg).Serve(context.Background()))
}
