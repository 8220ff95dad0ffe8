package transport

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/asisd/config"
)

const maxAcceptBackoff = time.Second

// Unix accepts connections on a unix stream socket, serving each of them in its own
// goroutine. Connections share nothing, so no synchronization is needed between them.
type Unix struct {
	l      *net.UnixListener
	logger *slog.Logger
	wg     *sync.WaitGroup
	stop   *atomic.Bool
}

func NewUnix(logger *slog.Logger) *Unix {
	return &Unix{
		logger: logger,
		wg:     new(sync.WaitGroup),
		stop:   new(atomic.Bool),
	}
}

// Bind removes whatever stale socket is left at the path and listens on it. The
// socket file is removed again once the listener is closed.
func (u *Unix) Bind(path string) (err error) {
	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	u.l, err = net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return err
	}

	u.l.SetUnlinkOnClose(true)
	return nil
}

// Listen runs the accept loop until Stop is called. Failed accepts are logged and
// retried with a growing delay.
func (u *Unix) Listen(cfg config.NET, cb func(conn net.Conn)) error {
	var backoff time.Duration

	for !u.stop.Load() {
		err := u.l.SetDeadline(time.Now().Add(cfg.AcceptLoopInterruptPeriod.Std()))
		if err != nil {
			return err
		}

		conn, err := u.l.Accept()
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, net.ErrClosed):
				return err
			}

			backoff = min(max(2*backoff, 5*time.Millisecond), maxAcceptBackoff)
			u.logger.Warn("accept failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", backoff),
			)
			time.Sleep(backoff)
			continue
		}

		backoff = 0
		u.wg.Add(1)
		go func(conn net.Conn) {
			defer u.wg.Done()
			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (u *Unix) Stop() {
	u.stop.Store(true)
}

func (u *Unix) Close() {
	_ = u.l.Close()
}

func (u *Unix) Wait() {
	u.wg.Wait()
}
