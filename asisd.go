package asisd

import (
	"context"
	"log/slog"

	"github.com/indigo-web/asisd/config"
	"github.com/indigo-web/asisd/internal/server/http"
	"github.com/indigo-web/asisd/transport"
	"golang.org/x/sync/errgroup"
)

// App serves asis files from the configured root over a unix socket.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	hooks  hooks
}

// New returns a new App instance. A nil config means the defaults.
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	return &App{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// Logger replaces the default slog logger.
func (a *App) Logger(logger *slog.Logger) *App {
	a.logger = logger
	return a
}

// NotifyOnStart calls the callback once the socket is bound, so connections can be
// made from that moment on.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback once the socket is closed and all the connections
// are served.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Serve binds the socket and serves until the context is done, then waits for the
// connections in flight. Bind failures are returned immediately.
func (a *App) Serve(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	unix := transport.NewUnix(a.logger)
	if err := unix.Bind(a.cfg.NET.SocketPath); err != nil {
		return err
	}

	return a.run(ctx, unix, http.NewServer(a.cfg, a.logger))
}

func (a *App) run(ctx context.Context, t transport.Transport, server *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return t.Listen(a.cfg.NET, server.Serve)
	})
	g.Go(func() error {
		<-ctx.Done()
		t.Stop()
		return nil
	})

	a.logger.Info("awaiting requests",
		slog.String("socket", a.cfg.NET.SocketPath),
		slog.String("root", a.cfg.FS.Root),
	)
	callIfNotNil(a.hooks.OnStart)

	err := g.Wait()
	t.Wait()
	t.Close()
	callIfNotNil(a.hooks.OnStop)

	return err
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
