package http

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/asisd/config"
	"github.com/indigo-web/asisd/internal/asis"
	"github.com/indigo-web/asisd/internal/parser"
	"github.com/indigo-web/asisd/internal/parser/http1"
	"github.com/indigo-web/asisd/internal/pathlib"
	"github.com/indigo-web/asisd/internal/transport"
	http1transport "github.com/indigo-web/asisd/internal/transport/http1"
)

const connIDLength = 8

// errorBuffSize fits every error response the server produces without growing.
const errorBuffSize = 128

// Server serves exactly one request per connection. It holds no per-connection
// state, so a single instance is shared between all the connection goroutines.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Serve reads the request, resolves its target and responds with either the asis
// file or an error. The connection is always closed on return.
func (s *Server) Serve(conn net.Conn) {
	log := s.logger.With(slog.String("conn", uniuri.NewLen(connIDLength)))
	bufferSize := s.cfg.NET.ReadBufferSize
	serializer := http1transport.NewSerializer(
		conn, make([]byte, 0, errorBuffSize), make([]byte, bufferSize),
	)
	defer serializer.Close()

	p := http1.NewRequestsParser(bufferSize)
	if err := s.readRequest(log, conn, p, make([]byte, bufferSize)); err != nil {
		log.Debug("rejecting request", slog.String("error", err.Error()))
		s.fail(log, serializer, err)
		return
	}

	target := p.Target()
	if !p.HeadersCompleted() {
		log.Debug("peer closed before the headers were completed", slog.String("target", target))
	}

	s.respond(log, serializer, target)
}

// readRequest feeds the parser until the headers are completed or the peer stops
// sending. Only a parser error is reported: a connection closed mid-request still
// gets a response for whatever target was captured.
func (s *Server) readRequest(log *slog.Logger, conn net.Conn, p parser.RequestsParser, buff []byte) error {
	timeout := s.cfg.NET.ReadTimeout.Std()

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return err
			}
		}

		n, err := conn.Read(buff)
		if n > 0 {
			switch state, perr := p.Parse(buff[:n]); state {
			case parser.Error:
				return perr
			case parser.HeadersCompleted:
				return nil
			}
		}

		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug("read failed", slog.String("error", err.Error()))
			}

			return nil
		}
	}
}

func (s *Server) respond(log *slog.Logger, serializer transport.Serializer, target string) {
	resolver := pathlib.NewResolver(s.cfg.FS.Root, s.cfg.FS.IndexFile, s.cfg.FS.Extension)
	path, err := resolver.Resolve(target)
	if err != nil {
		log.Debug("cannot resolve target", slog.String("target", target), slog.String("error", err.Error()))
		s.fail(log, serializer, err)
		return
	}

	file, err := asis.Open(path)
	if err != nil {
		log.Debug("cannot open file", slog.String("path", path), slog.String("error", err.Error()))
		s.fail(log, serializer, err)
		return
	}

	if err = serializer.WriteAsis(file); err != nil {
		log.Warn("serving failed",
			slog.String("target", target),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	code, parsed := file.Code()
	if !parsed {
		log.Debug("malformed asis file", slog.String("path", path))
		return
	}

	log.Debug("served",
		slog.String("target", target),
		slog.String("path", path),
		slog.Uint64("status", uint64(code)),
	)
}

func (s *Server) fail(log *slog.Logger, serializer transport.Serializer, err error) {
	if werr := serializer.WriteError(err); werr != nil && !errors.Is(werr, err) {
		log.Debug("cannot write error response", slog.String("error", werr.Error()))
	}
}
