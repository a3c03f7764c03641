package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/altin/brunoview/internal/logging"
)

type Options struct {
	Addr      string
	File      string
	PublicDir string
	Token     string
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	log        *zap.Logger
}

func New(opts Options, store *Store, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	h := &Handler{
		store:     store,
		file:      opts.File,
		publicDir: opts.PublicDir,
		log:       log,
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewMux(h, opts.Token, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Listen binds the address so the real port is known before serving,
// which matters when port 0 asks for any free port.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = ln
	return nil
}

// URL is the browsable address of a listening server.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s/", s.listener.Addr().String())
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	s.log.Info("serving", zap.String("addr", s.listener.Addr().String()))
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
