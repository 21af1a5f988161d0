// Package httpserver runs the storeops HTTP listener and its graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// Server serves HTTP until its context ends, then drains in-flight requests.
type Server struct {
	srv             *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	onShutdown      []func(context.Context) error
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// OnShutdown registers a hook run before the listener drains, such as
// stopping background workers. Hooks share the shutdown deadline.
func OnShutdown(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.onShutdown = append(s.onShutdown, fn)
	}
}

// New builds a server with the timeouts used by every storeops listener.
func New(addr string, handler http.Handler, opts ...Option) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:          slog.New(slog.DiscardHandler),
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on the configured address and blocks until ctx is done or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, hook := range s.onShutdown {
		if err := hook(shutdownCtx); err != nil {
			s.logger.WarnContext(shutdownCtx, "shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	s.logger.InfoContext(shutdownCtx, "http server stopped")
	return errors.Join(errs...)
}
