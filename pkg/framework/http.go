package framework

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// HTTPServer runs an http.Server as a Runnable.
type HTTPServer struct {
	Addr    string
	Handler http.Handler
	// ShutdownTimeout bounds graceful shutdown after cancel.
	ShutdownTimeout time.Duration

	listener net.Listener
}

// Name implements Named.
func (s *HTTPServer) Name() string {
	return "http:" + s.Addr
}

// Listen binds the address before Run, so the bound address is known.
func (s *HTTPServer) Listen() (net.Addr, error) {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			return nil, err
		}
		s.listener = ln
	}
	return s.listener.Addr(), nil
}

// Run implements Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	server := &http.Server{Handler: s.Handler}
	glog.Infof("HTTP listening on %s", addr)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(s.listener)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		glog.Warningf("HTTP shutdown: %v", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
