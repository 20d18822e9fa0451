package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/cory-johannsen/hexsheet/internal/config"
)

// HTTPService serves a handler until stopped, draining in-flight requests on
// Stop.
type HTTPService struct {
	srv *http.Server
	ln  net.Listener
}

// NewHTTPService builds an HTTPService from the server configuration.
func NewHTTPService(cfg config.ServerConfig, h http.Handler) *HTTPService {
	return &HTTPService{srv: &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}}
}

// Listen binds the listening socket ahead of Start, so callers learn the
// bound address (useful with port 0) and bind errors early.
func (h *HTTPService) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return nil, err
	}
	h.ln = ln
	return ln.Addr(), nil
}

// Start serves until Stop. It binds the socket first if Listen was not called.
func (h *HTTPService) Start() error {
	if h.ln == nil {
		if _, err := h.Listen(); err != nil {
			return err
		}
	}
	if err := h.srv.Serve(h.ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (h *HTTPService) Stop(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}
