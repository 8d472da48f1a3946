// Package server runs the HTTP accept loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
)

// Listen binds a TCP listener on addr.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled or the listener
// fails.  Cancellation closes the server at once; in-flight requests are
// not drained.
func Serve(ctx context.Context, lg *slog.Logger, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:  h,
		ErrorLog: slog.NewLogLogger(lg.Handler(), slog.LevelWarn),
	}

	stop := context.AfterFunc(ctx, func() {
		if err := srv.Close(); err != nil {
			lg.Warn("server close", "error", err)
		}
	})
	defer stop()

	lg.Info("server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	lg.Info("server stopped")
	return nil
}
