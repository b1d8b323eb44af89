package serve

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
)

// ListenAndServe serves server until ctx is cancelled, then shuts it down, giving in-flight requests up to
// shutdownTimeout to finish.
func ListenAndServe(ctx *appcontext.Context, server *http.Server, shutdownTimeout time.Duration) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.WithStack(err)
	}
	return Serve(ctx, server, listener, shutdownTimeout)
}

// Serve is ListenAndServe on an already open listener.
func Serve(ctx *appcontext.Context, server *http.Server, listener net.Listener, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		ctx.Log.Infof("Listening on %s", listener.Addr())
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	ctx.Log.Infof("Shutting down server on %s", listener.Addr())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "forced shutdown after timeout")
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}
