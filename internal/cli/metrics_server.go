package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Paintersrp/tether/internal/metrics"
)

// serveMetrics exposes the Prometheus registry over HTTP. The returned
// func shuts the server down and blocks until it has stopped.
func serveMetrics(addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	shutdown := func() {
		shutdownCtx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}

	return shutdown, nil
}
