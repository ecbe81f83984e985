package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Relevance-Ranker/pkg/errors"
)

// StartServer binds /metrics on port (0 picks a free port) and serves it in
// the background until shutdown is called. A port that cannot be bound is
// reported to the caller instead of from the serving goroutine.
func (m *Metrics) StartServer(port int) (addr string, shutdown func(context.Context) error, err error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", nil, apperrors.Newf(apperrors.ErrUnavailable, "metrics listener on port %d: %v", port, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	addr = ln.Addr().String()
	logger := slog.Default().With("component", "metrics-server", "addr", addr)
	go func() {
		logger.Info("metrics server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return addr, server.Shutdown, nil
}
