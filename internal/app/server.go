package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/mcp-statute-server/internal/auth"
	"github.com/sha1n/mcp-statute-server/internal/config"
)

const shutdownTimeout = 5 * time.Second

// StartSSEServer serves the SSE transport until ctx is cancelled, then shuts down gracefully.
func StartSSEServer(ctx context.Context, inst *Instance, settings *config.Settings) error {
	srv, err := NewSSEServer(inst, settings)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening (HTTP)", "addr", srv.Addr, "auth_type", settings.Auth.Type)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// NewSSEServer creates a new SSE server with authentication middleware
func NewSSEServer(inst *Instance, settings *config.Settings) (*http.Server, error) {
	// Factory function returns the server instance for each request
	sseHandler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return inst.Server
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc(auth.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	mux.HandleFunc(auth.ReadyPath, func(w http.ResponseWriter, r *http.Request) {
		if inst.Statute == nil || !inst.Statute.IsReady() {
			writeStatus(w, http.StatusServiceUnavailable, "statute not loaded")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/sse", sseHandler)

	authMiddleware, err := auth.NewMiddleware(settings.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth middleware: %w", err)
	}

	handler := authMiddleware(mux)
	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
