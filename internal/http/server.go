package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/oraculx/financewise/internal/services"
	appweb "github.com/oraculx/financewise/web"
)

type Server struct {
	http.Server
	tracker        *services.Tracker
	maxImportBytes int64
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, tracker *services.Tracker, maxImportBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		tracker:        tracker,
		maxImportBytes: maxImportBytes,
	}

	// Static page shell (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		mux.Handle("/", http.FileServer(http.FS(sub)))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/state", s.withRequestLog(s.handleState))
	mux.HandleFunc("/api/transactions", s.withRequestLog(s.handleSubmit))
	mux.HandleFunc("/api/transactions/confirm", s.withRequestLog(s.handleConfirm))
	mux.HandleFunc("/api/transactions/cancel", s.withRequestLog(s.handleCancel))
	mux.HandleFunc("/api/transactions/{id}", s.withRequestLog(s.handleTransaction))
	mux.HandleFunc("/api/recurring", s.withRequestLog(s.handleRecurring))
	mux.HandleFunc("/api/insights", s.withRequestLog(s.handleInsights))
	mux.HandleFunc("/api/import", s.withRequestLog(s.handleImport))

	return s
}

// withRequestLog adds security headers, a request id and request
// logging to API responses.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(r.Context(), "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}
