package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// HTTPServer exposes the same JSON-RPC dispatch Run drives over stdio as a
// single POST endpoint, for local tooling that would rather speak HTTP
// than manage a long-lived stdio subprocess. The protocol is identical
// either way: a JSON-RPC request body in, one response object out.
type HTTPServer struct {
	mcp    *Server
	router chi.Router
}

// NewHTTPServer wraps mcp behind a chi router with permissive local CORS,
// the same router/middleware stack internal/api builds for its own debug
// surface.
func NewHTTPServer(mcpServer *Server) *HTTPServer {
	h := &HTTPServer{mcp: mcpServer}
	h.router = h.setupRouter()
	return h
}

func (h *HTTPServer) setupRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", h.handleHealth)
	r.Post("/rpc", h.handleRPC)
	return r
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *HTTPServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 4*1024*1024))
	if err != nil {
		http.Error(w, "reading request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := h.mcp.handleLine(string(body))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode mcp response", "error", err)
	}
}

// ListenAndServe starts the HTTP transport, shutting down gracefully when
// ctx is cancelled.
func (h *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv.ListenAndServe()
}
