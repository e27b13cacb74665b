package handler

import (
	"log/slog"
	"net/http"

	"github.com/mtlprog/chatpage/internal/middleware"
	"github.com/mtlprog/chatpage/internal/page"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	page   *page.Page
	logger *slog.Logger
}

// New creates a new Handler serving the given page.
func New(p *page.Page, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		page:   p,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes. Unknown paths fall through to
// the mux's default 404 and wrong methods to its 405.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Landing page with the chat widget
	mux.Handle("GET /{$}", h.page)

	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

// Routes returns the registered routes wrapped in the request middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(h.logger),
		middleware.Recover(h.logger),
	)
}

// handleHealthz returns 200 OK while the process is serving.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
