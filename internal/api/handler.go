// Package api exposes the health, metrics, manual-run and MCP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lukman83/promobot/internal/metrics"
	"github.com/lukman83/promobot/internal/pipeline"
	mcpserver "github.com/lukman83/promobot/mcp"
)

// Runner triggers a pipeline run for a keyword, or a random one when empty.
type Runner interface {
	RunKeyword(ctx context.Context, keyword string) pipeline.Summary
}

type Handler struct {
	runner Runner
	logger *log.Logger
}

func NewHandler(runner Runner, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{runner: runner, logger: logger}
}

type runRequest struct {
	Keyword string `json:"keyword"`
}

// Run handles POST /run. The body is optional.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}

	// The run outlives a dropped client connection.
	sum := h.runner.RunKeyword(context.WithoutCancel(r.Context()), req.Keyword)
	h.logger.Printf("[api] manual run %s: published=%d failed=%d", sum.RunID, sum.Published, sum.Failed)

	status := http.StatusOK
	switch {
	case sum.Skipped:
		status = http.StatusConflict
	case sum.Error != "":
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, sum)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter mounts every endpoint. /run and /mcp require apiKey as a bearer
// token when it is set.
func NewRouter(h *Handler, tools mcpserver.Deps, apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)

	r.Get("/healthz", Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if apiKey != "" {
			r.Use(func(next http.Handler) http.Handler {
				return mcpserver.BearerAuth(apiKey, "promobot", next)
			})
		}
		r.Post("/run", h.Run)
	})
	r.Handle("/mcp", mcpserver.Handler(tools, apiKey))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
