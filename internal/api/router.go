package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/auth"
)

func NewRouter(h *Handler, authMiddleware *auth.Middleware, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(authMiddleware.Handler)
	if requestTimeout > 0 {
		r.Use(timeoutMiddleware(requestTimeout))
	}

	r.Get(VersionPath, h.getVersion)
	r.Get(HealthPath, h.healthz)
	r.Get(ReadyPath, h.readyz)
	r.Method(http.MethodGet, MetricsPath, promhttp.Handler())

	r.Post(BooksPath, h.submitBook)
	r.Get(BookPath, h.getBook)
	r.Delete(BookPath, h.deleteBook)

	r.Post(NotebooksPath, h.submitNotebook)
	r.Get(NotebookPath, h.getNotebook)
	r.Delete(NotebookPath, h.deleteNotebook)

	return r
}
