package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/auth"
	"github.com/elskow/moldavite/internal/build"
	"github.com/elskow/moldavite/internal/version"
)

type BookService interface {
	SubmitBook(ctx context.Context, req build.BookRequest) (*build.BookBuild, error)
	BookStatus(ctx context.Context, id string) (*build.BookStatus, error)
	DeleteBook(ctx context.Context, id string) error
}

type NotebookService interface {
	SubmitNotebook(ctx context.Context, req build.NotebookRequest) (*build.NotebookBuild, error)
	NotebookStatus(ctx context.Context, id string) (*build.NotebookStatus, error)
	DeleteNotebook(ctx context.Context, id string) error
}

type Handler struct {
	books     BookService
	notebooks NotebookService
	version   version.Info
	logger    *zap.Logger
}

func NewHandler(books BookService, notebooks NotebookService, info version.Info, logger *zap.Logger) *Handler {
	return &Handler{
		books:     books,
		notebooks: notebooks,
		version:   info,
		logger:    logger,
	}
}

func (h *Handler) getVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.version)
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) submitBook(w http.ResponseWriter, r *http.Request) {
	var req build.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	book, err := h.books.SubmitBook(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.audit(r, "submit", book.BookID)
	writeJSON(w, http.StatusAccepted, book)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	status, err := h.books.BookStatus(r.Context(), chi.URLParam(r, "book_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "book_id")
	if err := h.books.DeleteBook(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.audit(r, "delete", id)
	writeJSON(w, http.StatusCreated, map[string]string{"book_id": id})
}

func (h *Handler) submitNotebook(w http.ResponseWriter, r *http.Request) {
	var req build.NotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	notebook, err := h.notebooks.SubmitNotebook(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.audit(r, "submit", notebook.NotebookID)
	writeJSON(w, http.StatusAccepted, notebook)
}

func (h *Handler) getNotebook(w http.ResponseWriter, r *http.Request) {
	status, err := h.notebooks.NotebookStatus(r.Context(), chi.URLParam(r, "notebook_id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) deleteNotebook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notebook_id")
	if err := h.notebooks.DeleteNotebook(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.audit(r, "delete", id)
	writeJSON(w, http.StatusCreated, map[string]string{"notebook_id": id})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *build.ValidationError
	var notFoundErr *build.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		writeError(w, http.StatusNotFound, notFoundErr.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("subject", subject(r)),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// audit records who changed which build.
func (h *Handler) audit(r *http.Request, action, id string) {
	h.logger.Info("audit",
		zap.String("action", action),
		zap.String("build_id", id),
		zap.String("subject", subject(r)),
		zap.String("request_id", RequestIDFromContext(r.Context())))
}

// subject is empty when auth is disabled.
func subject(r *http.Request) string {
	s, _ := auth.SubjectFromContext(r.Context())
	return s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
