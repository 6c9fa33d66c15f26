package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/config"
)

type contextKey string

const SubjectContextKey contextKey = "subject"

type Middleware struct {
	config *config.AuthConfig
	public map[string]bool
	logger *zap.Logger
}

// NewMiddleware protects every path not marked true in public.
func NewMiddleware(cfg *config.AuthConfig, public map[string]bool, logger *zap.Logger) *Middleware {
	return &Middleware{
		config: cfg,
		public: public,
		logger: logger,
	}
}

func (m *Middleware) isProtected(path string) bool {
	isPublic, exists := m.public[path]
	return !exists || !isPublic
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.config.Enabled || !m.isProtected(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			m.reject(w, r, "missing token")
			return
		}

		claims, err := ValidateToken(token, m.config.AppSecretKey)
		if err != nil {
			m.logger.Warn("authentication failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.reject(w, r, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), SubjectContextKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, message string) {
	m.logger.Debug("rejecting unauthenticated request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="moldavite"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// SubjectFromContext returns the subject of the authenticated caller.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectContextKey).(string)
	return subject, ok
}
