package api

import (
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/auth"
	"github.com/elskow/moldavite/internal/build"
	"github.com/elskow/moldavite/internal/config"
	"github.com/elskow/moldavite/internal/version"
)

// NewModule returns the api module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, logger *zap.Logger) *auth.Middleware {
					return auth.NewMiddleware(&config.Auth, PublicEndpoints, logger.Named("auth"))
				},
			),
			fx.Annotate(
				func(books *build.BookService, notebooks *build.NotebookService, config *config.AppConfig, logger *zap.Logger) *Handler {
					return NewHandler(books, notebooks, version.Get(config.Server.ServiceVersion), logger.Named("api"))
				},
			),
			fx.Annotate(
				func(h *Handler, authMiddleware *auth.Middleware, config *config.AppConfig, logger *zap.Logger) http.Handler {
					timeout := time.Duration(config.Server.RequestTimeout) * time.Second
					return NewRouter(h, authMiddleware, timeout, logger.Named("http"))
				},
			),
		),
	)
}
