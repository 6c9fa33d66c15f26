package build

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/cluster"
	"github.com/elskow/moldavite/internal/config"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func() Clock {
					return SystemClock{}
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, client cluster.ResourceClient, clock Clock, logger *zap.Logger) *BookService {
					return NewBookService(&config.Build, client, clock, logger.Named("books"))
				},
			),
			fx.Annotate(
				func(config *config.AppConfig, client cluster.ResourceClient, logger *zap.Logger) *NotebookService {
					return NewNotebookService(&config.Build, client, logger.Named("notebooks"))
				},
			),
		),
	)
}
