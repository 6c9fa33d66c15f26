package cluster

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"k8s.io/client-go/dynamic"

	"github.com/elskow/moldavite/internal/config"
)

// NewModule returns the cluster module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, logger *zap.Logger) (dynamic.Interface, error) {
					return NewDynamicInterface(&config.Cluster, logger)
				},
			),
			fx.Annotate(
				func(client dynamic.Interface, config *config.AppConfig, logger *zap.Logger) ResourceClient {
					return NewDynamicClient(client, &config.Storage, logger.Named("cluster"))
				},
			),
		),
	)
}
