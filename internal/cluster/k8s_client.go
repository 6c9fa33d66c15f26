package cluster

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/elskow/moldavite/internal/config"
)

// NewRESTConfig prefers in-cluster credentials and falls back to the configured kubeconfig.
func NewRESTConfig(cfg *config.ClusterConfig, logger *zap.Logger) (*rest.Config, error) {
	restConfig, err := rest.InClusterConfig()
	if err == nil {
		logger.Info("using in-cluster kubernetes configuration")
		return restConfig, nil
	}
	if !errors.Is(err, rest.ErrNotInCluster) {
		return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
	}

	restConfig, err = clientcmd.BuildConfigFromFlags("", cfg.Kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	logger.Info("using kubeconfig", zap.String("path", cfg.Kubeconfig))

	return restConfig, nil
}

func NewDynamicInterface(cfg *config.ClusterConfig, logger *zap.Logger) (dynamic.Interface, error) {
	restConfig, err := NewRESTConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return client, nil
}
