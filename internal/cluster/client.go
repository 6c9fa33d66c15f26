package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"

	"github.com/elskow/moldavite/internal/config"
)

var ErrNotFound = errors.New("resource not found")

// TemplateParameters are substituted into a workflow template before it is processed.
type TemplateParameters map[string]string

// WorkflowParameters are merged into spec.arguments.parameters of the submitted workflow.
type WorkflowParameters map[string]string

type WorkflowSubmission struct {
	TemplateSelector   string
	Namespace          string
	TemplateParameters TemplateParameters
	WorkflowParameters WorkflowParameters
	TargetNamespace    string
}

// ResourceClient abstracts the cluster operations the build services rely on.
type ResourceClient interface {
	GetOne(ctx context.Context, kind ResourceKind, labelSelector, namespace string) (*unstructured.Unstructured, error)
	DeleteAll(ctx context.Context, kind ResourceKind, labelSelector, namespace string) (int, error)
	SubmitWorkflow(ctx context.Context, submission WorkflowSubmission) (string, error)
	GenerateID(prefix string) (string, error)
	GetWorkflowStatus(ctx context.Context, workflowID, namespace string) (*WorkflowStatusReport, error)
	StorageWorkflowParameters() WorkflowParameters
}

type DynamicClient struct {
	client  dynamic.Interface
	storage *config.StorageConfig
	logger  *zap.Logger
}

func NewDynamicClient(client dynamic.Interface, storage *config.StorageConfig, logger *zap.Logger) *DynamicClient {
	return &DynamicClient{
		client:  client,
		storage: storage,
		logger:  logger,
	}
}

func (c *DynamicClient) resource(kind ResourceKind, namespace string) dynamic.ResourceInterface {
	return c.client.Resource(kind.GVR()).Namespace(namespace)
}

func (c *DynamicClient) GetOne(ctx context.Context, kind ResourceKind, labelSelector, namespace string) (*unstructured.Unstructured, error) {
	list, err := c.resource(kind, namespace).List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	switch n := len(list.Items); {
	case n == 1:
		return &list.Items[0], nil
	case n > 1:
		// Creation is expected to keep one resource per kind and label. Callers
		// still only see not found.
		c.logger.Error("multiple resources match label selector",
			zap.String("kind", kind.Kind),
			zap.String("api_version", kind.APIVersion),
			zap.String("label_selector", labelSelector),
			zap.String("namespace", namespace),
			zap.Int("count", n))
		return nil, fmt.Errorf("%d resources of kind %s match %q in %s: %w", n, kind, labelSelector, namespace, ErrNotFound)
	default:
		return nil, fmt.Errorf("no resource of kind %s matches %q in %s: %w", kind, labelSelector, namespace, ErrNotFound)
	}
}

func (c *DynamicClient) DeleteAll(ctx context.Context, kind ResourceKind, labelSelector, namespace string) (int, error) {
	client := c.resource(kind, namespace)

	list, err := client.List(ctx, metav1.ListOptions{LabelSelector: labelSelector})
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	propagation := metav1.DeletePropagationBackground
	deleted := 0
	for _, item := range list.Items {
		err := client.Delete(ctx, item.GetName(), metav1.DeleteOptions{PropagationPolicy: &propagation})
		if err != nil {
			if k8serrors.IsNotFound(err) {
				continue
			}
			return deleted, fmt.Errorf("failed to delete %s %s: %w", kind, item.GetName(), err)
		}
		deleted++
	}

	if deleted > 0 {
		c.logger.Info("deleted resources",
			zap.String("kind", kind.Kind),
			zap.String("label_selector", labelSelector),
			zap.String("namespace", namespace),
			zap.Int("count", deleted))
	}

	return deleted, nil
}

// GenerateID returns prefix-<16 hex chars>, usable as label value and URL segment.
func (c *DynamicClient) GenerateID(prefix string) (string, error) {
	return GenerateID(prefix)
}

func GenerateID(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(id.String(), "-", "")[:16]), nil
}

func (c *DynamicClient) StorageWorkflowParameters() WorkflowParameters {
	params := WorkflowParameters{}
	set := func(name, value string) {
		if value != "" {
			params[name] = value
		}
	}

	set("ceph_bucket_name", c.storage.BucketName)
	set("ceph_bucket_prefix", c.storage.BucketPrefix)
	set("ceph_host", c.storage.Host)
	set("deployment_name", c.storage.DeploymentName)

	return params
}
