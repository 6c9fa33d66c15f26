package cluster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// processedTemplates is the server-side equivalent of `oc process`.
var processedTemplates = schema.GroupVersionResource{
	Group:    "template.openshift.io",
	Version:  "v1",
	Resource: "processedtemplates",
}

type NodeStatus struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name,omitempty"`
	Type        string     `json:"type,omitempty"`
	Phase       string     `json:"phase,omitempty"`
	Message     string     `json:"message,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type WorkflowStatusReport struct {
	Phase      string       `json:"phase"`
	Message    string       `json:"message,omitempty"`
	Progress   string       `json:"progress,omitempty"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Nodes      []NodeStatus `json:"nodes"`
}

func (c *DynamicClient) SubmitWorkflow(ctx context.Context, submission WorkflowSubmission) (string, error) {
	template, err := c.GetOne(ctx, Template, submission.TemplateSelector, submission.Namespace)
	if err != nil {
		return "", fmt.Errorf("failed to find workflow template: %w", err)
	}

	if err := setTemplateParameters(template, submission.TemplateParameters); err != nil {
		return "", err
	}

	processed, err := c.client.Resource(processedTemplates).Namespace(submission.Namespace).
		Create(ctx, template, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to process template %s: %w", template.GetName(), err)
	}

	workflow, err := workflowFromTemplate(processed)
	if err != nil {
		return "", err
	}
	workflow.SetNamespace(submission.TargetNamespace)

	if err := mergeWorkflowParameters(workflow, submission.WorkflowParameters); err != nil {
		return "", err
	}

	created, err := c.resource(Workflow, submission.TargetNamespace).Create(ctx, workflow, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create workflow: %w", err)
	}

	c.logger.Info("submitted workflow",
		zap.String("template", template.GetName()),
		zap.String("workflow", created.GetName()),
		zap.String("namespace", submission.TargetNamespace))

	return created.GetName(), nil
}

func (c *DynamicClient) GetWorkflowStatus(ctx context.Context, workflowID, namespace string) (*WorkflowStatusReport, error) {
	workflow, err := c.resource(Workflow, namespace).Get(ctx, workflowID, metav1.GetOptions{})
	if err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, fmt.Errorf("workflow %s in %s: %w", workflowID, namespace, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get workflow %s: %w", workflowID, err)
	}

	status, found, err := unstructured.NestedMap(workflow.Object, "status")
	if err != nil {
		return nil, fmt.Errorf("malformed status of workflow %s: %w", workflowID, err)
	}
	if !found || len(status) == 0 {
		return nil, fmt.Errorf("workflow %s has no status yet: %w", workflowID, ErrNotFound)
	}

	return statusReport(status), nil
}

func setTemplateParameters(template *unstructured.Unstructured, params TemplateParameters) error {
	existing, _, err := unstructured.NestedSlice(template.Object, "parameters")
	if err != nil {
		return fmt.Errorf("malformed parameters of template %s: %w", template.GetName(), err)
	}

	seen := make(map[string]bool, len(params))
	for _, raw := range existing {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := param["name"].(string)
		if value, ok := params[name]; ok {
			param["value"] = value
			seen[name] = true
		}
	}

	for _, name := range sortedKeys(params) {
		if !seen[name] {
			existing = append(existing, map[string]interface{}{"name": name, "value": params[name]})
		}
	}

	return unstructured.SetNestedSlice(template.Object, existing, "parameters")
}

func workflowFromTemplate(processed *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	objects, _, err := unstructured.NestedSlice(processed.Object, "objects")
	if err != nil {
		return nil, fmt.Errorf("malformed objects of template %s: %w", processed.GetName(), err)
	}

	for _, raw := range objects {
		object, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		candidate := &unstructured.Unstructured{Object: object}
		if candidate.GetKind() == Workflow.Kind {
			return candidate, nil
		}
	}

	return nil, fmt.Errorf("template %s does not produce a workflow", processed.GetName())
}

func mergeWorkflowParameters(workflow *unstructured.Unstructured, params WorkflowParameters) error {
	if len(params) == 0 {
		return nil
	}

	existing, _, err := unstructured.NestedSlice(workflow.Object, "spec", "arguments", "parameters")
	if err != nil {
		return fmt.Errorf("malformed arguments of workflow: %w", err)
	}

	merged := make([]interface{}, 0, len(existing)+len(params))
	for _, raw := range existing {
		param, ok := raw.(map[string]interface{})
		if ok {
			if _, override := params[fmt.Sprint(param["name"])]; override {
				continue
			}
		}
		merged = append(merged, raw)
	}
	for _, name := range sortedKeys(params) {
		merged = append(merged, map[string]interface{}{"name": name, "value": params[name]})
	}

	return unstructured.SetNestedSlice(workflow.Object, merged, "spec", "arguments", "parameters")
}

func statusReport(status map[string]interface{}) *WorkflowStatusReport {
	report := &WorkflowStatusReport{
		Phase:      stringField(status, "phase"),
		Message:    stringField(status, "message"),
		Progress:   stringField(status, "progress"),
		StartedAt:  timeField(status, "startedAt"),
		FinishedAt: timeField(status, "finishedAt"),
		Nodes:      []NodeStatus{},
	}

	nodes, _, _ := unstructured.NestedMap(status, "nodes")
	for id, raw := range nodes {
		node, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name := stringField(node, "name")
		if name == "" {
			name = id
		}
		report.Nodes = append(report.Nodes, NodeStatus{
			Name:        name,
			DisplayName: stringField(node, "displayName"),
			Type:        stringField(node, "type"),
			Phase:       stringField(node, "phase"),
			Message:     stringField(node, "message"),
			StartedAt:   timeField(node, "startedAt"),
			FinishedAt:  timeField(node, "finishedAt"),
		})
	}

	sort.Slice(report.Nodes, func(i, j int) bool {
		a, b := report.Nodes[i], report.Nodes[j]
		switch {
		case a.StartedAt == nil && b.StartedAt == nil:
			return a.Name < b.Name
		case a.StartedAt == nil:
			return false
		case b.StartedAt == nil:
			return true
		case a.StartedAt.Equal(*b.StartedAt):
			return a.Name < b.Name
		default:
			return a.StartedAt.Before(*b.StartedAt)
		}
	})

	return report
}

func stringField(obj map[string]interface{}, key string) string {
	value, _ := obj[key].(string)
	return value
}

func timeField(obj map[string]interface{}, key string) *time.Time {
	value := stringField(obj, key)
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
