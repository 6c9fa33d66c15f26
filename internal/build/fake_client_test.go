package build

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/elskow/moldavite/internal/cluster"
	"github.com/elskow/moldavite/internal/config"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time {
	return time.Time(c)
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testBuildConfig() *config.BuildConfig {
	return &config.BuildConfig{
		BuildNamespace:           "moldavite-builds",
		InfraNamespace:           "moldavite-infra",
		BookTemplateSelector:     "template=moldavite-book",
		NotebookTemplateSelector: "template=moldavite-notebook",
		DefaultBookPath:          "book",
		DefaultGitBranch:         "main",
		MaxTTL:                   259200,
		DefaultTTL:               86400,
	}
}

// fakeResourceClient keeps resources keyed by kind and build id.
type fakeResourceClient struct {
	mu          sync.Mutex
	objects     map[string]*unstructured.Unstructured
	reports     map[string]*cluster.WorkflowStatusReport
	counts      map[string]int
	errs        map[string]error
	submissions []cluster.WorkflowSubmission
	submitErr   error
	ids         int
	deleted     []string
}

func newFakeResourceClient() *fakeResourceClient {
	return &fakeResourceClient{
		objects: make(map[string]*unstructured.Unstructured),
		reports: make(map[string]*cluster.WorkflowStatusReport),
		counts:  make(map[string]int),
		errs:    make(map[string]error),
	}
}

func key(kind string, id string) string {
	return kind + "/" + id
}

func idFromSelector(selector string) string {
	return strings.TrimPrefix(selector, cluster.BuildIDLabel+"=")
}

func (f *fakeResourceClient) addObject(kind cluster.ResourceKind, id string, obj *unstructured.Unstructured) {
	f.objects[key(kind.Kind, id)] = obj
	f.counts[key(kind.Kind, id)]++
}

func (f *fakeResourceClient) GetOne(_ context.Context, kind cluster.ResourceKind, labelSelector, _ string) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := idFromSelector(labelSelector)
	if err, ok := f.errs[key(kind.Kind, id)]; ok {
		return nil, err
	}
	obj, ok := f.objects[key(kind.Kind, id)]
	if !ok {
		return nil, fmt.Errorf("no %s for %s: %w", kind.Kind, id, cluster.ErrNotFound)
	}
	return obj, nil
}

func (f *fakeResourceClient) DeleteAll(_ context.Context, kind cluster.ResourceKind, labelSelector, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := idFromSelector(labelSelector)
	f.deleted = append(f.deleted, kind.Kind)
	if err, ok := f.errs[key(kind.Kind, id)]; ok {
		return 0, err
	}
	n := f.counts[key(kind.Kind, id)]
	delete(f.counts, key(kind.Kind, id))
	delete(f.objects, key(kind.Kind, id))
	if kind == cluster.Workflow {
		delete(f.reports, id)
	}
	return n, nil
}

func (f *fakeResourceClient) SubmitWorkflow(_ context.Context, submission cluster.WorkflowSubmission) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.submissions = append(f.submissions, submission)
	return "workflow-" + fmt.Sprint(len(f.submissions)), nil
}

func (f *fakeResourceClient) GenerateID(prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ids++
	return fmt.Sprintf("%s-%016x", prefix, f.ids), nil
}

func (f *fakeResourceClient) GetWorkflowStatus(_ context.Context, workflowID, _ string) (*cluster.WorkflowStatusReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[key(cluster.Workflow.Kind, workflowID)]; ok {
		return nil, err
	}
	report, ok := f.reports[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow %s: %w", workflowID, cluster.ErrNotFound)
	}
	return report, nil
}

func (f *fakeResourceClient) StorageWorkflowParameters() cluster.WorkflowParameters {
	return cluster.WorkflowParameters{
		"ceph_bucket_name": "thoth",
		"ceph_host":        "https://s3.example.com",
	}
}
