package build

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/elskow/moldavite/internal/cluster"
)

func newTestNotebookService(client *fakeResourceClient) *NotebookService {
	return NewNotebookService(testBuildConfig(), client, zap.NewNop())
}

func TestNotebookService_SubmitNotebook(t *testing.T) {
	client := newFakeResourceClient()
	svc := newTestNotebookService(client)

	got, err := svc.SubmitNotebook(context.Background(), NotebookRequest{RepoURL: " https://x/nb.git"})
	require.NoError(t, err)
	assert.Regexp(t, `^notebook-[0-9a-f]{16}$`, got.NotebookID)
	assert.Equal(t, "https://x/nb.git", got.RepoURL)
	assert.Equal(t, "main", got.GitBranch)

	require.Len(t, client.submissions, 1)
	submission := client.submissions[0]
	assert.Equal(t, "template=moldavite-notebook", submission.TemplateSelector)
	assert.Equal(t, "moldavite-infra", submission.Namespace)
	assert.Equal(t, "moldavite-builds", submission.TargetNamespace)
	assert.Equal(t, cluster.TemplateParameters{
		"MOLDAVITE_REPO_URL":    "https://x/nb.git",
		"MOLDAVITE_NOTEBOOK_ID": got.NotebookID,
		"MOLDAVITE_REPO_BRANCH": "main",
	}, submission.TemplateParameters)
	assert.Equal(t, client.StorageWorkflowParameters(), submission.WorkflowParameters)
}

func TestNotebookService_SubmitNotebook_Branch(t *testing.T) {
	client := newFakeResourceClient()
	svc := newTestNotebookService(client)

	got, err := svc.SubmitNotebook(context.Background(), NotebookRequest{RepoURL: "https://x/nb.git", GitBranch: stringPtr("feature")})
	require.NoError(t, err)
	assert.Equal(t, "feature", got.GitBranch)
	assert.Equal(t, "feature", client.submissions[0].TemplateParameters["MOLDAVITE_REPO_BRANCH"])
}

func TestNotebookService_SubmitNotebook_MissingRepo(t *testing.T) {
	client := newFakeResourceClient()
	svc := newTestNotebookService(client)

	_, err := svc.SubmitNotebook(context.Background(), NotebookRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, client.submissions)
}

func TestNotebookService_NotebookStatus(t *testing.T) {
	client := newFakeResourceClient()
	report := &cluster.WorkflowStatusReport{Phase: "Succeeded", Progress: "3/3"}
	client.reports["notebook-1"] = report
	svc := newTestNotebookService(client)

	got, err := svc.NotebookStatus(context.Background(), "notebook-1")
	require.NoError(t, err)
	assert.Equal(t, &NotebookStatus{NotebookID: "notebook-1", BuildStatus: report}, got)

	_, err = svc.NotebookStatus(context.Background(), "notebook-2")
	assert.ErrorIs(t, err, ErrNotebookNotFound)
	assert.EqualError(t, err, `NoteBook "notebook-2" does not exist or the build has not started yet`)
}

func TestNotebookService_NotebookStatus_ClusterError(t *testing.T) {
	client := newFakeResourceClient()
	client.errs[key(cluster.Workflow.Kind, "notebook-1")] = errors.New("timeout")
	svc := newTestNotebookService(client)

	_, err := svc.NotebookStatus(context.Background(), "notebook-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotebookNotFound))
}

func TestNotebookService_DeleteNotebook(t *testing.T) {
	client := newFakeResourceClient()
	client.addObject(cluster.Workflow, "notebook-5", &unstructured.Unstructured{})
	svc := newTestNotebookService(client)

	require.NoError(t, svc.DeleteNotebook(context.Background(), "notebook-5"))
	assert.ErrorIs(t, svc.DeleteNotebook(context.Background(), "notebook-5"), ErrNotebookNotFound)
}
