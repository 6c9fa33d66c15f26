package build

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/cluster"
	"github.com/elskow/moldavite/internal/config"
)

type NotebookService struct {
	config *config.BuildConfig
	client cluster.ResourceClient
	logger *zap.Logger
}

func NewNotebookService(cfg *config.BuildConfig, client cluster.ResourceClient, logger *zap.Logger) *NotebookService {
	return &NotebookService{
		config: cfg,
		client: client,
		logger: logger,
	}
}

func (s *NotebookService) SubmitNotebook(ctx context.Context, req NotebookRequest) (*NotebookBuild, error) {
	build := &NotebookBuild{
		RepoURL:   strings.TrimSpace(req.RepoURL),
		GitBranch: s.config.DefaultGitBranch,
	}
	if build.RepoURL == "" {
		submissionsTotal.WithLabelValues(string(KindNotebook), outcomeRejected).Inc()
		return nil, &ValidationError{Message: "repo_url is required", MaxTTL: s.config.MaxTTL}
	}
	if req.GitBranch != nil {
		build.GitBranch = *req.GitBranch
	}

	id, err := s.client.GenerateID(string(KindNotebook))
	if err != nil {
		submissionsTotal.WithLabelValues(string(KindNotebook), outcomeFailed).Inc()
		return nil, err
	}
	build.NotebookID = id

	workflow, err := s.client.SubmitWorkflow(ctx, cluster.WorkflowSubmission{
		TemplateSelector: s.config.NotebookTemplateSelector,
		Namespace:        s.config.InfraNamespace,
		TemplateParameters: cluster.TemplateParameters{
			paramRepoURL:    build.RepoURL,
			paramNotebookID: build.NotebookID,
			paramRepoBranch: build.GitBranch,
		},
		WorkflowParameters: s.client.StorageWorkflowParameters(),
		TargetNamespace:    s.config.BuildNamespace,
	})
	if err != nil {
		submissionsTotal.WithLabelValues(string(KindNotebook), outcomeFailed).Inc()
		return nil, fmt.Errorf("failed to submit notebook %s: %w", build.NotebookID, err)
	}

	submissionsTotal.WithLabelValues(string(KindNotebook), outcomeAccepted).Inc()
	s.logger.Info("notebook build submitted",
		zap.String("build_id", build.NotebookID),
		zap.String("workflow", workflow),
		zap.String("repo_url", build.RepoURL),
		zap.String("git_branch", build.GitBranch))

	return build, nil
}

func (s *NotebookService) NotebookStatus(ctx context.Context, id string) (*NotebookStatus, error) {
	scope := lookupScope{kind: KindNotebook, id: id, namespace: s.config.BuildNamespace, logger: s.logger}

	report, err := scope.workflowStatus(ctx, s.client)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, &NotFoundError{Kind: KindNotebook, ID: id}
	}
	return &NotebookStatus{NotebookID: id, BuildStatus: report}, nil
}

func (s *NotebookService) DeleteNotebook(ctx context.Context, id string) error {
	found, err := deleteCreated(ctx, s.client, KindNotebook, id, s.config.BuildNamespace, s.logger)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Kind: KindNotebook, ID: id}
	}
	s.logger.Info("notebook deleted", zap.String("build_id", id))
	return nil
}
