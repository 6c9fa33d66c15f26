package build

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/elskow/moldavite/internal/cluster"
	"github.com/elskow/moldavite/internal/config"
)

type BookService struct {
	config *config.BuildConfig
	client cluster.ResourceClient
	clock  Clock
	logger *zap.Logger
}

func NewBookService(cfg *config.BuildConfig, client cluster.ResourceClient, clock Clock, logger *zap.Logger) *BookService {
	return &BookService{
		config: cfg,
		client: client,
		clock:  clock,
		logger: logger,
	}
}

func (s *BookService) SubmitBook(ctx context.Context, req BookRequest) (*BookBuild, error) {
	build, err := s.normalize(req)
	if err != nil {
		submissionsTotal.WithLabelValues(string(KindBook), outcomeRejected).Inc()
		return nil, err
	}

	id, err := s.client.GenerateID(string(KindBook))
	if err != nil {
		submissionsTotal.WithLabelValues(string(KindBook), outcomeFailed).Inc()
		return nil, err
	}
	build.BookID = id

	workflow, err := s.client.SubmitWorkflow(ctx, cluster.WorkflowSubmission{
		TemplateSelector: s.config.BookTemplateSelector,
		Namespace:        s.config.InfraNamespace,
		TemplateParameters: cluster.TemplateParameters{
			paramRepoURL:    build.RepoURL,
			paramBookID:     build.BookID,
			paramRepoBranch: build.GitBranch,
			paramBookPath:   build.BookPath,
			paramTTL:        strconv.FormatInt(build.TTL, 10),
		},
		TargetNamespace: s.config.BuildNamespace,
	})
	if err != nil {
		submissionsTotal.WithLabelValues(string(KindBook), outcomeFailed).Inc()
		return nil, fmt.Errorf("failed to submit book %s: %w", build.BookID, err)
	}

	submissionsTotal.WithLabelValues(string(KindBook), outcomeAccepted).Inc()
	s.logger.Info("book build submitted",
		zap.String("build_id", build.BookID),
		zap.String("workflow", workflow),
		zap.String("repo_url", build.RepoURL),
		zap.String("git_branch", build.GitBranch),
		zap.Int64("ttl", build.TTL))

	return build, nil
}

func (s *BookService) normalize(req BookRequest) (*BookBuild, error) {
	build := &BookBuild{
		RepoURL:   strings.TrimSpace(req.RepoURL),
		BookPath:  s.config.DefaultBookPath,
		GitBranch: s.config.DefaultGitBranch,
		TTL:       s.config.DefaultTTL,
	}
	if build.RepoURL == "" {
		return nil, &ValidationError{Message: "repo_url is required", MaxTTL: s.config.MaxTTL}
	}
	if req.BookPath != nil {
		build.BookPath = *req.BookPath
	}
	if req.GitBranch != nil {
		build.GitBranch = *req.GitBranch
	}
	if req.TTL != nil {
		build.TTL = *req.TTL
	}
	if build.TTL > s.config.MaxTTL {
		return nil, &ValidationError{
			Message: fmt.Sprintf("TTL exceeded, maximum TTL can be %d", s.config.MaxTTL),
			MaxTTL:  s.config.MaxTTL,
		}
	}
	return build, nil
}

// BookStatus merges the workflow report with what the route and deployment
// config expose. It only fails with not found when neither the workflow nor
// the deployment config exists.
func (s *BookService) BookStatus(ctx context.Context, id string) (*BookStatus, error) {
	scope := lookupScope{kind: KindBook, id: id, namespace: s.config.BuildNamespace, logger: s.logger}
	selector := cluster.BuildSelector(id)
	status := &BookStatus{BookID: id}

	report, err := scope.workflowStatus(ctx, s.client)
	if err != nil {
		return nil, err
	}
	status.BuildStatus = report

	route, found, err := lookup(scope, cluster.Route.Kind, func() (*unstructured.Unstructured, error) {
		return s.client.GetOne(ctx, cluster.Route, selector, scope.namespace)
	})
	if err != nil {
		return nil, err
	}
	if found {
		status.Host = routeHost(route)
	}

	dc, found, err := lookup(scope, cluster.DeploymentConfig.Kind, func() (*unstructured.Unstructured, error) {
		return s.client.GetOne(ctx, cluster.DeploymentConfig, selector, scope.namespace)
	})
	if err != nil {
		return nil, err
	}
	if found {
		if err := s.applyDeploymentConfig(status, dc); err != nil {
			return nil, err
		}
	}

	if status.BuildStatus == nil && status.TTL == nil {
		return nil, &NotFoundError{Kind: KindBook, ID: id}
	}
	return status, nil
}

func (s *BookService) applyDeploymentConfig(status *BookStatus, dc *unstructured.Unstructured) error {
	annotations, _, _ := unstructured.NestedStringMap(dc.Object, "spec", "template", "metadata", "annotations")
	status.GitBranch = annotation(annotations, annotationRepoBranch)
	status.BookPath = annotation(annotations, annotationBookPath)
	status.RepoURL = annotation(annotations, annotationRepoURL)

	configured, err := parseTTLLabel(dc.GetLabels()[labelTTL])
	if err != nil {
		return fmt.Errorf("deployment config %s: %w", dc.GetName(), err)
	}
	ttl := remainingTTL(configured, dc.GetCreationTimestamp().Time, s.clock.Now())
	status.TTL = &ttl
	return nil
}

func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	found, err := deleteCreated(ctx, s.client, KindBook, id, s.config.BuildNamespace, s.logger)
	if err != nil {
		return err
	}
	if !found {
		return &NotFoundError{Kind: KindBook, ID: id}
	}
	s.logger.Info("book deleted", zap.String("build_id", id))
	return nil
}

// routeHost returns status.ingress[0].host, nil until the route is admitted.
func routeHost(route *unstructured.Unstructured) *string {
	ingress, _, _ := unstructured.NestedSlice(route.Object, "status", "ingress")
	if len(ingress) == 0 {
		return nil
	}
	first, ok := ingress[0].(map[string]interface{})
	if !ok {
		return nil
	}
	host, ok := first["host"].(string)
	if !ok || host == "" {
		return nil
	}
	return &host
}

func annotation(annotations map[string]string, key string) *string {
	value, ok := annotations[key]
	if !ok {
		return nil
	}
	return &value
}
