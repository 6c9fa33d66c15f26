package build

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/elskow/moldavite/internal/cluster"
)

// lookupScope carries what every per-resource lookup of one status request shares.
type lookupScope struct {
	kind      Kind
	id        string
	namespace string
	logger    *zap.Logger
}

// lookup runs fn and turns cluster.ErrNotFound into an absent value.
// Any other error is returned unchanged.
func lookup[T any](s lookupScope, resource string, fn func() (T, error)) (T, bool, error) {
	var zero T

	value, err := fn()
	switch {
	case err == nil:
		statusLookupsTotal.WithLabelValues(string(s.kind), resource, outcomeFound).Inc()
		return value, true, nil
	case errors.Is(err, cluster.ErrNotFound):
		statusLookupsTotal.WithLabelValues(string(s.kind), resource, outcomeAbsent).Inc()
		s.logger.Warn("resource not found",
			zap.String("resource", resource),
			zap.String("build_id", s.id),
			zap.String("namespace", s.namespace),
			zap.Error(err))
		return zero, false, nil
	default:
		statusLookupsTotal.WithLabelValues(string(s.kind), resource, outcomeFailed).Inc()
		return zero, false, fmt.Errorf("failed to look up %s of %s: %w", resource, s.id, err)
	}
}

func (s lookupScope) workflowStatus(ctx context.Context, client cluster.ResourceClient) (*cluster.WorkflowStatusReport, error) {
	report, _, err := lookup(s, cluster.Workflow.Kind, func() (*cluster.WorkflowStatusReport, error) {
		return client.GetWorkflowStatus(ctx, s.id, s.namespace)
	})
	return report, err
}

// deleteCreated removes every kind a build creates, stopping at the first
// failure. Whatever was already deleted stays deleted.
func deleteCreated(ctx context.Context, client cluster.ResourceClient, kind Kind, id, namespace string, logger *zap.Logger) (bool, error) {
	found := false
	selector := cluster.BuildSelector(id)

	for _, resource := range cluster.CreatedResources {
		deleted, err := client.DeleteAll(ctx, resource, selector, namespace)
		if deleted > 0 {
			found = true
			deletedResourcesTotal.WithLabelValues(string(kind), resource.Kind).Add(float64(deleted))
		}
		if err != nil {
			logger.Error("failed to delete resources",
				zap.String("build_id", id),
				zap.String("kind", resource.Kind),
				zap.Int("deleted", deleted),
				zap.Error(err))
			return found, fmt.Errorf("failed to delete %s resources of %s: %w", resource.Kind, id, err)
		}
	}

	return found, nil
}

// parseTTLLabel reads a label such as "86400s".
func parseTTLLabel(value string) (int64, error) {
	trimmed := strings.TrimRightFunc(value, func(r rune) bool { return !unicode.IsDigit(r) })
	if trimmed == "" || len(value)-len(trimmed) > 1 {
		return 0, fmt.Errorf("invalid ttl label %q", value)
	}

	seconds, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl label %q: %w", value, err)
	}
	return seconds, nil
}

// remainingTTL floors at zero; partial seconds are dropped.
func remainingTTL(configured int64, created, now time.Time) int64 {
	elapsed := now.Sub(created)
	remaining := configured - int64(elapsed/time.Second)
	if elapsed%time.Second > 0 {
		remaining--
	}
	if remaining <= 0 {
		return 0
	}
	return remaining
}
