package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/chezflora/flora-admin/internal/audit"
	jobmetrics "github.com/chezflora/flora-admin/internal/jobs"
)

// Pruner trims the audit trail on schedule.
type Pruner struct {
	logger    *slog.Logger
	store     *audit.Store
	retention time.Duration
	metrics   *jobmetrics.Metrics
}

// NewPruner constructs a Pruner.
func NewPruner(logger *slog.Logger, store *audit.Store, retention time.Duration) *Pruner {
	return &Pruner{logger: logger, store: store, retention: retention, metrics: jobmetrics.NewMetrics(nil)}
}

// HandlePrune processes TaskAuditPrune tasks.
func (p *Pruner) HandlePrune(ctx context.Context, _ *asynq.Task) error {
	tracker := p.metrics.Track("audit_prune")
	removed, err := p.store.Prune(ctx, p.retention)
	if err != nil {
		return tracker.End(err)
	}
	p.logger.Info("audit trail pruned", "removed", removed, "retention", p.retention)
	return tracker.End(nil)
}
