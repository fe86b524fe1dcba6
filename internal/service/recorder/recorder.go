// Package recorder writes the audit trail of agent runs. It sits behind the
// TaskObserver interface, so a broken database slows nothing down and aborts
// nothing: failures are logged and dropped.
package recorder

import (
	"context"

	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/log"
)

type Recorder struct {
	repo core.AuditRepository
}

func New(repo core.AuditRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) OnStep(ctx context.Context, runID string, iteration int, step core.EpisodeStep) {
	if err := r.repo.InsertStep(ctx, runID, iteration, step); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("run_id", runID).Msg("failed to audit step")
	}
}

func (r *Recorder) OnFinish(ctx context.Context, runID string, task string, status string, iterations int) {
	if err := r.repo.InsertRun(ctx, runID, task, status, iterations); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("run_id", runID).Msg("failed to audit run")
	}
}
