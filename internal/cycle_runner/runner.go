package cycle_runner

import (
	"context"

	"replydesk/internal/repository"
	"replydesk/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner periodically runs the full review cycle for every known user.
type Runner struct {
	cron     *cron.Cron
	spec     string
	settings repository.SettingsRepository
	cycle    service.CycleService
	logger   *zap.Logger
}

func NewRunner(spec string, settings repository.SettingsRepository, cycle service.CycleService, logger *zap.Logger) *Runner {
	return &Runner{
		cron:     cron.New(),
		spec:     spec,
		settings: settings,
		cycle:    cycle,
		logger:   logger,
	}
}

// Start schedules the cycle and blocks until the context is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.runAll(ctx) }); err != nil {
		return err
	}

	r.logger.Info("Cycle runner started", zap.String("spec", r.spec))
	r.cron.Start()

	<-ctx.Done()
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.logger.Info("Cycle runner stopped")
	return nil
}

func (r *Runner) runAll(ctx context.Context) {
	userIDs, err := r.settings.ListUserIDs()
	if err != nil {
		r.logger.Error("Failed to list users for scheduled cycle", zap.Error(err))
		return
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return
		}
		summary, err := r.cycle.RunCycle(ctx, userID)
		if err != nil {
			r.logger.Error("Scheduled cycle failed", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		r.logger.Info("Scheduled cycle completed",
			zap.String("user_id", userID),
			zap.Int("new_reviews", summary.NewReviewsFetched),
			zap.Int("replies_generated", summary.RepliesGenerated),
			zap.Int("replies_sent", summary.RepliesSent))
	}
}
