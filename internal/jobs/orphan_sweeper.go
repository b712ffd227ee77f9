package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds one sweep run.
const sweepTimeout = 2 * time.Minute

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// OrphanStore removes comments, replies and likes whose parent row is gone.
type OrphanStore interface {
	DeleteOrphans(ctx context.Context) (models.SweepResult, error)
}

// OrphanSweeper runs DeleteOrphans on a cron schedule.
type OrphanSweeper struct {
	store OrphanStore
	sched *cron.Cron
}

// NewOrphanSweeper validates the schedule (e.g. "@every 1h" or "0 */6 * * *")
// and registers the sweep. Nothing runs until Start.
func NewOrphanSweeper(store OrphanStore, schedule string) (*OrphanSweeper, error) {
	s := &OrphanSweeper{
		store: store,
		sched: cron.New(cron.WithParser(cronParser)),
	}
	if _, err := s.sched.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("orphan sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start launches the scheduler in its own goroutine.
func (s *OrphanSweeper) Start() {
	s.sched.Start()
	zap.L().Info("Orphan sweeper started", zap.Int("jobs", len(s.sched.Entries())))
}

// Stop halts the scheduler and waits for a running sweep to finish or ctx to end.
func (s *OrphanSweeper) Stop(ctx context.Context) {
	select {
	case <-s.sched.Stop().Done():
	case <-ctx.Done():
		zap.L().Warn("Orphan sweeper did not stop in time")
	}
}

// RunOnce performs one sweep and logs what it removed.
func (s *OrphanSweeper) RunOnce(ctx context.Context) (models.SweepResult, error) {
	res, err := s.store.DeleteOrphans(ctx)
	if err != nil {
		zap.L().Error("Orphan sweep failed", zap.Error(err))
		return res, err
	}
	if res.Total() > 0 {
		zap.L().Info("Orphan sweep removed rows",
			zap.Int64("comments", res.Comments),
			zap.Int64("replies", res.Replies),
			zap.Int64("productLikes", res.ProductLikes),
			zap.Int64("commentLikes", res.CommentLikes),
		)
	} else {
		zap.L().Debug("Orphan sweep found nothing")
	}
	return res, nil
}

func (s *OrphanSweeper) run() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	_, _ = s.RunOnce(ctx)
}
