package transitfusion

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/transit-fusion/errs"
)

const refreshTimeout = 10 * time.Minute

// Refresher periodically re-downloads and reloads the current agency's schedule.
type Refresher struct {
	svc    *Service
	cron   *cron.Cron
	logger *zap.Logger
}

// NewRefresher schedules refreshes with a standard five-field cron expression.
func NewRefresher(svc *Service, schedule string) (*Refresher, error) {
	r := &Refresher{
		svc:    svc,
		cron:   cron.New(),
		logger: svc.logger.With(zap.String("component", "refresher")),
	}
	if _, err := r.cron.AddFunc(schedule, r.RunOnce); err != nil {
		return nil, errs.Wrap(errs.ErrInvalidConfig, err, "refresh schedule %q", schedule)
	}
	return r, nil
}

// Start begins running scheduled refreshes in the background.
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("refresher started", zap.Time("next", r.Next()))
}

// Stop halts scheduling and waits for a running refresh to finish or ctx to end.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// Next reports when the next refresh fires.
func (r *Refresher) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce refreshes the currently loaded agency. Nothing happens before the first load.
func (r *Refresher) RunOnce() {
	code := r.svc.store.AgencyCode()
	if code == "" {
		r.logger.Debug("no agency loaded, skipping refresh")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := r.svc.Refresh(ctx, code); err != nil {
		r.logger.Error("schedule refresh failed, keeping previous dataset",
			zap.String("agency", code),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("schedule refreshed",
		zap.String("agency", code),
		zap.Duration("duration", time.Since(start)),
	)
}
