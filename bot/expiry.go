package bot

import (
	"context"

	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/sotlfg/lfgbot/bot/listing"
	"github.com/sotlfg/lfgbot/core/logger"
)

// expiryJob periodically deactivates expired listings and removes their
// channel posts.
type expiryJob struct {
	svc  *listing.Service
	cron *cron.Cron
}

func newExpiryJob(svc *listing.Service) *expiryJob {
	return &expiryJob{
		svc:  svc,
		cron: cron.New(),
	}
}

// Start schedules the sweep. An empty schedule disables it.
func (j *expiryJob) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		return nil
	}
	_, err := j.cron.AddFunc(schedule, func() {
		n, err := j.svc.ExpireSweep(ctx)
		if err != nil {
			logger.Warn(ctx, "service.listings", "expiry.sweep",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			return
		}
		if n > 0 {
			logger.Info(ctx, "service.listings", "expiry.sweep",
				slog.String("status", "ok"),
				slog.Int("expired", n),
			)
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *expiryJob) Stop() {
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
}
