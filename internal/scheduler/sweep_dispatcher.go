package scheduler

import (
	"context"
	"time"

	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

const defaultSweepInterval = time.Hour

// SweepDispatcher enqueues the periodic conversation abandon sweep. It only
// schedules work; the worker performs the sweep.
type SweepDispatcher struct {
	client   *Client
	interval time.Duration
	maxIdle  time.Duration
	log      *logger.Logger
}

func NewSweepDispatcher(client *Client, cfg config.SchedulerConfig, sweep config.SweepConfig, log *logger.Logger) *SweepDispatcher {
	interval := cfg.GetSweepInterval()
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &SweepDispatcher{
		client:   client,
		interval: interval,
		maxIdle:  sweep.GetAbandonAfter(),
		log:      log,
	}
}

func (d *SweepDispatcher) Run(ctx context.Context) {
	if d == nil || d.client == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *SweepDispatcher) dispatch(ctx context.Context) {
	err := d.client.EnqueueAbandonSweep(ctx, AbandonSweepPayload{MaxIdle: d.maxIdle})
	if err != nil {
		d.log.Warn("failed to enqueue abandon sweep", "error", err.Error())
		return
	}
	d.log.Debug("abandon sweep enqueued", "max_idle", d.maxIdle.String())
}
