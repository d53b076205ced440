package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/luizpibo/WorkHub-AI/platform/config"
	"github.com/luizpibo/WorkHub-AI/platform/logger"
)

// ConversationSweeper closes conversations that have been idle too long.
type ConversationSweeper interface {
	SweepAbandoned(ctx context.Context, maxIdle time.Duration) (int, error)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper ConversationSweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper ConversationSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		sweeper: sweeper,
		log:     log,
	}

	mux.HandleFunc(TaskConversationAbandonSweep, w.handleAbandonSweep)

	return w, nil
}

func (w *Worker) handleAbandonSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAbandonSweepPayload(task)
	if err != nil {
		return err
	}
	if payload.MaxIdle <= 0 {
		w.log.Warn("abandon sweep skipped, non-positive max idle", "max_idle", payload.MaxIdle.String())
		return nil
	}

	closed, err := w.sweeper.SweepAbandoned(ctx, payload.MaxIdle)
	if err != nil {
		return err
	}
	if closed > 0 {
		w.log.Info("abandon sweep completed", "closed", closed, "max_idle", payload.MaxIdle.String())
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err.Error())
	}
}
