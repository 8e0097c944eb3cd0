package scheduler

import (
	"context"
	"fmt"

	"callintake_backend/internal/notification"
	"callintake_backend/platform/config"
	"callintake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// WorkerConfig combines the config interfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	config.EmailConfig
}

type Worker struct {
	server        *asynq.Server
	mux           *asynq.ServeMux
	sender        notification.Sender
	dispatchEmail string
	log           *logger.Logger
}

func NewWorker(cfg WorkerConfig, sender notification.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetWorkerConcurrency()
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
		server:        server,
		mux:           mux,
		sender:        sender,
		dispatchEmail: cfg.GetDispatchEmail(),
		log:           log,
	}

	mux.HandleFunc(TaskCallFollowUp, w.handleCallFollowUp)

	return w, nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("follow-up worker stopped", "error", err)
	}
}

func (w *Worker) handleCallFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCallFollowUpPayload(task)
	if err != nil {
		return err
	}

	if w.sender == nil || w.dispatchEmail == "" {
		w.log.Info("follow-up skipped, email disabled", "call_id", payload.CallID)
		return nil
	}

	if err := w.sender.SendFollowUp(ctx, w.dispatchEmail, payload.Record); err != nil {
		w.log.Error("failed to send follow-up", "call_id", payload.CallID, "error", err)
		return err
	}

	w.log.Info("follow-up sent", "call_id", payload.CallID)
	return nil
}
