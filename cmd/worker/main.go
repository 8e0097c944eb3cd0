package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"callintake_backend/internal/notification"
	"callintake_backend/internal/scheduler"
	"callintake_backend/platform/config"
	"callintake_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.QueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender notification.Sender
	if cfg.GetEmailEnabled() {
		sender = notification.NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
			cfg.GetDispatchEmail(),
		)
	} else {
		log.Warn("SMTP_HOST not configured; follow-up emails will be skipped")
	}

	worker, err := scheduler.NewWorker(cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize follow-up worker", "error", err)
		panic("failed to initialize follow-up worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
