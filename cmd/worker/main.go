// Command worker runs the hold expiry sweeper and the booking event
// consumer outside the API process.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/iliyamo/vehicle-seat-reservation/internal/config"
	"github.com/iliyamo/vehicle-seat-reservation/internal/database"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
	"github.com/iliyamo/vehicle-seat-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("connect database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewSweeper(repository.NewBookingRepo(db), cfg.SweepInterval,
		service.WithLogger(log),
		service.WithEventPublisher(queue.NewPublisher(cfg.AMQPURL, cfg.EventsQueue, log)),
	)
	if err := sweeper.Start(); err != nil {
		log.WithError(err).Fatal("start sweeper")
	}

	consumer := queue.NewConsumer(cfg.AMQPURL, cfg.EventsQueue, cfg.EventsLogPath, log)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("booking consumer stopped")
	}

	<-sweeper.Stop().Done()
	log.Info("worker stopped")
}
