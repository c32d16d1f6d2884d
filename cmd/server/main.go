package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-seat-reservation/internal/cache"
	"github.com/iliyamo/vehicle-seat-reservation/internal/config"
	"github.com/iliyamo/vehicle-seat-reservation/internal/database"
	"github.com/iliyamo/vehicle-seat-reservation/internal/handler"
	"github.com/iliyamo/vehicle-seat-reservation/internal/pricing"
	"github.com/iliyamo/vehicle-seat-reservation/internal/queue"
	"github.com/iliyamo/vehicle-seat-reservation/internal/repository"
	"github.com/iliyamo/vehicle-seat-reservation/internal/router"
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

	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("migrate schema")
	}

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	layoutRepo := repository.NewLayoutRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithHoldTTL(cfg.HoldTTL),
		service.WithEventPublisher(queue.NewPublisher(cfg.AMQPURL, cfg.EventsQueue, log)),
		service.WithStatisticsCache(cache.NewStatisticsCache(rdb, cfg.StatsCacheTTL)),
	}
	layouts := service.NewLayoutService(layoutRepo, pricing.NewCalculator(cfg.SeatBasePrice), opts...)
	seatMaps := service.NewSeatMapService(layoutRepo, bookingRepo, opts...)
	reservations := service.NewReservationService(layoutRepo, bookingRepo, opts...)
	stats := service.NewStatisticsService(bookingRepo, opts...)
	sweeper := service.NewSweeper(bookingRepo, cfg.SweepInterval, opts...)

	if cfg.SweeperInServer {
		if err := sweeper.Start(); err != nil {
			log.WithError(err).Fatal("start sweeper")
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	e := router.New(router.Handlers{
		Layouts:  handler.NewLayoutHandler(layouts, log),
		Bookings: handler.NewBookingHandler(seatMaps, reservations, log),
		Reports:  handler.NewReportHandler(stats, sweeper, log),
		DB:       db,
	}, router.Options{
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		Redis:          rdb,
		RateLimit:      config.LoadRateLimitConfig(),
		Cache:          config.LoadCacheConfig(),
		Log:            log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown")
	}
}
