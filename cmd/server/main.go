package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/solmara/resort-reservation/internal/booking"
	"github.com/solmara/resort-reservation/internal/config"
	"github.com/solmara/resort-reservation/internal/database"
	"github.com/solmara/resort-reservation/internal/handler"
	"github.com/solmara/resort-reservation/internal/middleware"
	"github.com/solmara/resort-reservation/internal/notification"
	"github.com/solmara/resort-reservation/internal/queue"
	"github.com/solmara/resort-reservation/internal/repository"
	"github.com/solmara/resort-reservation/internal/router"
	queue_publisher "github.com/solmara/resort-reservation/internal/service"
	"github.com/solmara/resort-reservation/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	var log *zap.Logger
	var err error
	if cfg.Env == "prod" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	// Repositories and domain services.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	reservations := repository.NewReservationRepo(db)
	broadcasts := repository.NewBroadcastRepo(db)
	bookingStore := repository.NewBookingStore(db)

	publisher := queue_publisher.New(log)
	ledger := booking.NewLedger(bookingStore, utils.NewCodeGenerator(), publisher, log, cfg.BookingTimeout)
	notifRouter := notification.NewRouter(broadcasts)

	// Optional Redis-backed middleware. Nil client disables both.
	rdb := config.NewRedisClient()
	var limiter, cache echo.MiddlewareFunc
	if rdb != nil {
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	} else {
		log.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(venues), cache)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterMember(e,
		handler.NewBookingHandler(ledger, reservations, log),
		handler.NewNotificationHandler(notifRouter),
		cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(venues, users, broadcasts), cfg.JWTSecret)

	// Background consumer appends confirmed reservations to the audit log.
	go func() {
		if err := queue.StartReservationConsumer(log); err != nil {
			log.Error("reservation consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
