package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/kanban/backend/internal/audit"
	"github.com/example/kanban/backend/internal/cache"
	"github.com/example/kanban/backend/internal/config"
	"github.com/example/kanban/backend/internal/db"
	"github.com/example/kanban/backend/internal/directory"
	httpserver "github.com/example/kanban/backend/internal/http"
	"github.com/example/kanban/backend/internal/logger"
	"github.com/example/kanban/backend/internal/models"
	"github.com/example/kanban/backend/internal/mq"
	"github.com/example/kanban/backend/internal/repository"
	"github.com/example/kanban/backend/internal/service"
	"github.com/example/kanban/backend/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Error("connect database", "error", err)
		os.Exit(1)
	}
	autoMigrate(database, log)

	var publisher mq.Publisher
	rabbit, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQTicketExchange)
	if err != nil {
		log.Warn("rabbitmq unavailable, continuing without events", "error", err)
	} else {
		publisher = rabbit
	}

	var consumer *mq.RabbitConsumer
	if publisher != nil {
		consumer, err = mq.NewRabbitConsumer(cfg.MQURL, cfg.MQTicketExchange, cfg.MQTicketQueue)
		if err != nil {
			log.Warn("event audit consumer unavailable", "error", err)
			consumer = nil
		} else if err := consumer.Consume(audit.NewAuditor(log).Handle); err != nil {
			log.Warn("start event audit consumer", "error", err)
		}
	}

	ticketCache := newTicketCache(cfg, log)

	ticketRepo := repository.NewTicketRepository(database)
	ticketService := service.NewTicketService(ticketRepo, ticketCache, publisher, log)
	apiServer := httpserver.NewServer(ticketService)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dir := directory.NewClient(cfg.ProjectServiceURL, cfg.MemberServiceURL)
	reconciler := worker.NewReconciler(ticketRepo, dir, publisher, cfg.ReconcileInterval, cfg.ReconcileBatchSize, log)
	go reconciler.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown error", "error", err)
	}

	if consumer != nil {
		_ = consumer.Close()
	}
	if rabbit != nil {
		_ = rabbit.Close()
	}
	log.Info("bye")
}

func autoMigrate(database *gorm.DB, log *slog.Logger) {
	if err := database.AutoMigrate(&models.Ticket{}); err != nil {
		log.Error("auto migrate", "error", err)
		os.Exit(1)
	}
}

func newTicketCache(cfg config.Config, log *slog.Logger) *cache.TicketCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, continuing without cache", "error", err)
		return nil
	}
	return cache.NewTicketCache(client, "ticket:", 5*time.Minute)
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
