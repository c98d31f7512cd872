package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hub-notifier/internal/config"
	"hub-notifier/internal/fcm"
	"hub-notifier/internal/messaging"
	"hub-notifier/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to optional .env file")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "json", Service: "hub-notifier-worker"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := cfg.ValidateWorker(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}
	zapLogger.Info("Worker configuration loaded",
		zap.Stringer("fcmState", cfg.FCM.State()),
		zap.String("fcmDriver", cfg.FCM.Driver),
		zap.String("queue", cfg.RabbitMQ.PushQueueName),
		zap.Int("concurrency", cfg.Worker.Concurrency),
	)

	var rdb redis.Cmdable
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		rdb = client
	}

	sender, err := fcm.NewSender(context.Background(), cfg.FCM, rdb, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize push sender", zap.Error(err))
	}

	conn, err := messaging.Connect(cfg.RabbitMQ.URI, 50, 5*time.Second, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	processor := messaging.NewProcessor(sender, cfg.Worker.MessageTimeout, zapLogger)
	consumer := messaging.NewConsumer(conn, cfg.RabbitMQ.PushQueueName, cfg.Worker.Concurrency, processor, zapLogger)

	healthSrv := startHealthServer(cfg.Worker.HealthCheckPort, zapLogger)

	consumerErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting push job consumer")
		consumerErr <- consumer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zapLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))
		consumer.Stop()
		if err := <-consumerErr; err != nil {
			zapLogger.Error("Consumer stopped with error", zap.Error(err))
		}
	case err := <-consumerErr:
		if err != nil {
			zapLogger.Error("Consumer stopped with error, shutting down", zap.Error(err))
		} else {
			zapLogger.Info("Consumer stopped, shutting down")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Health server shutdown failed", zap.Error(err))
	}
	zapLogger.Info("Worker stopped")
}

// startHealthServer поднимает /health и /metrics воркера.
func startHealthServer(port string, logger *zap.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting health server", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Health server listen error", zap.Error(err))
		}
	}()
	return srv
}
