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
	"hub-notifier/internal/events"
	"hub-notifier/internal/fcm"
	"hub-notifier/internal/handler"
	"hub-notifier/internal/messaging"
	"hub-notifier/internal/repository"
	"hub-notifier/internal/service"
	"hub-notifier/pkg/authutils"
	"hub-notifier/pkg/database"
	"hub-notifier/pkg/logger"
	"hub-notifier/pkg/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to optional .env file")
	flag.Parse()

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: "json", Service: "hub-notifier"})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	if err := cfg.ValidateServer(); err != nil {
		zapLogger.Fatal("Invalid configuration", zap.Error(err))
	}
	zapLogger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("dispatchMode", cfg.Dispatch.Mode),
		zap.Stringer("fcmState", cfg.FCM.State()),
		zap.String("fcmDriver", cfg.FCM.Driver),
		zap.String("defaultLocale", cfg.DefaultLocale),
		zap.Duration("writeTimeout", cfg.WriteTimeout()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.Database.URL}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	var rdb redis.Cmdable
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis is unreachable, token cache falls back to fresh exchanges", zap.Error(err))
		}
		rdb = client
	}

	sender, err := fcm.NewSender(ctx, cfg.FCM, rdb, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize push sender", zap.Error(err))
	}

	var dispatcher service.Dispatcher
	switch cfg.Dispatch.Mode {
	case config.DispatchQueue:
		conn, err := messaging.Connect(cfg.RabbitMQ.URI, 10, 3*time.Second, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		publisher, err := messaging.NewPushJobPublisher(conn, cfg.RabbitMQ.PushQueueName, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create push job publisher", zap.Error(err))
		}
		dispatcher = service.NewQueueDispatcher(publisher, zapLogger)
	default:
		dispatcher = service.NewInlineDispatcher(sender, zapLogger)
	}

	hubRepo := repository.NewHubRepository(pool, zapLogger)
	deviceRepo := repository.NewDeviceRepository(pool, zapLogger)
	router := events.NewRouter(hubRepo, cfg.DefaultLocale, zapLogger)
	notifySvc := service.NewNotifyService(hubRepo, deviceRepo, router, dispatcher, zapLogger)

	verifier, err := authutils.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create JWT verifier", zap.Error(err))
	}
	httpHandler := handler.NewHTTPHandler(notifySvc, verifier.VerifyToken, zapLogger)

	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	engine := gin.New()
	engine.Use(middleware.GinZapLogger(zapLogger))
	engine.Use(gin.Recovery())
	engine.Use(cors.New(corsConfig(cfg.GetAllowedOrigins())))

	httpHandler.RegisterRoutes(engine)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exited")
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	c.MaxAge = 12 * time.Hour
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
