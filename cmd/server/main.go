// Package main StoryWeave API 服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storyweave-api/internal/application/orchestration"
	"storyweave-api/internal/application/story"
	"storyweave-api/internal/application/usage"
	"storyweave-api/internal/application/user"
	"storyweave-api/internal/config"
	"storyweave-api/internal/infrastructure/messaging"
	"storyweave-api/internal/infrastructure/persistence/postgres"
	"storyweave-api/internal/infrastructure/persistence/redis"
	"storyweave-api/internal/infrastructure/provider"
	"storyweave-api/internal/interfaces/http/handler"
	"storyweave-api/internal/interfaces/http/router"
	"storyweave-api/pkg/logger"
	"storyweave-api/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 死信队列积压告警阈值
const dlqAlertThreshold = 100

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting storyweave-api",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 初始化 PostgreSQL
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to connect postgres", err)
	}
	defer pgClient.Close()

	// 初始化 Redis
	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to connect redis", err)
	}
	defer redisClient.Close()

	// 仓储与事务管理
	userRepo := postgres.NewUserRepository(pgClient)
	contentRepo := postgres.NewStoryContentRepository(pgClient)
	choiceRepo := postgres.NewStoryChoiceRepository(pgClient)
	usageRepo := postgres.NewUsageEventRepository(pgClient)
	txManager := postgres.NewTxManager(pgClient)

	// 故事仓储带 Redis 读缓存
	cache := redis.NewCache(redisClient)
	storyRepo := redis.NewCachedStoryRepository(postgres.NewStoryRepository(pgClient), cache, 5*time.Minute)

	// 限流器
	rateLimiter := redis.NewRateLimiter(redisClient)

	// 用量事件流：生成链路异步发布，后台消费者落库
	producer := messaging.NewProducer(redisClient.Redis(), 0)
	usagePublisher := messaging.NewUsagePublisher(producer)

	consumerName, _ := os.Hostname()
	if consumerName == "" {
		consumerName = "storyweave-server"
	}
	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:       messaging.StreamUsageEvents,
		Group:        messaging.ConsumerGroupUsageWriter,
		ConsumerName: consumerName,
	})
	messaging.RegisterUsageHandler(consumer, usage.NewRecorder(usageRepo))
	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start usage consumer", err)
	}
	defer consumer.Stop()
	go consumer.MonitorDLQ(ctx, dlqAlertThreshold)

	// 提供商注册表：按配置注册（当前为内置模拟提供商，
	// 接入真实 SDK 时在此替换构造函数）
	registry := orchestration.NewRegistry(&cfg.AI)
	for name, pc := range cfg.AI.Providers {
		if err := registry.Register(provider.NewMock(name, pc)); err != nil {
			logger.Fatal(ctx, "failed to register provider", err)
		}
	}

	// 生成编排器
	statuses := orchestration.NewStatusCache()
	orchestrator := orchestration.NewOrchestrator(registry, statuses, &cfg.AI, rateLimiter, usagePublisher)

	// 提供商状态监控
	monitor := orchestration.NewStatusMonitor(orchestrator, registry, cfg.AI.HealthCheckInterval)
	monitor.Start(ctx)
	defer monitor.Stop()

	// 应用服务
	userService := user.NewService(userRepo)
	storyService := story.NewService(storyRepo, contentRepo, choiceRepo, userRepo, txManager)

	// HTTP 处理器与路由
	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient, Version),
		Generation: handler.NewGenerationHandler(orchestrator),
		Provider:   handler.NewProviderHandler(orchestrator, registry),
		Story:      handler.NewStoryHandler(storyService, orchestrator),
		User:       handler.NewUserHandler(userService),
		Usage:      handler.NewUsageHandler(usage.NewQuery(usageRepo)),
	}
	r := router.New(cfg, handlers, rateLimiter)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
