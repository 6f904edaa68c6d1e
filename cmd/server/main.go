// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot-go/internal/agent"
	"taskpilot-go/internal/config"
	"taskpilot-go/internal/handler"
	"taskpilot-go/internal/middleware"
	"taskpilot-go/internal/model"
	"taskpilot-go/internal/repository"
	"taskpilot-go/internal/service"
	"taskpilot-go/pkg/database"
	"taskpilot-go/pkg/events"
	"taskpilot-go/pkg/llm"
	"taskpilot-go/pkg/log"
	"taskpilot-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 同步表结构（生产环境应使用独立的迁移工具）
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		log.Fatal("数据库表结构同步失败", err)
	}

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	taskRepo := repository.NewTaskRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	// 5. 初始化事件生产者和 LLM 客户端
	var producer events.Producer
	if cfg.Kafka.Enabled {
		producer = events.NewKafkaProducer(cfg.Kafka)
	} else {
		producer = events.NewNoopProducer()
	}
	defer producer.Close()
	llmClient := llm.NewClient(cfg.OpenAI)

	// 6. 初始化 Service 和代理 (依赖注入，没有全局单例)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, jwtManager, database.RDB)
	taskService := service.NewTaskService(taskRepo, producer)
	registry := agent.NewTaskToolRegistry(taskService)
	executor := agent.NewExecutor(llmClient, registry)
	chatService := service.NewChatService(conversationRepo, messageRepo, executor, cfg.Chat.HistoryLimit)
	conversationService := service.NewConversationService(conversationRepo)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	api := r.Group("/api")
	{
		// Auth 路由组
		auth := api.Group("/auth")
		{
			auth.POST("/register", handler.NewUserHandler(userService).Register)
			auth.POST("/login", handler.NewUserHandler(userService).Login)
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)

			authed := auth.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.POST("/logout", handler.NewAuthHandler(userService).Logout)
			}
		}

		// Task 路由组，需要认证
		tasks := api.Group("/tasks")
		tasks.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			taskHandler := handler.NewTaskHandler(taskService)
			tasks.GET("/stats", taskHandler.Stats)
			tasks.GET("", taskHandler.List)
			tasks.POST("", taskHandler.Create)
			tasks.GET("/:id", taskHandler.Get)
			tasks.PUT("/:id", taskHandler.Update)
			tasks.DELETE("/:id", taskHandler.Delete)
			tasks.PATCH("/:id/toggle-complete", taskHandler.ToggleComplete)
		}

		// Chat 路由，需要认证
		chat := api.Group("/chat")
		chat.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			chat.POST("", handler.NewChatHandler(chatService).Chat)
		}

		// Conversation 路由组，需要认证
		conversations := api.Group("/conversations")
		conversations.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			conversations.GET("", handler.NewConversationHandler(conversationService).List)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
