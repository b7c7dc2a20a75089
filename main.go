package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"

	"github.com/polymathuniversata/toDoApp/internal/cache"
	"github.com/polymathuniversata/toDoApp/internal/config"
	"github.com/polymathuniversata/toDoApp/internal/database"
	"github.com/polymathuniversata/toDoApp/internal/handlers"
	"github.com/polymathuniversata/toDoApp/internal/middleware"
	"github.com/polymathuniversata/toDoApp/internal/monitoring"
	"github.com/polymathuniversata/toDoApp/internal/services"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	handlers.SetProduction(cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}

	db, err := database.Connect(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logLevel,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("database connected")

	stateCache := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer stateCache.Close()

	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	registerService := services.NewRegisterService(cfg.Auth.BCryptCost)
	authService := services.NewAuthService()
	taskService := services.NewTaskService()
	oauthBroker := services.NewOAuthBroker(cfg.Google, stateCache)

	authHandler := handlers.NewAuthHandler(db, registerService, authService, tokenService)
	googleHandler := handlers.NewGoogleAuthHandler(db, oauthBroker, tokenService, cfg.Server.FrontendURL)
	taskHandler := handlers.NewTaskHandler(db, taskService)
	calendarHandler := handlers.NewCalendarHandler(db, oauthBroker)

	metrics := monitoring.NewMetrics()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.TokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}

	authRequired := middleware.AuthRequired(db, tokenService)

	api := router.Group("/api")
	{
		api.GET("/health", handlers.Health)
		api.GET("/metrics", metrics.Handler())

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/google", googleHandler.Consent)
			auth.GET("/google/callback", googleHandler.Callback)
			auth.GET("/current_user", authRequired, authHandler.CurrentUser)
		}

		tasks := api.Group("/tasks", authRequired)
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		cal := api.Group("/calendar", authRequired)
		{
			cal.GET("/events", calendarHandler.GetEvents)
			cal.POST("/events", calendarHandler.CreateEvent)
			cal.PUT("/events/:eventId", calendarHandler.UpdateEvent)
			cal.DELETE("/events/:eventId", calendarHandler.DeleteEvent)
			cal.GET("/sync-status", calendarHandler.SyncStatus)
			cal.POST("/toggle-sync", calendarHandler.ToggleSync)
		}
	}

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("server stopped")
}
