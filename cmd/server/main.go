package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lune-yoga/backend/config"
	"github.com/lune-yoga/backend/internal/auth"
	"github.com/lune-yoga/backend/internal/bookings"
	"github.com/lune-yoga/backend/internal/classes"
	"github.com/lune-yoga/backend/internal/comments"
	"github.com/lune-yoga/backend/internal/lunar"
	"github.com/lune-yoga/backend/internal/mailer"
	"github.com/lune-yoga/backend/internal/middleware"
	"github.com/lune-yoga/backend/internal/models"
	"github.com/lune-yoga/backend/internal/news"
	"github.com/lune-yoga/backend/pkg/database"
	"github.com/lune-yoga/backend/pkg/queue"
	"github.com/lune-yoga/backend/pkg/redis"
	"github.com/lune-yoga/backend/pkg/response"
)

func main() {
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("migrations applied")

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	emailQueue := queue.NewQueue(redisClient.Client, logger)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	classRepo := classes.NewRepository(pool)
	classHandler := classes.NewHandler(classRepo, logger)

	bookingRepo := bookings.NewRepository(pool)
	bookingService := bookings.NewService(bookingRepo, logger)
	bookingHandler := bookings.NewHandler(bookingService, emailQueue, logger)

	newsRepo := news.NewRepository(pool)
	newsHandler := news.NewHandler(newsRepo, logger)

	commentRepo := comments.NewRepository(pool)
	commentHandler := comments.NewHandler(commentRepo, logger)

	emailLogRepo := mailer.NewRepository(pool)
	emailLogHandler := mailer.NewHandler(emailLogRepo, logger)

	lunarClient := lunar.NewClient(cfg.Lunar.SourceURL, time.Duration(cfg.Lunar.TimeoutSec)*time.Second, logger)
	lunarHandler := lunar.NewHandler(lunarClient, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})
	router.GET("/lunar", lunarHandler.Get)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	profile := router.Group("/profile", middleware.JWT(jwtService))
	{
		profile.GET("", authHandler.Profile)
		profile.PATCH("", authHandler.UpdateProfile)
	}

	adminOnly := middleware.RequireRole(string(models.RoleAdmin))

	classGroup := router.Group("/classes")
	{
		classGroup.GET("", classHandler.List)
		classGroup.GET("/:id", classHandler.GetByID)
		classGroup.POST("", middleware.JWT(jwtService), adminOnly, classHandler.Create)
		classGroup.PATCH("/:id", middleware.JWT(jwtService), adminOnly, classHandler.Update)
		classGroup.DELETE("/:id", middleware.JWT(jwtService), adminOnly, classHandler.Delete)
	}

	bookingGroup := router.Group("/bookings")
	{
		bookingGroup.GET("", middleware.OptionalJWT(jwtService), bookingHandler.ListMine)
		bookingGroup.POST("", middleware.JWT(jwtService), bookingHandler.Create)
		bookingGroup.DELETE("/:id", middleware.JWT(jwtService), bookingHandler.Cancel)
	}

	newsGroup := router.Group("/news")
	{
		newsGroup.GET("", newsHandler.List)
		newsGroup.GET("/:id", newsHandler.Get)
		newsGroup.GET("/:id/comments", commentHandler.ListByNews)
		newsGroup.POST("/:id/comments", middleware.JWT(jwtService), commentHandler.Create)
		newsGroup.POST("", middleware.JWT(jwtService), adminOnly, newsHandler.Create)
		newsGroup.PATCH("/:id", middleware.JWT(jwtService), adminOnly, newsHandler.Update)
		newsGroup.DELETE("/:id", middleware.JWT(jwtService), adminOnly, newsHandler.Delete)
	}

	commentGroup := router.Group("/comments", middleware.JWT(jwtService))
	{
		commentGroup.PATCH("/:id", commentHandler.Update)
		commentGroup.DELETE("/:id", commentHandler.Delete)
	}

	adminGroup := router.Group("/admin", middleware.JWT(jwtService), adminOnly)
	{
		adminGroup.GET("/bookings", bookingHandler.ListAdmin)
		adminGroup.GET("/users", authHandler.List)
		adminGroup.GET("/emails", emailLogHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
