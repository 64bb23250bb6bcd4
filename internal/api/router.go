package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/arena-zones-backend/internal/config"
	"github.com/jengzang/arena-zones-backend/internal/handler"
	"github.com/jengzang/arena-zones-backend/internal/logger"
	"github.com/jengzang/arena-zones-backend/internal/middleware"
	"github.com/jengzang/arena-zones-backend/internal/repository"
	"github.com/jengzang/arena-zones-backend/internal/service"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, db *sql.DB, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, time.Minute)))
	}

	// 请求体大小限制
	r.Use(func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.MaxBodyBytes)
		}
		c.Next()
	})

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Arena zones API is running",
		})
	})

	arenaService := service.NewArenaService(repository.NewArenaRepository(db), log)
	analysisService := service.NewAnalysisService(
		arenaService,
		repository.NewAnalysisTaskRepository(db),
		repository.NewMetricsRepository(db),
		service.AnalysisConfig{DefaultFPS: cfg.DefaultFPS, MaxParallel: cfg.MaxParallel},
		log,
	)
	arenaHandler := handler.NewArenaHandler(arenaService, analysisService)
	taskHandler := handler.NewAnalysisTaskHandler(analysisService)
	auth := middleware.AuthRequired(cfg.JWTSecret)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 场地与区域
		arenas := api.Group("/arenas")
		{
			arenas.GET("", arenaHandler.ListArenas)
			arenas.POST("", auth, arenaHandler.CreateArena)
			arenas.GET("/:id", arenaHandler.GetArena)
			arenas.GET("/:id/geometry", arenaHandler.GetGeometry)
			arenas.DELETE("/:id", auth, arenaHandler.DeleteArena)
			arenas.POST("/:id/classify", arenaHandler.Classify)
		}

		// 分析任务
		analysis := api.Group("/analysis")
		{
			analysis.GET("/skills", taskHandler.ListSkills)
			analysis.GET("/tasks", taskHandler.ListTasks)
			analysis.POST("/tasks", auth, taskHandler.CreateTask)
			analysis.GET("/tasks/:id", taskHandler.GetTask)
			analysis.GET("/tasks/:id/metrics", taskHandler.GetMetrics)
		}
	}

	return r
}
