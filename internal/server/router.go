// internal/server/router.go - 路由配置和服务器初始化
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"synthesis-tracker/internal/config"
	"synthesis-tracker/internal/handler"
	"synthesis-tracker/pkg/logger"
	"synthesis-tracker/pkg/metrics"
)

// Server 服务器接口
type Server interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// NewServer 创建新的HTTP服务器
func NewServer(
	jobHandler *handler.JobHandler,
	corpusHandler *handler.CorpusHandler,
	runHandler *handler.RunHandler,
	wsHandler *handler.WebSocketHandler,
	trackerMetrics *metrics.TrackerMetrics,
	logger logger.Logger,
) Server {
	return &server{
		jobHandler:    jobHandler,
		corpusHandler: corpusHandler,
		runHandler:    runHandler,
		wsHandler:     wsHandler,
		metrics:       trackerMetrics,
		logger:        logger,
	}
}

type server struct {
	engine        *gin.Engine
	jobHandler    *handler.JobHandler
	corpusHandler *handler.CorpusHandler
	runHandler    *handler.RunHandler
	wsHandler     *handler.WebSocketHandler
	metrics       *metrics.TrackerMetrics
	logger        logger.Logger
	httpServer    *http.Server
}

// Start 启动服务器
func (s *server) Start(addr string) error {
	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	// 创建Gin引擎
	s.engine = gin.New()

	// 设置中间件
	s.setupMiddleware()

	// 设置路由
	s.setupRoutes()

	// 创建HTTP服务器
	s.httpServer = &http.Server{
		Addr:           addr,
		Handler:        s.engine,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	s.logger.Info("starting HTTP server on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown 优雅关闭服务器
func (s *server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		s.logger.Info("shutting down HTTP server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// setupMiddleware 设置中间件
func (s *server) setupMiddleware() {
	// 基础中间件
	s.engine.Use(RecoveryMiddleware(s.logger))
	s.engine.Use(LoggingMiddleware(s.logger))
	s.engine.Use(CORSMiddleware())
	s.engine.Use(SecurityMiddleware())

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"code":    0,
			"message": "ok",
			"success": true,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus指标
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// setupRoutes 设置路由
func (s *server) setupRoutes() {
	SetupTrackerRoutes(s.engine, s.jobHandler, s.corpusHandler, s.runHandler, s.wsHandler, s.logger)

	// 404处理
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "endpoint not found",
		})
	})

	// 405处理
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"message": "method not allowed",
		})
	})
}

// SetupTrackerRoutes 设置合成追踪API路由
// @Description 设置追踪路由
func SetupTrackerRoutes(
	router *gin.Engine,
	jobHandler *handler.JobHandler,
	corpusHandler *handler.CorpusHandler,
	runHandler *handler.RunHandler,
	wsHandler *handler.WebSocketHandler,
	logger logger.Logger,
) {
	perSecond := config.GetTrackerConfig().Server.RateLimitPerSec

	api := router.Group("/synthesis-tracker/api/v1")
	{
		api.POST("/jobs", RateLimitMiddleware(logger, perSecond), jobHandler.SubmitJob)
		api.GET("/jobs/:jobId", RateLimitMiddleware(logger, perSecond), jobHandler.GetJob)
		api.GET("/jobs/:jobId/history", RateLimitMiddleware(logger, perSecond), jobHandler.GetJobHistory)
		api.POST("/jobs/:jobId/advance", RateLimitMiddleware(logger, perSecond), jobHandler.AdvanceJob)
		api.POST("/jobs/:jobId/complete", RateLimitMiddleware(logger, perSecond), jobHandler.CompleteJob)
		api.POST("/jobs/:jobId/fail", RateLimitMiddleware(logger, perSecond), jobHandler.FailJob)

		// WebSocket不限流，连接生命周期由心跳管理
		api.GET("/ws", wsHandler.Serve)

		api.POST("/corpus", RateLimitMiddleware(logger, perSecond), corpusHandler.InsertEntry)
		api.GET("/corpus", RateLimitMiddleware(logger, perSecond), corpusHandler.QueryEntries)
		api.GET("/corpus/best", RateLimitMiddleware(logger, perSecond), corpusHandler.BestEntries)
		api.GET("/corpus/:id", RateLimitMiddleware(logger, perSecond), corpusHandler.GetEntry)

		api.POST("/runs", RateLimitMiddleware(logger, perSecond), runHandler.RecordRun)
		api.GET("/runs/latest", RateLimitMiddleware(logger, perSecond), runHandler.GetLatestRun)
		api.GET("/runs/:runId", RateLimitMiddleware(logger, perSecond), runHandler.GetRun)
		api.GET("/runs/:runId/seeds", RateLimitMiddleware(logger, perSecond), runHandler.ListSeeds)
		api.POST("/runs/:runId/seeds", RateLimitMiddleware(logger, perSecond), runHandler.RecordSeed)
	}
}
