package router

import (
	"time"

	"smsledger/api"
	"smsledger/config"
	"smsledger/database"
	_ "smsledger/docs"
	"smsledger/llm"
	"smsledger/logger"
	"smsledger/middleware"
	"smsledger/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, repo database.Repository, client llm.Client) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinLogger(log.Logger))
	r.Use(CORSMiddleware())

	var notifier service.Notifier
	if cfg.Email.Enabled {
		notifier = service.NewEmailService(&cfg.Email)
	}
	accounts := service.NewAccountService(repo, notifier)
	ingestion := service.NewIngestionService(repo, client, cfg.LLM.Timeout)
	review := service.NewReviewService(repo, cfg.Review)
	batch := service.NewBatchConfirmer(review, cfg.Review)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg, accounts)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
		}

		// 分类目录（无需登录）
		categoryHandler := api.NewCategoryHandler(repo)
		v1.GET("/categories", categoryHandler.List)

		aiItemHandler := api.NewAiItemHandler(ingestion, review, batch)
		// 短信 Webhook 使用用户专属密钥认证
		v1.POST("/ai-items/webhook",
			middleware.WebhookRateLimit(cfg.Webhook.RateLimit, cfg.Webhook.RateWindow),
			aiItemHandler.Webhook)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/webhook-key", authHandler.GetWebhookKey)
			authorized.POST("/auth/webhook-key/regenerate", authHandler.RegenerateWebhookKey)

			items := authorized.Group("/ai-items")
			{
				items.GET("", aiItemHandler.List)
				items.GET("/statistics", aiItemHandler.Statistics)
				items.POST("/batch-confirm", aiItemHandler.BatchConfirm)
				items.GET("/:id", aiItemHandler.Get)
				items.PATCH("/:id", aiItemHandler.Update)
				items.POST("/:id/confirm", aiItemHandler.Confirm)
				items.DELETE("/:id", aiItemHandler.Reject)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
