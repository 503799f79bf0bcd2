package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/penwise/backend/config"
	"github.com/penwise/backend/internal/handler"
	"github.com/penwise/backend/internal/pkg/ratelimit"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	WritingAssistant *handler.WritingAssistantHandler
	Samples          *handler.SampleHandler
	Profiles         *handler.ProfileHandler
	Posts            *handler.PostHandler
	LinkedIn         *handler.LinkedInHandler
	Generate         *handler.GenerateHandler
}

func Setup(cfg *config.Config, h Handlers, limiter ratelimit.Limiter) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 调用 LLM 的接口按客户端 IP 限流
	limited := ratelimit.Middleware(limiter, ratelimit.RetryAfter(cfg))

	api := r.Group("/api")
	{
		assistant := api.Group("/writing-assistant")
		h.WritingAssistant.RegisterRoutes(assistant, limited)
		h.Samples.RegisterRoutes(assistant)

		h.Profiles.RegisterRoutes(api)
		h.Posts.RegisterRoutes(api)
		h.LinkedIn.RegisterRoutes(api, limited)
		h.Generate.RegisterRoutes(api, limited)
	}

	return r
}
