package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"study-assistant-go/internal/middleware"
)

// Handlers 汇总了路由需要的全部控制器。
type Handlers struct {
	Document *DocumentHandler
	Question *QuestionHandler
	Session  *SessionHandler
	Chat     *ChatHandler
}

// RouterOptions 配置路由层的跨域与上传限制。
type RouterOptions struct {
	AllowedOrigins []string
	// MaxUploadMB 是上传请求体的上限，0 表示不限制。
	MaxUploadMB int64
}

// SetupRouter 注册中间件和所有 /api 路由。
func SetupRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Recovery())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("/health", Health)

		api.POST("/upload", limitBody(opts.MaxUploadMB<<20), h.Document.Upload)
		api.GET("/documents/:id", h.Document.Get)
		api.GET("/documents/:id/download", h.Document.Download)

		api.GET("/generate-questions/:id", h.Question.Generate)

		api.POST("/session/start", h.Session.Start)
		api.GET("/session/history", h.Session.History)
		api.GET("/session/:id", h.Session.Detail)
		api.DELETE("/session/:id", h.Session.Delete)
		api.POST("/submit-answers", h.Session.Submit)
		api.GET("/statistics/:id", h.Session.Statistics)
		api.GET("/analytics", h.Session.Analytics)

		api.POST("/chat", h.Chat.Chat)
		api.GET("/chat/history/:id", h.Chat.History)
	}
	return r
}

// Health 是存活探针。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "AI Study Assistant API is running"})
}

// limitBody 限制请求体大小，Content-Length 已超出时直接返回 413。
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
