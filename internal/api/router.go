package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Router struct {
	Engine *gin.Engine
}

type Handlers struct {
	Email  *EmailHandler
	Prompt *PromptHandler
	Draft  *DraftHandler
	Agent  *AgentHandler
}

// NewRouter wires every route. When jwtSecret is empty the API is open;
// "/", "/health" and "/metrics" are always public.
func NewRouter(h Handlers, db Pinger, jwtSecret string, logger *zap.Logger) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), AccessLogMiddleware(logger), MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Email productivity agent API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	if jwtSecret != "" {
		api.Use(AuthMiddleware(jwtSecret))
	}
	{
		api.GET("/emails", h.Email.List)
		api.GET("/emails/:id", h.Email.Get)
		api.POST("/emails/load-mock", h.Email.LoadMock)
		api.POST("/emails/process", h.Email.Process)
		api.PUT("/emails/:id/category", h.Email.UpdateCategory)
		api.PUT("/emails/:id/action-items", h.Email.UpdateActionItems)
		api.DELETE("/emails", h.Email.DeleteAll)

		api.GET("/prompts", h.Prompt.List)
		api.GET("/prompts/:name", h.Prompt.Get)
		api.POST("/prompts", h.Prompt.Upsert)
		api.POST("/prompts/load-defaults", h.Prompt.LoadDefaults)

		api.GET("/drafts", h.Draft.List)
		api.GET("/drafts/:id", h.Draft.Get)
		api.POST("/drafts", h.Draft.Create)
		api.DELETE("/drafts/:id", h.Draft.Delete)

		api.POST("/agent/chat", h.Agent.Chat)
		api.POST("/agent/draft-reply/:email_id", h.Agent.DraftReply)
		api.POST("/agent/generate-email", h.Agent.GenerateEmail)
		api.POST("/agent/summarize/:email_id", h.Agent.Summarize)
	}

	return &Router{Engine: r}
}
