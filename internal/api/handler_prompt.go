package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxagent/internal/service"
)

type PromptHandler struct {
	prompts PromptManager
	logger  *zap.Logger
}

func NewPromptHandler(prompts PromptManager, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{prompts: prompts, logger: logger}
}

type upsertPromptRequest struct {
	Name        string `json:"name" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Description string `json:"description"`
}

func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.prompts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, prompts)
}

func (h *PromptHandler) Get(c *gin.Context) {
	p, err := h.prompts.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err, "Prompt")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Upsert handles POST /prompts
func (h *PromptHandler) Upsert(c *gin.Context) {
	var req upsertPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	p, err := h.prompts.Upsert(c.Request.Context(), req.Name, req.Content, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Prompt '%s' saved", p.Name),
		"prompt":  p,
	})
}

// LoadDefaults handles POST /prompts/load-defaults. An empty body loads the
// built-in defaults; a JSON array loads exactly those prompts.
func (h *PromptHandler) LoadDefaults(c *gin.Context) {
	var seeds []service.PromptSeed
	if err := c.ShouldBindJSON(&seeds); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "expected a JSON array of prompts: "+err.Error())
		return
	}

	n, err := h.prompts.LoadDefaults(c.Request.Context(), seeds)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Loaded %d default prompts", n),
	})
}
