package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AgentHandler struct {
	chat    ChatAgent
	compose ComposeAgent
	logger  *zap.Logger
}

func NewAgentHandler(chat ChatAgent, compose ComposeAgent, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{chat: chat, compose: compose, logger: logger}
}

type chatRequest struct {
	Query   string `json:"query" binding:"required"`
	EmailID *int64 `json:"email_id"`
}

type replyRequest struct {
	Context string `json:"context"`
}

type generateRequest struct {
	Instruction string `json:"instruction"`
	Context     string `json:"context"`
}

// Chat handles POST /agent/chat
func (h *AgentHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	answer, err := h.chat.Ask(c.Request.Context(), req.Query, req.EmailID)
	if err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "response": answer})
}

// DraftReply handles POST /agent/draft-reply/:email_id. Context comes from
// ?context= or a JSON body.
func (h *AgentHandler) DraftReply(c *gin.Context) {
	emailID, ok := idParam(c, "email_id")
	if !ok {
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	if req.Context == "" {
		req.Context = c.Query("context")
	}

	res, err := h.compose.DraftReply(c.Request.Context(), emailID, req.Context)
	if err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "draft_id": res.DraftID, "draft": res.Email})
}

// GenerateEmail handles POST /agent/generate-email. Fields come from a JSON
// body or the query string.
func (h *AgentHandler) GenerateEmail(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}
	if req.Instruction == "" {
		req.Instruction = c.Query("instruction")
	}
	if req.Context == "" {
		req.Context = c.Query("context")
	}

	res, err := h.compose.GenerateEmail(c.Request.Context(), req.Instruction, req.Context)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "draft_id": res.DraftID, "email": res.Email})
}

// Summarize handles POST /agent/summarize/:email_id
func (h *AgentHandler) Summarize(c *gin.Context) {
	emailID, ok := idParam(c, "email_id")
	if !ok {
		return
	}

	summary, err := h.compose.Summarize(c.Request.Context(), emailID)
	if err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "summary": summary})
}
