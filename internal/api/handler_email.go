package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxagent/internal/llm"
	"inboxagent/internal/model"
)

type EmailHandler struct {
	emails    EmailRepository
	batch     BatchProcessor
	submitter BatchSubmitter
	logger    *zap.Logger
}

func NewEmailHandler(emails EmailRepository, batch BatchProcessor, submitter BatchSubmitter, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{emails: emails, batch: batch, submitter: submitter, logger: logger}
}

// emailView adds the parsed action items when the stored raw text holds JSON.
type emailView struct {
	*model.Email
	ActionItemsParsed map[string]any `json:"action_items_parsed,omitempty"`
}

type processRequest struct {
	Emails []model.IncomingEmail `json:"emails" binding:"required"`
}

type categoryRequest struct {
	Category string `json:"category" binding:"required"`
}

type actionItemsRequest struct {
	ActionItems string `json:"action_items" binding:"required"`
}

// List handles GET /emails
func (h *EmailHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	emails, err := h.emails.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, emails)
}

// Get handles GET /emails/:id
func (h *EmailHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	email, err := h.emails.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}

	view := emailView{Email: email}
	if email.ActionItems != nil {
		// 解析失败时只返回原始文本
		if parsed, err := llm.ExtractJSONObject(*email.ActionItems); err == nil {
			view.ActionItemsParsed = parsed
		}
	}
	c.JSON(http.StatusOK, view)
}

// LoadMock handles POST /emails/load-mock with a bare JSON array of records.
func (h *EmailHandler) LoadMock(c *gin.Context) {
	var emails []model.IncomingEmail
	if err := c.ShouldBindJSON(&emails); err != nil {
		badRequest(c, "expected a JSON array of emails: "+err.Error())
		return
	}

	results := h.batch.ProcessBatch(c.Request.Context(), emails)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("Loaded %d emails", len(results)),
		"results": results,
	})
}

// Process handles POST /emails/process. With ?async=true the batch is queued
// for the worker and a batch id is returned.
func (h *EmailHandler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async {
		batchID, err := h.submitter.SubmitBatch(c.Request.Context(), req.Emails)
		if err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "batch_id": batchID})
		return
	}

	results := h.batch.ProcessBatch(c.Request.Context(), req.Emails)
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}

// UpdateCategory handles PUT /emails/:id/category
func (h *EmailHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.emails.UpdateCategory(c.Request.Context(), id, req.Category); err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Category updated"})
}

// UpdateActionItems handles PUT /emails/:id/action-items
func (h *EmailHandler) UpdateActionItems(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req actionItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.emails.UpdateActionItems(c.Request.Context(), id, req.ActionItems); err != nil {
		respondError(c, h.logger, err, "Email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Action items updated"})
}

// DeleteAll handles DELETE /emails
func (h *EmailHandler) DeleteAll(c *gin.Context) {
	n, err := h.emails.DeleteAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "All emails deleted", "deleted": n})
}
