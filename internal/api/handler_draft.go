package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DraftHandler struct {
	drafts DraftRepository
	logger *zap.Logger
}

func NewDraftHandler(drafts DraftRepository, logger *zap.Logger) *DraftHandler {
	return &DraftHandler{drafts: drafts, logger: logger}
}

type createDraftRequest struct {
	EmailID  *int64  `json:"email_id"`
	Subject  string  `json:"subject" binding:"required"`
	Body     string  `json:"body" binding:"required"`
	Metadata *string `json:"metadata"`
}

func (h *DraftHandler) List(c *gin.Context) {
	drafts, err := h.drafts.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	d, err := h.drafts.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Draft")
		return
	}
	c.JSON(http.StatusOK, d)
}

// Create handles POST /drafts
func (h *DraftHandler) Create(c *gin.Context) {
	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.drafts.Create(c.Request.Context(), req.EmailID, req.Subject, req.Body, req.Metadata)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "draft_id": id, "message": "Draft created"})
}

// Delete handles DELETE /drafts/:id. Unknown ids succeed.
func (h *DraftHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.drafts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Draft deleted"})
}
