package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxagent/internal/llm"
	"inboxagent/internal/repository"
	"inboxagent/internal/service"
	"inboxagent/pkg/logger"
	"inboxagent/pkg/util"
)

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(err error) int {
	var (
		adapterErr *llm.AdapterError
		parseErr   *llm.ParseFailure
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case service.IsMissingConfiguration(err):
		return http.StatusNotFound
	case service.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAsyncUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &adapterErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. what names the entity for a 404.
func respondError(c *gin.Context, log *zap.Logger, err error, what string) {
	status := statusFor(err)
	msg := err.Error()
	if errors.Is(err, repository.ErrNotFound) && what != "" {
		msg = what + " not found"
	}

	l := logger.WithTrace(c.Request.Context(), log)
	fields := []zap.Field{
		zap.String("path", c.FullPath()),
		zap.Int("status", status),
		zap.String("error_type", util.ClassifyError(err)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		l.Error("Request failed", fields...)
	} else {
		l.Info("Request rejected", fields...)
	}

	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
