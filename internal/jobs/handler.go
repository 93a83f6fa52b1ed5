package jobs

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/middleware"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/respond"
)

// StatusQuerier performs a single status query.
type StatusQuerier interface {
	Status(ctx context.Context, invocationArn string) (Outcome, error)
}

// Handler exposes job status over HTTP.
type Handler struct {
	Status  StatusQuerier
	limiter *pollLimiter
}

// NewHandler constructs a Handler.
func NewHandler(status StatusQuerier) *Handler {
	return &Handler{Status: status, limiter: newPollLimiter(pollLimitWindow, nil)}
}

// RegisterRoutes attaches job status routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/status", h.getStatus)
}

func (h *Handler) getStatus(c *gin.Context) {
	arn := strings.TrimSpace(c.Query("invocationArn"))
	if arn == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invocationArn is required", nil)
		return
	}
	c.Set(middleware.InvocationArnKey, arn)
	if !h.limiter.Allow(arn) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "status polled too frequently", nil)
		return
	}

	outcome, err := h.Status.Status(c.Request.Context(), arn)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "remote_error", "failed to query job status", nil)
		return
	}
	respond.OK(c, outcome)
}
