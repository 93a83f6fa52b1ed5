package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/respond"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/telemetry"
)

// Handler exposes the readiness report.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Service: svc}
}

// RegisterRoutes attaches the readiness route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ready", h.ready)
}

func (h *Handler) ready(c *gin.Context) {
	report := h.Service.Status(c.Request.Context())
	if !report.OK {
		telemetry.Warn("health.not_ready", map[string]any{"checks": report.Checks})
		respond.JSON(c, http.StatusServiceUnavailable, report)
		return
	}
	respond.OK(c, report)
}
