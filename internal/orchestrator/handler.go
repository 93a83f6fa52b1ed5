package orchestrator

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/middleware"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/respond"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
)

// RecordHandler processes decoded notification records.
type RecordHandler interface {
	HandleRecords(ctx context.Context, requestID string, records []Record) Result
}

// Handler exposes manual job starts over HTTP.
type Handler struct {
	Orchestrator RecordHandler
}

// NewHandler constructs a Handler.
func NewHandler(o RecordHandler) *Handler {
	return &Handler{Orchestrator: o}
}

// RegisterRoutes attaches job start routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.start)
}

type startRequest struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	Revision string `json:"revision"`
}

func (h *Handler) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	req.Bucket = strings.TrimSpace(req.Bucket)
	req.Key = strings.TrimSpace(req.Key)
	if req.Bucket == "" || req.Key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "bucket and key are required", nil)
		return
	}

	c.Set(middleware.InputURIKey, object.URI(req.Bucket, req.Key))

	result := h.Orchestrator.HandleRecords(c.Request.Context(), c.GetString("requestId"), []Record{{
		Bucket:   req.Bucket,
		Key:      req.Key,
		Revision: req.Revision,
	}})
	if len(result.Records) == 1 {
		c.Set(middleware.InvocationArnKey, result.Records[0].InvocationArn)
	}
	respond.JSON(c, result.Status, result)
}
