package results

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/server/respond"
	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FieldExtractor reads one field of an output document.
type FieldExtractor interface {
	Extract(ctx context.Context, uri, field string) (Table, error)
}

// Handler exposes extraction and persisted results over HTTP.
type Handler struct {
	Extractor FieldExtractor
	Repo      Repo
}

// NewHandler constructs a Handler.
func NewHandler(extractor FieldExtractor, repo Repo) *Handler {
	return &Handler{Extractor: extractor, Repo: repo}
}

// RegisterRoutes attaches result routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/results/extract", h.extract)
	rg.GET("/results", h.list)
	rg.GET("/results/export", h.export)
}

type extractRequest struct {
	ManifestURI string `json:"manifestUri"`
	Field       string `json:"field"`
}

func (h *Handler) extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.ManifestURI = strings.TrimSpace(req.ManifestURI)
	req.Field = strings.TrimSpace(req.Field)
	if req.ManifestURI == "" || req.Field == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "manifestUri and field are required", nil)
		return
	}

	table, err := h.Extractor.Extract(c.Request.Context(), req.ManifestURI, req.Field)
	if err != nil {
		var missing FieldNotFoundError
		var malformed MalformedManifestError
		switch {
		case errors.Is(err, object.ErrInvalidURI):
			respond.Error(c, http.StatusBadRequest, "validation_error", "manifestUri must be an s3:// URI", nil)
		case errors.As(err, &missing):
			respond.Error(c, http.StatusNotFound, "field_not_found", missing.Error(), gin.H{"available": missing.Available})
		case errors.As(err, &malformed):
			respond.Error(c, http.StatusUnprocessableEntity, "malformed_manifest", malformed.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "storage_error", "failed to read manifest", nil)
		}
		return
	}
	respond.OK(c, table)
}

func (h *Handler) list(c *gin.Context) {
	inputURI, ok := requireInputURI(c)
	if !ok {
		return
	}
	records, err := h.Repo.ListByInput(c.Request.Context(), inputURI)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no results for input", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list results", nil)
		return
	}
	respond.OK(c, gin.H{"inputUri": inputURI, "records": records})
}

func (h *Handler) export(c *gin.Context) {
	inputURI, ok := requireInputURI(c)
	if !ok {
		return
	}
	records, err := h.Repo.ListByInput(c.Request.Context(), inputURI)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no results for input", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list results", nil)
		return
	}

	tables := make([]Table, 0, len(records))
	for _, rec := range records {
		tables = append(tables, rec.Table())
	}
	data, err := WriteXLSX(tables)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render workbook", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func requireInputURI(c *gin.Context) (string, bool) {
	inputURI := strings.TrimSpace(c.Query("inputUri"))
	if inputURI == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "inputUri is required", nil)
		return "", false
	}
	if _, err := object.ParseURI(inputURI); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "inputUri must be an s3:// URI", nil)
		return "", false
	}
	return inputURI, true
}
