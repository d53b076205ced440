// Package handler handles HTTP requests for prompt and knowledge management.
package handler

import (
	"net/http"

	"github.com/luizpibo/WorkHub-AI/internal/prompts/service"
	"github.com/luizpibo/WorkHub-AI/internal/prompts/transport"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for prompts and knowledge documents.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new prompts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterPromptRoutes registers prompt versioning routes.
func (h *Handler) RegisterPromptRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListVersions)
	rg.POST("", h.CreateVersion)
	rg.POST("/activate", h.ActivateVersion)
}

// RegisterKnowledgeRoutes registers knowledge document routes.
func (h *Handler) RegisterKnowledgeRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListDocuments)
	rg.POST("", h.CreateDocument)
	rg.GET("/:docId", h.GetDocument)
	rg.PUT("/:docId", h.UpdateDocument)
	rg.DELETE("/:docId", h.DeleteDocument)
}

func (h *Handler) ListVersions(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ListVersions(c.Request.Context(), tenantID, c.Query("type"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CreateVersion(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	var req transport.CreatePromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateVersion(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ActivateVersion(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	var req transport.ActivatePromptVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ActivateVersion(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ListDocuments(c.Request.Context(), tenantID, c.Query("type"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) CreateDocument(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	var req transport.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateDocument(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) GetDocument(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := parseParamID(c, "docId")
	if !ok {
		return
	}

	result, err := h.svc.GetDocument(c.Request.Context(), tenantID, docID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := parseParamID(c, "docId")
	if !ok {
		return
	}

	var req transport.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateDocument(c.Request.Context(), tenantID, docID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	docID, ok := parseParamID(c, "docId")
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteDocument(c.Request.Context(), tenantID, docID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func parseParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
