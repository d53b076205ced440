// Package handler handles HTTP requests for the plan catalog.
package handler

import (
	"net/http"

	"github.com/luizpibo/WorkHub-AI/internal/plans/service"
	"github.com/luizpibo/WorkHub-AI/internal/plans/transport"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for plans. Routes are mounted under a
// tenant-scoped admin path, so every method resolves the tenant ID first.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new plan handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers plan routes under /tenants/:id/plans.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:planId", h.GetByID)
	rg.PUT("/:planId", h.Update)
	rg.DELETE("/:planId", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}

	var req transport.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	planID, ok := parseParamID(c, "planId")
	if !ok {
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), tenantID, planID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Update(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	planID, ok := parseParamID(c, "planId")
	if !ok {
		return
	}

	var req transport.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), tenantID, planID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Delete(c *gin.Context) {
	tenantID, ok := parseParamID(c, "id")
	if !ok {
		return
	}
	planID, ok := parseParamID(c, "planId")
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), tenantID, planID)) {
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
