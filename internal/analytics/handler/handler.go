// Package handler exposes tenant analytics over the admin surface.
package handler

import (
	"net/http"

	"github.com/luizpibo/WorkHub-AI/internal/analytics/service"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the routes under /tenants/:id/analytics.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/funnel", h.Funnel)
	rg.GET("/leads", h.Leads)
	rg.GET("/overview", h.Overview)
}

func (h *Handler) Funnel(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	result, err := h.svc.FunnelReport(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Leads(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	result, err := h.svc.LeadReport(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Overview(c *gin.Context) {
	tenantID, ok := parseTenantID(c)
	if !ok {
		return
	}
	result, err := h.svc.Overview(c.Request.Context(), tenantID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid tenant id", nil)
		return uuid.Nil, false
	}
	return id, true
}
