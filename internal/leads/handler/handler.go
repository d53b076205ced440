// Package handler exposes the read-only leads admin surface.
package handler

import (
	"net/http"
	"strconv"

	"github.com/luizpibo/WorkHub-AI/internal/leads/service"
	"github.com/luizpibo/WorkHub-AI/internal/leads/transport"
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

// RegisterRoutes mounts the routes under /tenants/:id/leads.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/by-conversation/:convId", h.GetByConversation)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid tenant id", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.svc.List(c.Request.Context(), tenantID, c.Query("stage"), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ListLeadsResponse{Leads: make([]transport.LeadResponse, 0, len(result))}
	for i := range result {
		resp.Leads = append(resp.Leads, transport.ToLeadResponse(&result[i]))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetByConversation(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid tenant id", nil)
		return
	}
	convID, err := uuid.Parse(c.Param("convId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid conversation id", nil)
		return
	}

	lead, err := h.svc.GetByConversation(c.Request.Context(), tenantID, convID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead))
}
