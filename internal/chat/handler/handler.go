// Package handler exposes the public chat endpoint. Requests authenticate
// with the tenant API key, never with operator JWTs.
package handler

import (
	"net/http"

	"github.com/luizpibo/WorkHub-AI/internal/chat/service"
	"github.com/luizpibo/WorkHub-AI/internal/chat/transport"
	"github.com/luizpibo/WorkHub-AI/internal/tenants"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the chat route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Chat)
}

func (h *Handler) Chat(c *gin.Context) {
	tenant, ok := tenants.MustFromContext(c)
	if !ok {
		return
	}

	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	resp, err := h.svc.HandleMessage(c.Request.Context(), tenant, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}
