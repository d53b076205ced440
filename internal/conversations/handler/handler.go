// Package handler exposes conversation administration over HTTP. Operators
// use it to inspect transcripts and to take over or release conversations.
package handler

import (
	"net/http"
	"strconv"

	"github.com/luizpibo/WorkHub-AI/internal/conversations/domain"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/service"
	"github.com/luizpibo/WorkHub-AI/internal/conversations/transport"
	"github.com/luizpibo/WorkHub-AI/platform/httpkit"
	"github.com/luizpibo/WorkHub-AI/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the routes under /tenants/:id/conversations.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:convId", h.Transcript)
	rg.POST("/:convId/handoff", h.Handoff)
	rg.POST("/:convId/resume", h.Resume)
	rg.POST("/:convId/close", h.Close)
}

func (h *Handler) List(c *gin.Context) {
	tenantID, ok := parseUUID(c, "id", "invalid tenant id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.svc.List(c.Request.Context(), tenantID, c.Query("status"), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ListConversationsResponse{Conversations: make([]transport.ConversationResponse, 0, len(result))}
	for i := range result {
		resp.Conversations = append(resp.Conversations, transport.ToConversationResponse(&result[i]))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Transcript(c *gin.Context) {
	tenantID, convID, ok := parseIDs(c)
	if !ok {
		return
	}

	conv, err := h.svc.GetByID(c.Request.Context(), tenantID, convID)
	if httpkit.HandleError(c, err) {
		return
	}
	messages, err := h.svc.History(c.Request.Context(), tenantID, convID, 200)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.TranscriptResponse{
		Conversation: transport.ToConversationResponse(conv),
		Messages:     make([]transport.MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, transport.ToMessageResponse(m))
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Handoff(c *gin.Context) {
	tenantID, convID, ok := parseIDs(c)
	if !ok {
		return
	}

	var req transport.HandoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	conv, _, err := h.svc.Handoff(c.Request.Context(), tenantID, convID, req.Reason, req.Summary)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToConversationResponse(conv))
}

func (h *Handler) Resume(c *gin.Context) {
	tenantID, convID, ok := parseIDs(c)
	if !ok {
		return
	}

	conv, err := h.svc.Resume(c.Request.Context(), tenantID, convID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToConversationResponse(conv))
}

func (h *Handler) Close(c *gin.Context) {
	tenantID, convID, ok := parseIDs(c)
	if !ok {
		return
	}

	var req transport.CloseConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	conv, err := h.svc.Close(c.Request.Context(), tenantID, convID, domain.Status(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToConversationResponse(conv))
}

func parseIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := parseUUID(c, "id", "invalid tenant id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	convID, ok := parseUUID(c, "convId", "invalid conversation id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, convID, true
}

func parseUUID(c *gin.Context, param, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msg, nil)
		return uuid.Nil, false
	}
	return id, true
}
