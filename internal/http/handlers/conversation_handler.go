package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/bidmarket-backend/internal/dto"
	"github.com/avoronin/bidmarket-backend/internal/http/handlers/common"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// ConversationHandler предоставляет HTTP слой для чатов.
type ConversationHandler struct {
	conversations *service.ConversationService
	auth          *service.AuthService
}

// NewConversationHandler создаёт хэндлер.
func NewConversationHandler(conversations *service.ConversationService, auth *service.AuthService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, auth: auth}
}

// List обрабатывает GET /conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	conversations, err := h.conversations.List(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", conversations)
}

// Messages обрабатывает GET /conversations/:id/messages.
func (h *ConversationHandler) Messages(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	messages, err := h.conversations.Messages(c.Request.Context(), userID, conversationID, limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", messages)
}

// Send обрабатывает POST /conversations/:id/messages.
func (h *ConversationHandler) Send(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	conversationID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	message, err := h.conversations.Send(c.Request.Context(), user, conversationID, req.Content)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "", message)
}
