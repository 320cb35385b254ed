package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/dto"
	"github.com/avoronin/bidmarket-backend/internal/http/handlers/common"
	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// BidHandler предоставляет HTTP слой для предложений и переговоров.
type BidHandler struct {
	bids *service.BidService
	auth *service.AuthService
}

// NewBidHandler создаёт хэндлер.
func NewBidHandler(bids *service.BidService, auth *service.AuthService) *BidHandler {
	return &BidHandler{bids: bids, auth: auth}
}

// Submit обрабатывает POST /projects/:id/bids.
func (h *BidHandler) Submit(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	milestones := make([]service.MilestoneInput, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		milestones = append(milestones, service.MilestoneInput{
			Title:        m.Title,
			Description:  m.Description,
			Amount:       m.Amount,
			DeliveryDays: m.DeliveryDays,
		})
	}

	bid, err := h.bids.Submit(c.Request.Context(), user, projectID, service.SubmitBidInput{
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
		Proposal:     req.Proposal,
		Milestones:   milestones,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "предложение отправлено", bid)
}

// ListByProject обрабатывает GET /projects/:id/bids.
func (h *BidHandler) ListByProject(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bids, err := h.bids.ListByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", bids)
}

// ListMine обрабатывает GET /bids/my. Необязательный query-параметр
// status сужает выборку до одного статуса.
func (h *BidHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	bids, err := h.bids.ListMine(c.Request.Context(), userID, c.Query("status"))
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", bids)
}

// Get обрабатывает GET /bids/:id.
func (h *BidHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	bidID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Get(c.Request.Context(), userID, bidID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", bid)
}

// Accept обрабатывает PUT /projects/:id/bids/:bidId/accept.
func (h *BidHandler) Accept(c *gin.Context) {
	user, projectID, bidID, ok := h.negotiationParams(c)
	if !ok {
		return
	}

	bid, err := h.bids.Accept(c.Request.Context(), user, projectID, bidID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "предложение принято", bid)
}

// Reject обрабатывает PUT /projects/:id/bids/:bidId/reject.
func (h *BidHandler) Reject(c *gin.Context) {
	user, projectID, bidID, ok := h.negotiationParams(c)
	if !ok {
		return
	}

	var req dto.RejectBidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	bid, err := h.bids.Reject(c.Request.Context(), user, projectID, bidID, req.Reason)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "предложение отклонено", bid)
}

// Counter обрабатывает PUT /projects/:id/bids/:bidId/counter.
func (h *BidHandler) Counter(c *gin.Context) {
	user, projectID, bidID, ok := h.negotiationParams(c)
	if !ok {
		return
	}

	var req dto.CounterOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Counter(c.Request.Context(), user, projectID, bidID, service.CounterOfferInput{
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
		Message:      req.Message,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "встречный оффер отправлен", bid)
}

// Withdraw обрабатывает PUT /projects/:id/bids/withdraw. Ставка не
// передаётся в пути: отзывается собственная активная ставка фрилансера.
func (h *BidHandler) Withdraw(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Withdraw(c.Request.Context(), user, projectID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "предложение отозвано", bid)
}

// CounterAccept обрабатывает PUT /projects/:id/bids/:bidId/counter/accept.
// Тело необязательно: без него принимаются условия оффера как есть.
func (h *BidHandler) CounterAccept(c *gin.Context) {
	user, projectID, bidID, ok := h.negotiationParams(c)
	if !ok {
		return
	}

	var req dto.CounterAcceptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	bid, err := h.bids.CounterAccept(c.Request.Context(), user, projectID, bidID, service.CounterAcceptInput{
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "встречный оффер принят", bid)
}

// CounterReject обрабатывает PUT /projects/:id/bids/:bidId/counter/reject.
func (h *BidHandler) CounterReject(c *gin.Context) {
	user, projectID, bidID, ok := h.negotiationParams(c)
	if !ok {
		return
	}

	bid, err := h.bids.CounterReject(c.Request.Context(), user, projectID, bidID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "встречный оффер отклонён", bid)
}

// negotiationParams извлекает пользователя и идентификаторы из маршрутов
// вида /projects/:id/bids/:bidId/...
func (h *BidHandler) negotiationParams(c *gin.Context) (*models.User, uuid.UUID, uuid.UUID, bool) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return nil, uuid.Nil, uuid.Nil, false
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return nil, uuid.Nil, uuid.Nil, false
	}

	bidID, err := common.ParseUUIDParam(c, "bidId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return nil, uuid.Nil, uuid.Nil, false
	}

	return user, projectID, bidID, true
}
