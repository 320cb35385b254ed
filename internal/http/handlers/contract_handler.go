package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/bidmarket-backend/internal/dto"
	"github.com/avoronin/bidmarket-backend/internal/http/handlers/common"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// ContractHandler предоставляет HTTP слой для контрактов.
type ContractHandler struct {
	contracts *service.ContractService
	auth      *service.AuthService
}

// NewContractHandler создаёт хэндлер.
func NewContractHandler(contracts *service.ContractService, auth *service.AuthService) *ContractHandler {
	return &ContractHandler{contracts: contracts, auth: auth}
}

// Create обрабатывает POST /projects/:id/contract.
func (h *ContractHandler) Create(c *gin.Context) {
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

	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), user, projectID, service.CreateContractInput{
		Amount:       req.Amount,
		DeliveryDays: req.DeliveryDays,
		Terms:        req.Terms,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "контракт создан", contract)
}

// GetByProject обрабатывает GET /projects/:id/contract.
func (h *ContractHandler) GetByProject(c *gin.Context) {
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

	contract, err := h.contracts.GetByProject(c.Request.Context(), userID, projectID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", contract)
}

// Get обрабатывает GET /contracts/:id.
func (h *ContractHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), userID, contractID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", contract)
}

// Sign обрабатывает PUT /projects/:id/contract/sign.
func (h *ContractHandler) Sign(c *gin.Context) {
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

	contract, err := h.contracts.Sign(c.Request.Context(), user, projectID, c.ClientIP())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "контракт подписан", contract)
}

// Terminate обрабатывает PUT /projects/:id/contract/terminate.
func (h *ContractHandler) Terminate(c *gin.Context) {
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

	contract, err := h.contracts.Terminate(c.Request.Context(), user, projectID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "контракт расторгнут", contract)
}

// Complete обрабатывает POST /contracts/:id/complete.
func (h *ContractHandler) Complete(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	contract, err := h.contracts.Complete(c.Request.Context(), user, contractID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "контракт завершён", contract)
}

// UploadDocument обрабатывает POST /contracts/:id/documents.
func (h *ContractHandler) UploadDocument(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}
	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, err)
		return
	}
	defer src.Close()

	doc, err := h.contracts.UploadDocument(c.Request.Context(), user, contractID, file.Filename, src)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "документ загружен", doc)
}

// ListDocuments обрабатывает GET /contracts/:id/documents.
func (h *ContractHandler) ListDocuments(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	contractID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	docs, err := h.contracts.ListDocuments(c.Request.Context(), userID, contractID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", docs)
}
