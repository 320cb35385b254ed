package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/bidmarket-backend/internal/dto"
	"github.com/avoronin/bidmarket-backend/internal/http/handlers/common"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// ProjectHandler предоставляет HTTP слой для проектов.
type ProjectHandler struct {
	projects *service.ProjectService
	auth     *service.AuthService
}

// NewProjectHandler создаёт хэндлер.
func NewProjectHandler(projects *service.ProjectService, auth *service.AuthService) *ProjectHandler {
	return &ProjectHandler{projects: projects, auth: auth}
}

// Create обрабатывает POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	project, err := h.projects.Create(c.Request.Context(), user, service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
	})
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusCreated, "проект опубликован", project)
}

// Get обрабатывает GET /projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
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

	project, err := h.projects.Get(c.Request.Context(), projectID, userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", project)
}

// List обрабатывает GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	projects, err := h.projects.List(c.Request.Context(), c.Query("status"), limit, offset)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", projects)
}

// ListMine обрабатывает GET /projects/my.
func (h *ProjectHandler) ListMine(c *gin.Context) {
	user, err := currentUser(c, h.auth)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	projects, err := h.projects.ListMine(c.Request.Context(), user)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "", projects)
}
