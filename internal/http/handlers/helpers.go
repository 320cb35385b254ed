package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/avoronin/bidmarket-backend/internal/http/handlers/common"
	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/service"
)

// currentUser загружает полную запись пользователя из контекста запроса.
// Сервисам нужны роль и профиль, а не только идентификатор из токена.
func currentUser(c *gin.Context, auth *service.AuthService) (*models.User, error) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	user, err := auth.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}
