package dto

import "github.com/avoronin/bidmarket-backend/internal/models"

// SuccessResponse стандартный конверт успешного ответа.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse стандартный конверт ошибки.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResponse ответ регистрации и входа.
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// UnreadCountResponse счётчик непрочитанных уведомлений.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
