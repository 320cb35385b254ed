package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
)

// NotificationRepository описывает зависимости сервиса уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, userID uuid.UUID, event string, payload json.RawMessage) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// NotificationService отвечает за историю уведомлений пользователя.
type NotificationService struct {
	repo NotificationRepository
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Create сохраняет уведомление. Payload сериализуется здесь, чтобы
// вызывающие передавали доменные структуры, а не сырой JSON.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, event string, data any) (*models.Notification, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, apperror.Internal("не удалось сериализовать уведомление", err)
	}

	notification, err := s.repo.Create(ctx, userID, event, payload)
	if err != nil {
		return nil, apperror.Internal("не удалось сохранить уведомление", err)
	}
	return notification, nil
}

// List возвращает страницу уведомлений пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить уведомления", err)
	}
	return notifications, nil
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal("не удалось посчитать уведомления", err)
	}
	return count, nil
}

// MarkRead помечает уведомление прочитанным. Идемпотентна: повторный
// вызов и чужой id не являются ошибкой.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return apperror.Internal("не удалось пометить уведомление", err)
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return apperror.Internal("не удалось пометить уведомления", err)
	}
	return nil
}
