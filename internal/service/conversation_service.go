package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/repository"
	"github.com/avoronin/bidmarket-backend/internal/validation"
)

// ConversationRepository описывает зависимости сервиса чатов.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, projectID uuid.UUID, clientID, freelancerID uuid.UUID) (*models.Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
}

// ConversationService инкапсулирует чаты между сторонами проекта.
type ConversationService struct {
	repo     ConversationRepository
	notifier *Notifier
}

// NewConversationService создаёт сервис чатов.
func NewConversationService(repo ConversationRepository, notifier *Notifier) *ConversationService {
	return &ConversationService{repo: repo, notifier: notifier}
}

// List возвращает чаты пользователя.
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	conversations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить диалоги", err)
	}
	return conversations, nil
}

// Messages возвращает страницу сообщений чата. Доступ только у сторон.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	conversation, err := s.authorize(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.ListMessages(ctx, conversation.ID, limit, offset)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить сообщения", err)
	}
	return messages, nil
}

// Send отправляет сообщение от имени пользователя и уведомляет собеседника.
func (s *ConversationService) Send(ctx context.Context, user *models.User, conversationID uuid.UUID, content string) (*models.Message, error) {
	if err := validation.ValidateNonEmpty("текст сообщения", content); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	conversation, err := s.authorize(ctx, user.ID, conversationID)
	if err != nil {
		return nil, err
	}

	authorType := models.AuthorTypeClient
	recipient := conversation.FreelancerID
	if user.ID == conversation.FreelancerID {
		authorType = models.AuthorTypeFreelancer
		recipient = conversation.ClientID
	}

	authorID := user.ID
	message := &models.Message{
		ConversationID: conversation.ID,
		AuthorType:     authorType,
		AuthorID:       &authorID,
		Content:        content,
	}

	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, apperror.Internal("не удалось отправить сообщение", err)
	}

	s.notifier.Notify(recipient, "newMessage", message)

	return message, nil
}

// SendSystemMessage создаёт чат по проекту (если его ещё нет) и кладёт
// туда системное сообщение. Используется при принятии предложения
// и активации контракта.
func (s *ConversationService) SendSystemMessage(ctx context.Context, projectID, clientID, freelancerID uuid.UUID, content string) error {
	conversation, err := s.repo.GetOrCreate(ctx, projectID, clientID, freelancerID)
	if err != nil {
		return err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		AuthorType:     models.AuthorTypeSystem,
		Content:        content,
	}

	return s.repo.CreateMessage(ctx, message)
}

func (s *ConversationService) authorize(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, apperror.Internal("не удалось загрузить диалог", err)
	}

	if conversation.ClientID != userID && conversation.FreelancerID != userID {
		return nil, apperror.ErrForbidden
	}

	return conversation, nil
}
