package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
)

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) GetOrCreate(ctx context.Context, projectID uuid.UUID, clientID, freelancerID uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, projectID, clientID, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Conversation), args.Error(1)
}

func (m *mockConversationRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	if args.Error(0) == nil {
		message.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockConversationRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	return args.Get(0).([]models.Message), args.Error(1)
}

func TestConversationService_Send_AsClient(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo, newTestNotifier())
	ctx := context.Background()

	client := newClient()
	conversationID := uuid.New()

	repo.On("GetByID", ctx, conversationID).Return(&models.Conversation{
		ID: conversationID, ClientID: client.ID, FreelancerID: uuid.New(),
	}, nil)
	repo.On("CreateMessage", ctx, mock.AnythingOfType("*models.Message")).Return(nil)

	message, err := svc.Send(ctx, client, conversationID, "Добрый день, когда сможете начать?")

	assert.NoError(t, err)
	assert.Equal(t, models.AuthorTypeClient, message.AuthorType)
	assert.Equal(t, client.ID, *message.AuthorID)
	repo.AssertExpectations(t)
}

func TestConversationService_Send_Stranger(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo, newTestNotifier())
	ctx := context.Background()

	conversationID := uuid.New()
	repo.On("GetByID", ctx, conversationID).Return(&models.Conversation{
		ID: conversationID, ClientID: uuid.New(), FreelancerID: uuid.New(),
	}, nil)

	_, err := svc.Send(ctx, newClient(), conversationID, "привет")

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	repo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestConversationService_Send_EmptyContent(t *testing.T) {
	svc := NewConversationService(new(mockConversationRepo), newTestNotifier())

	_, err := svc.Send(context.Background(), newClient(), uuid.New(), "   ")

	assert.True(t, apperror.IsValidation(err))
}

func TestConversationService_SendSystemMessage(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo, newTestNotifier())
	ctx := context.Background()

	projectID := uuid.New()
	clientID := uuid.New()
	freelancerID := uuid.New()
	conversationID := uuid.New()

	repo.On("GetOrCreate", ctx, projectID, clientID, freelancerID).Return(&models.Conversation{
		ID: conversationID, ProjectID: &projectID, ClientID: clientID, FreelancerID: freelancerID,
	}, nil)
	repo.On("CreateMessage", ctx, mock.MatchedBy(func(m *models.Message) bool {
		return m.AuthorType == models.AuthorTypeSystem && m.AuthorID == nil
	})).Return(nil)

	err := svc.SendSystemMessage(ctx, projectID, clientID, freelancerID, "Контракт вступил в силу.")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestConversationService_Messages_ClampsLimit(t *testing.T) {
	repo := new(mockConversationRepo)
	svc := NewConversationService(repo, newTestNotifier())
	ctx := context.Background()

	client := newClient()
	conversationID := uuid.New()

	repo.On("GetByID", ctx, conversationID).Return(&models.Conversation{
		ID: conversationID, ClientID: client.ID, FreelancerID: uuid.New(),
	}, nil)
	repo.On("ListMessages", ctx, conversationID, 100, 0).Return([]models.Message{}, nil)

	_, err := svc.Messages(ctx, client.ID, conversationID, 5000, -3)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
