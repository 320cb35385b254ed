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

// Остальные методы ProjectRepository поверх mockProjectRepo из bid_service_test.go.

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	if args.Error(0) == nil {
		project.ID = uuid.New()
		project.Status = models.ProjectStatusOpen
	}
	return args.Error(0)
}

func (m *mockProjectRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Project, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *mockProjectRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.Project), args.Error(1)
}

func TestProjectService_Create_Success(t *testing.T) {
	repo := new(mockProjectRepo)
	svc := NewProjectService(repo, new(mockBidRepo))
	ctx := context.Background()

	client := newClient()
	budgetMin := 500.0
	budgetMax := 1500.0

	repo.On("Create", ctx, mock.AnythingOfType("*models.Project")).Return(nil)

	project, err := svc.Create(ctx, client, CreateProjectInput{
		Title:       "Лендинг для кофейни",
		Description: "Нужен одностраничный сайт с формой заказа",
		BudgetMin:   &budgetMin,
		BudgetMax:   &budgetMax,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ProjectStatusOpen, project.Status)
	assert.Equal(t, client.ID, project.ClientID)
	repo.AssertExpectations(t)
}

func TestProjectService_Create_FreelancerForbidden(t *testing.T) {
	svc := NewProjectService(new(mockProjectRepo), new(mockBidRepo))

	_, err := svc.Create(context.Background(), newFreelancer(), CreateProjectInput{
		Title:       "Лендинг для кофейни",
		Description: "Нужен одностраничный сайт с формой заказа",
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestProjectService_Create_BudgetOrder(t *testing.T) {
	svc := NewProjectService(new(mockProjectRepo), new(mockBidRepo))

	budgetMin := 2000.0
	budgetMax := 500.0

	_, err := svc.Create(context.Background(), newClient(), CreateProjectInput{
		Title:       "Лендинг для кофейни",
		Description: "Нужен одностраничный сайт с формой заказа",
		BudgetMin:   &budgetMin,
		BudgetMax:   &budgetMax,
	})

	assert.True(t, apperror.IsValidation(err))
}

func TestProjectService_Get_OwnerSeesBids(t *testing.T) {
	repo := new(mockProjectRepo)
	bidRepo := new(mockBidRepo)
	svc := NewProjectService(repo, bidRepo)
	ctx := context.Background()

	clientID := uuid.New()
	projectID := uuid.New()

	repo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: clientID, Status: models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("ListByProject", ctx, projectID).Return([]models.Bid{
		{ID: uuid.New(), ProjectID: projectID, Status: models.BidStatusPending},
	}, nil)

	project, err := svc.Get(ctx, projectID, clientID)

	assert.NoError(t, err)
	assert.Len(t, project.Bids, 1)
}

func TestProjectService_Get_StrangerSeesNoBids(t *testing.T) {
	repo := new(mockProjectRepo)
	bidRepo := new(mockBidRepo)
	svc := NewProjectService(repo, bidRepo)
	ctx := context.Background()

	projectID := uuid.New()
	repo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(), Status: models.ProjectStatusOpen,
	}, nil)

	project, err := svc.Get(ctx, projectID, uuid.New())

	assert.NoError(t, err)
	assert.Empty(t, project.Bids)
	bidRepo.AssertNotCalled(t, "ListByProject", mock.Anything, mock.Anything)
}

func TestProjectService_List_UnknownStatus(t *testing.T) {
	svc := NewProjectService(new(mockProjectRepo), new(mockBidRepo))

	_, err := svc.List(context.Background(), "archived", 20, 0)

	assert.True(t, apperror.IsValidation(err))
}

func TestProjectService_ListMine_ByRole(t *testing.T) {
	repo := new(mockProjectRepo)
	svc := NewProjectService(repo, new(mockBidRepo))
	ctx := context.Background()

	client := newClient()
	freelancer := newFreelancer()

	repo.On("ListByClient", ctx, client.ID).Return([]models.Project{{ID: uuid.New()}}, nil)
	repo.On("ListByFreelancer", ctx, freelancer.ID).Return([]models.Project{}, nil)

	own, err := svc.ListMine(ctx, client)
	assert.NoError(t, err)
	assert.Len(t, own, 1)

	assigned, err := svc.ListMine(ctx, freelancer)
	assert.NoError(t, err)
	assert.Empty(t, assigned)
	repo.AssertExpectations(t)
}
