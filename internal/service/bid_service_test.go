package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/repository"
)

type mockBidRepo struct {
	mock.Mock
}

func (m *mockBidRepo) Create(ctx context.Context, bid *models.Bid, milestones []models.BidMilestone) error {
	args := m.Called(ctx, bid, milestones)
	if args.Error(0) == nil {
		bid.ID = uuid.New()
		bid.Status = models.BidStatusPending
	}
	return args.Error(0)
}

func (m *mockBidRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, status string) ([]models.Bid, error) {
	args := m.Called(ctx, freelancerID, status)
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidRepo) ListMilestones(ctx context.Context, bidID uuid.UUID) ([]models.BidMilestone, error) {
	args := m.Called(ctx, bidID)
	return args.Get(0).([]models.BidMilestone), args.Error(1)
}

func (m *mockBidRepo) Accept(ctx context.Context, projectID, bidID uuid.UUID) (*repository.AcceptResult, error) {
	args := m.Called(ctx, projectID, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.AcceptResult), args.Error(1)
}

func (m *mockBidRepo) Reject(ctx context.Context, bidID uuid.UUID, reason *string) (*models.Bid, error) {
	args := m.Called(ctx, bidID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) GetActiveByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, projectID, freelancerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) Withdraw(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) Counter(ctx context.Context, bidID uuid.UUID, offer models.CounterOffer) (*models.Bid, error) {
	args := m.Called(ctx, bidID, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) CounterAccept(ctx context.Context, bidID uuid.UUID, amount float64, deliveryDays int) (*models.Bid, error) {
	args := m.Called(ctx, bidID, amount, deliveryDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) CounterReject(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

type mockWelcome struct {
	mock.Mock
}

func (m *mockWelcome) SendSystemMessage(ctx context.Context, projectID, clientID, freelancerID uuid.UUID, content string) error {
	args := m.Called(ctx, projectID, clientID, freelancerID, content)
	return args.Error(0)
}

// stubNotificationCreator молча принимает любые уведомления.
type stubNotificationCreator struct{}

func (stubNotificationCreator) Create(ctx context.Context, userID uuid.UUID, event string, data any) (*models.Notification, error) {
	return &models.Notification{}, nil
}

func newTestNotifier() *Notifier {
	return NewNotifier(stubNotificationCreator{}, nil, 100*time.Millisecond)
}

func newFreelancer() *models.User {
	return &models.User{
		ID:          uuid.New(),
		Role:        models.RoleFreelancer,
		DisplayName: "Анна",
	}
}

func newClient() *models.User {
	return &models.User{
		ID:          uuid.New(),
		Role:        models.RoleClient,
		DisplayName: "Иван",
	}
}

func TestBidService_Submit_Success(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()

	project := &models.Project{
		ID:       projectID,
		ClientID: uuid.New(),
		Status:   models.ProjectStatusOpen,
	}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).
		Return(nil, repository.ErrBidNotFound)
	bidRepo.On("Create", ctx, mock.AnythingOfType("*models.Bid"), mock.Anything).Return(nil)

	bid, err := svc.Submit(ctx, freelancer, projectID, SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.NoError(t, err)
	assert.NotNil(t, bid)
	assert.Equal(t, models.BidStatusPending, bid.Status)
	assert.Equal(t, freelancer.ID, bid.FreelancerID)
	bidRepo.AssertExpectations(t)
}

func TestBidService_Submit_ProjectNotOpen(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	projectID := uuid.New()
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:       projectID,
		ClientID: uuid.New(),
		Status:   models.ProjectStatusInProgress,
	}, nil)

	_, err := svc.Submit(ctx, newFreelancer(), projectID, SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrProjectNotOpen)
	bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_Submit_DuplicateActiveBid(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:       projectID,
		ClientID: uuid.New(),
		Status:   models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).Return(&models.Bid{
		ID: uuid.New(), ProjectID: projectID, FreelancerID: freelancer.ID,
		Status: models.BidStatusCountered,
	}, nil)

	_, err := svc.Submit(ctx, freelancer, projectID, SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrDuplicateBid)
	bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_Submit_DuplicateRace(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:       projectID,
		ClientID: uuid.New(),
		Status:   models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).
		Return(nil, repository.ErrBidNotFound)
	bidRepo.On("Create", ctx, mock.Anything, mock.Anything).Return(repository.ErrDuplicateBid)

	_, err := svc.Submit(ctx, freelancer, projectID, SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrDuplicateBid)
}

func TestBidService_ListMine_StatusFilter(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectRepo), newTestNotifier(), nil)
	ctx := context.Background()

	freelancerID := uuid.New()
	bidRepo.On("ListByFreelancer", ctx, freelancerID, models.BidStatusPending).
		Return([]models.Bid{{Status: models.BidStatusPending}}, nil)

	bids, err := svc.ListMine(ctx, freelancerID, models.BidStatusPending)

	assert.NoError(t, err)
	assert.Len(t, bids, 1)
	bidRepo.AssertExpectations(t)
}

func TestBidService_ListMine_UnknownStatus(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectRepo), newTestNotifier(), nil)

	_, err := svc.ListMine(context.Background(), uuid.New(), "archived")

	assert.True(t, apperror.IsValidation(err))
	bidRepo.AssertNotCalled(t, "ListByFreelancer", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_Submit_OwnProject(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:       projectID,
		ClientID: freelancer.ID,
		Status:   models.ProjectStatusOpen,
	}, nil)

	_, err := svc.Submit(ctx, freelancer, projectID, SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestBidService_Submit_ProfileMissing(t *testing.T) {
	svc := NewBidService(new(mockBidRepo), new(mockProjectRepo), newTestNotifier(), nil)

	freelancer := newFreelancer()
	freelancer.DisplayName = ""

	_, err := svc.Submit(context.Background(), freelancer, uuid.New(), SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrProfileMissing)
}

func TestBidService_Submit_WrongRole(t *testing.T) {
	svc := NewBidService(new(mockBidRepo), new(mockProjectRepo), newTestNotifier(), nil)

	_, err := svc.Submit(context.Background(), newClient(), uuid.New(), SubmitBidInput{
		Amount:       1500,
		DeliveryDays: 14,
		Proposal:     "Сделаю быстро и качественно",
	})

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestBidService_Accept_Success(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	welcome := new(mockWelcome)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), welcome)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()
	winnerID := uuid.New()
	loserID := uuid.New()

	project := &models.Project{ID: projectID, ClientID: client.ID, Status: models.ProjectStatusOpen}
	bid := &models.Bid{ID: bidID, ProjectID: projectID, FreelancerID: winnerID, Status: models.BidStatusPending}

	projectRepo.On("GetByID", ctx, projectID).Return(project, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(bid, nil)
	bidRepo.On("Accept", ctx, projectID, bidID).Return(&repository.AcceptResult{
		Bid: &models.Bid{ID: bidID, ProjectID: projectID, FreelancerID: winnerID, Status: models.BidStatusAccepted},
		Project: &models.Project{
			ID: projectID, ClientID: client.ID,
			Status: models.ProjectStatusInProgress, FreelancerID: &winnerID,
		},
		RejectedBids: []models.Bid{
			{ID: uuid.New(), ProjectID: projectID, FreelancerID: loserID, Status: models.BidStatusRejected},
		},
	}, nil)
	welcome.On("SendSystemMessage", ctx, projectID, client.ID, winnerID, mock.AnythingOfType("string")).Return(nil)

	accepted, err := svc.Accept(ctx, client, projectID, bidID)

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusAccepted, accepted.Status)
	welcome.AssertExpectations(t)
	bidRepo.AssertExpectations(t)
}

func TestBidService_Accept_NotOwner(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	projectID := uuid.New()
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:       projectID,
		ClientID: uuid.New(),
		Status:   models.ProjectStatusOpen,
	}, nil)

	_, err := svc.Accept(ctx, newClient(), projectID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	bidRepo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_Accept_AlreadyResolved(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()

	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: client.ID, Status: models.ProjectStatusInProgress,
	}, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: uuid.New(), Status: models.BidStatusRejected,
	}, nil)

	_, err := svc.Accept(ctx, client, projectID, bidID)

	assert.True(t, apperror.IsInvalidState(err))
	bidRepo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
}

// При гонке двух Accept финальное слово за условным UPDATE: сервис
// транслирует проигрыш в INVALID_STATE.
func TestBidService_Accept_LostRace(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()

	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: client.ID, Status: models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: uuid.New(), Status: models.BidStatusPending,
	}, nil)
	bidRepo.On("Accept", ctx, projectID, bidID).Return(nil, repository.ErrBidNotPending)

	_, err := svc.Accept(ctx, client, projectID, bidID)

	assert.ErrorIs(t, err, apperror.ErrBidNotPending)
}

func TestBidService_Reject_WithReason(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()
	reason := "бюджет слишком высокий"

	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: client.ID, Status: models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: uuid.New(), Status: models.BidStatusPending,
	}, nil)
	bidRepo.On("Reject", ctx, bidID, &reason).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, Status: models.BidStatusRejected, RejectionReason: &reason,
	}, nil)

	rejected, err := svc.Reject(ctx, client, projectID, bidID, &reason)

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusRejected, rejected.Status)
	assert.Equal(t, &reason, rejected.RejectionReason)
}

func TestBidService_Withdraw_Success(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID, Status: models.BidStatusPending,
	}, nil)
	bidRepo.On("Withdraw", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID, Status: models.BidStatusWithdrawn,
	}, nil)
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(),
	}, nil)

	withdrawn, err := svc.Withdraw(ctx, freelancer, projectID)

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusWithdrawn, withdrawn.Status)
}

func TestBidService_Withdraw_NoActiveBid(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectRepo), newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).
		Return(nil, repository.ErrBidNotFound)

	_, err := svc.Withdraw(ctx, freelancer, projectID)

	assert.ErrorIs(t, err, apperror.ErrBidNotFound)
	bidRepo.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything)
}

func TestBidService_Counter_Success(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()

	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: client.ID, Status: models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: uuid.New(), Status: models.BidStatusPending,
	}, nil)
	bidRepo.On("Counter", ctx, bidID, mock.AnythingOfType("models.CounterOffer")).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, Status: models.BidStatusCountered,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)

	countered, err := svc.Counter(ctx, client, projectID, bidID, CounterOfferInput{
		Amount:       1200,
		DeliveryDays: 10,
		Message:      "готовы на 1200 за 10 дней",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusCountered, countered.Status)
	assert.NotNil(t, countered.CounterOffer)
}

func TestBidService_Counter_NotifiesFreelancer(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	creator := &recordingCreator{done: make(chan struct{}, 2)}
	svc := NewBidService(bidRepo, projectRepo, NewNotifier(creator, nil, time.Second), nil)
	ctx := context.Background()

	client := newClient()
	projectID := uuid.New()
	bidID := uuid.New()

	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: client.ID, Status: models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: uuid.New(), Status: models.BidStatusPending,
	}, nil)
	bidRepo.On("Counter", ctx, bidID, mock.AnythingOfType("models.CounterOffer")).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, Status: models.BidStatusCountered,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)

	_, err := svc.Counter(ctx, client, projectID, bidID, CounterOfferInput{
		Amount: 1200, DeliveryDays: 10,
	})

	assert.NoError(t, err)
	for i := 0; i < 2; i++ {
		select {
		case <-creator.done:
		case <-time.After(2 * time.Second):
			t.Fatal("уведомление фрилансеру не было сохранено")
		}
	}

	creator.mu.Lock()
	defer creator.mu.Unlock()
	assert.ElementsMatch(t, []string{"counterOffer", "counterOfferReceived"}, creator.events)
}

func TestBidService_CounterAccept_NotifiesClient(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	creator := &recordingCreator{done: make(chan struct{}, 1)}
	svc := NewBidService(bidRepo, projectRepo, NewNotifier(creator, nil, time.Second), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status:       models.BidStatusCountered,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)
	bidRepo.On("CounterAccept", ctx, bidID, 1200.0, 10).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status: models.BidStatusPending, Amount: 1200, DeliveryDays: 10,
	}, nil)
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(),
	}, nil)

	_, err := svc.CounterAccept(ctx, freelancer, projectID, bidID, CounterAcceptInput{})

	assert.NoError(t, err)
	select {
	case <-creator.done:
	case <-time.After(2 * time.Second):
		t.Fatal("уведомление клиенту не было сохранено")
	}

	creator.mu.Lock()
	defer creator.mu.Unlock()
	assert.Equal(t, []string{"counterOfferResponseReceived"}, creator.events)
}

func TestBidService_CounterAccept_AppliesOfferTerms(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status:       models.BidStatusCountered,
		Amount:       1500,
		DeliveryDays: 14,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)
	bidRepo.On("CounterAccept", ctx, bidID, 1200.0, 10).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status: models.BidStatusPending, Amount: 1200, DeliveryDays: 10,
	}, nil)
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(),
	}, nil)

	updated, err := svc.CounterAccept(ctx, freelancer, projectID, bidID, CounterAcceptInput{})

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusPending, updated.Status)
	assert.Equal(t, 1200.0, updated.Amount)
	assert.Equal(t, 10, updated.DeliveryDays)
	assert.Nil(t, updated.CounterOffer)
}

func TestBidService_CounterAccept_Override(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status:       models.BidStatusCountered,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)
	// Явная поправка: меняется только сумма, срок берётся из оффера.
	bidRepo.On("CounterAccept", ctx, bidID, 1300.0, 10).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status: models.BidStatusPending, Amount: 1300, DeliveryDays: 10,
	}, nil)
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(),
	}, nil)

	amount := 1300.0
	updated, err := svc.CounterAccept(ctx, freelancer, projectID, bidID, CounterAcceptInput{Amount: &amount})

	assert.NoError(t, err)
	assert.Equal(t, 1300.0, updated.Amount)
	assert.Equal(t, 10, updated.DeliveryDays)
}

func TestBidService_CounterAccept_NoOffer(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectRepo), newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID, Status: models.BidStatusPending,
	}, nil)

	_, err := svc.CounterAccept(ctx, freelancer, projectID, bidID, CounterAcceptInput{})

	assert.ErrorIs(t, err, apperror.ErrNoCounterOffer)
	bidRepo.AssertNotCalled(t, "CounterAccept", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_CounterReject_KeepsOriginalTerms(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projectRepo := new(mockProjectRepo)
	svc := NewBidService(bidRepo, projectRepo, newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status:       models.BidStatusCountered,
		Amount:       1500,
		DeliveryDays: 14,
		CounterOffer: &models.CounterOffer{Amount: 1200, DeliveryDays: 10},
	}, nil)
	bidRepo.On("CounterReject", ctx, bidID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID,
		Status: models.BidStatusPending, Amount: 1500, DeliveryDays: 14,
	}, nil)
	projectRepo.On("GetByID", ctx, projectID).Return(&models.Project{
		ID: projectID, ClientID: uuid.New(),
	}, nil)

	updated, err := svc.CounterReject(ctx, freelancer, projectID, bidID)

	assert.NoError(t, err)
	assert.Equal(t, models.BidStatusPending, updated.Status)
	assert.Equal(t, 1500.0, updated.Amount)
	assert.Equal(t, 14, updated.DeliveryDays)
}

func TestBidService_Withdraw_TerminalStatus(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectRepo), newTestNotifier(), nil)
	ctx := context.Background()

	freelancer := newFreelancer()
	projectID := uuid.New()
	bidID := uuid.New()

	bidRepo.On("GetActiveByProjectAndFreelancer", ctx, projectID, freelancer.ID).Return(&models.Bid{
		ID: bidID, ProjectID: projectID, FreelancerID: freelancer.ID, Status: models.BidStatusAccepted,
	}, nil)

	_, err := svc.Withdraw(ctx, freelancer, projectID)

	assert.True(t, apperror.IsInvalidState(err))
}
