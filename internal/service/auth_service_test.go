package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/repository"
)

type mockAuthRepo struct {
	mock.Mock
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAuthRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockAuthRepo) UpdateProfile(ctx context.Context, id uuid.UUID, displayName string) (*models.User, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockAuthRepo) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:       "Anna@Example.COM",
		Password:    "Password1",
		Username:    "anna_dev",
		Role:        models.RoleFreelancer,
		DisplayName: "Анна",
	}, SessionMeta{UserAgent: "test", IP: "127.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, "anna@example.com", result.User.Email)
	assert.Equal(t, models.RoleFreelancer, result.User.Role)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_UsernameAsDisplayName(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil)
	repo.On("CreateSession", ctx, mock.Anything).Return(nil)

	result, err := svc.Register(ctx, RegisterInput{
		Email:    "ivan@example.com",
		Password: "Password1",
		Username: "ivan",
		Role:     models.RoleClient,
	}, SessionMeta{})

	assert.NoError(t, err)
	assert.Equal(t, "ivan", result.User.DisplayName)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(repository.ErrUserExists)

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "anna@example.com",
		Password: "Password1",
		Username: "anna_dev",
		Role:     models.RoleFreelancer,
	}, SessionMeta{})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_BadRole(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "anna@example.com",
		Password: "Password1",
		Username: "anna_dev",
		Role:     "admin",
	}, SessionMeta{})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := NewAuthService(new(mockAuthRepo), newTestTokenManager())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "anna@example.com",
		Password: "password",
		Username: "anna_dev",
		Role:     models.RoleFreelancer,
	}, SessionMeta{})

	assert.True(t, apperror.IsValidation(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	assert.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Email:        "anna@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleFreelancer,
	}

	repo.On("GetByEmail", ctx, "anna@example.com").Return(user, nil)
	repo.On("UpdateLastLoginAt", ctx, user.ID).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	result, err := svc.Login(ctx, LoginInput{
		Email:    "Anna@example.com",
		Password: "Password1",
	}, SessionMeta{UserAgent: "test", IP: "127.0.0.1"})

	assert.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.MinCost)
	assert.NoError(t, err)

	repo.On("GetByEmail", ctx, "anna@example.com").Return(&models.User{
		ID:           uuid.New(),
		PasswordHash: string(hash),
	}, nil)

	_, err = svc.Login(ctx, LoginInput{
		Email:    "anna@example.com",
		Password: "WrongPassword1",
	}, SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(ctx, LoginInput{
		Email:    "ghost@example.com",
		Password: "Password1",
	}, SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm)
	ctx := context.Background()

	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	pair, _, err := tm.GeneratePair(user)
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(&models.Session{
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
	}, nil)
	repo.On("GetByID", ctx, user.ID).Return(user, nil)
	repo.On("DeleteSession", ctx, pair.RefreshToken).Return(nil)
	repo.On("CreateSession", ctx, mock.AnythingOfType("*models.Session")).Return(nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken, SessionMeta{})

	assert.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockAuthRepo)
	svc := NewAuthService(repo, newTestTokenManager())

	_, err := svc.Refresh(context.Background(), "not-a-jwt", SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	repo.AssertNotCalled(t, "GetSessionByToken", mock.Anything, mock.Anything)
}

func TestAuthService_Refresh_UnknownSession(t *testing.T) {
	repo := new(mockAuthRepo)
	tm := newTestTokenManager()
	svc := NewAuthService(repo, tm)
	ctx := context.Background()

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleClient})
	assert.NoError(t, err)

	repo.On("GetSessionByToken", ctx, pair.RefreshToken).Return(nil, repository.ErrUserNotFound)

	_, err = svc.Refresh(ctx, pair.RefreshToken, SessionMeta{})

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestTokenManager_AccessTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager()
	user := &models.User{ID: uuid.New(), Role: models.RoleFreelancer}

	pair, refreshExp, err := tm.GeneratePair(user)
	assert.NoError(t, err)
	assert.True(t, refreshExp.After(time.Now()))

	userID, role, err := tm.ParseAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, models.RoleFreelancer, role)
}

func TestTokenManager_RefreshNotValidAsAccess(t *testing.T) {
	tm := newTestTokenManager()

	pair, _, err := tm.GeneratePair(&models.User{ID: uuid.New(), Role: models.RoleClient})
	assert.NoError(t, err)

	_, _, err = tm.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
}
