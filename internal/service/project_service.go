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

// ProjectRepository описывает зависимости сервиса проектов.
type ProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	List(ctx context.Context, status string, limit, offset int) ([]models.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error)
}

// ProjectBidLoader подгружает предложения проекта для владельца.
type ProjectBidLoader interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
}

// ProjectService инкапсулирует бизнес-логику проектов.
type ProjectService struct {
	repo ProjectRepository
	bids ProjectBidLoader
}

// NewProjectService создаёт сервис проектов.
func NewProjectService(repo ProjectRepository, bids ProjectBidLoader) *ProjectService {
	return &ProjectService{repo: repo, bids: bids}
}

// CreateProjectInput содержит данные нового проекта.
type CreateProjectInput struct {
	Title       string
	Description string
	BudgetMin   *float64
	BudgetMax   *float64
	DeadlineAt  *string
}

// Create публикует новый проект от имени клиента.
func (s *ProjectService) Create(ctx context.Context, client *models.User, in CreateProjectInput) (*models.Project, error) {
	if client.Role != models.RoleClient {
		return nil, apperror.ErrForbidden
	}
	if err := validation.ValidateProjectTitle(in.Title); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateProjectDescription(in.Description); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if in.BudgetMin != nil {
		if err := validation.ValidateAmount(*in.BudgetMin); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}
	if in.BudgetMax != nil {
		if err := validation.ValidateAmount(*in.BudgetMax); err != nil {
			return nil, apperror.Validation(err.Error())
		}
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
		return nil, apperror.Validation("минимальный бюджет не может превышать максимальный")
	}

	project := &models.Project{
		ClientID:    client.ID,
		Title:       in.Title,
		Description: in.Description,
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, apperror.Internal("не удалось создать проект", err)
	}

	return project, nil
}

// Get возвращает проект. Владельцу проекта дополнительно подгружаются
// все поданные предложения.
func (s *ProjectService) Get(ctx context.Context, projectID uuid.UUID, requesterID uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Internal("не удалось загрузить проект", err)
	}

	if project.ClientID == requesterID {
		bids, err := s.bids.ListByProject(ctx, projectID)
		if err != nil {
			return nil, apperror.Internal("не удалось загрузить предложения проекта", err)
		}
		project.Bids = bids
	}

	return project, nil
}

// List возвращает проекты с необязательным фильтром по статусу.
func (s *ProjectService) List(ctx context.Context, status string, limit, offset int) ([]models.Project, error) {
	if _, ok := models.ValidProjectStatuses[status]; status != "" && !ok {
		return nil, apperror.Validation("неизвестный статус проекта")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	projects, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить проекты", err)
	}
	return projects, nil
}

// ListMine возвращает проекты пользователя в зависимости от роли:
// для клиента — опубликованные им, для фрилансера — назначенные ему.
func (s *ProjectService) ListMine(ctx context.Context, user *models.User) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	if user.Role == models.RoleClient {
		projects, err = s.repo.ListByClient(ctx, user.ID)
	} else {
		projects, err = s.repo.ListByFreelancer(ctx, user.ID)
	}
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить проекты", err)
	}
	return projects, nil
}
