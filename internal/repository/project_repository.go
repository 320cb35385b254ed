package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/repository/common"
)

// Ошибки уровня репозитория. Каждая оборачивает общий маркер из common,
// так что errors.Is работает и по конкретной сущности, и по классу ошибки.
var (
	ErrProjectNotFound      = fmt.Errorf("project: %w", common.ErrNotFound)
	ErrBidNotFound          = fmt.Errorf("bid: %w", common.ErrNotFound)
	ErrConversationNotFound = fmt.Errorf("conversation: %w", common.ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user: %w", common.ErrNotFound)
)

// ProjectRepository отвечает за работу с проектами.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository создаёт новый экземпляр.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, client_id, title, description, budget_min, budget_max, status,
	       freelancer_id, contract_id, start_date, deadline_at, created_at, updated_at`

// GetByID возвращает проект по идентификатору.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("project repository: get by id %w", err)
	}
	return &project, nil
}

// Create сохраняет новый проект. Статус всегда open: торги открываются публикацией.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (client_id, title, description, budget_min, budget_max, status, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		project.ClientID,
		project.Title,
		project.Description,
		project.BudgetMin,
		project.BudgetMax,
		models.ProjectStatusOpen,
		project.DeadlineAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("project repository: insert project %w", err)
	}

	project.Status = models.ProjectStatusOpen
	return nil
}

// List возвращает проекты с пагинацией, опционально фильтруя по статусу.
func (r *ProjectRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Project, error) {
	query := `
		SELECT ` + projectColumns + `,
		       (SELECT COUNT(*) FROM bids b WHERE b.project_id = projects.id) AS bids_count
		FROM projects
	`
	args := []interface{}{}
	argIndex := 1

	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("project repository: list %w", err)
	}

	return projects, nil
}

// ListByClient возвращает проекты клиента.
func (r *ProjectRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Project, error) {
	query := `
		SELECT ` + projectColumns + `,
		       (SELECT COUNT(*) FROM bids b WHERE b.project_id = projects.id) AS bids_count
		FROM projects
		WHERE client_id = $1
		ORDER BY created_at DESC
	`

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, clientID); err != nil {
		return nil, fmt.Errorf("project repository: list by client %w", err)
	}

	return projects, nil
}

// ListByFreelancer возвращает проекты, где фрилансер выбран исполнителем.
func (r *ProjectRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE freelancer_id = $1 ORDER BY created_at DESC`

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, freelancerID); err != nil {
		return nil, fmt.Errorf("project repository: list by freelancer %w", err)
	}

	return projects, nil
}
