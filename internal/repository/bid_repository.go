package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/repository/common"
)

// Ошибки переходов. Возвращаются условными UPDATE, когда guard в WHERE
// не совпал: это отличает «состояние уже изменилось» от «записи нет».
var (
	ErrBidNotPending  = errors.New("bid is not pending")
	ErrNoCounterOffer = errors.New("bid has no counter offer")
	ErrProjectNotOpen = errors.New("project is not open for bids")
	ErrDuplicateBid   = fmt.Errorf("active bid on project: %w", common.ErrAlreadyExists)
)

// BidRepository отвечает за работу с предложениями и их этапами.
// Таблица bids — единственный источник истины: выборки «по проекту» и
// «по фрилансеру» обслуживаются индексами, а не дублирующей вложенной копией.
type BidRepository struct {
	db *sqlx.DB
}

// NewBidRepository создаёт новый экземпляр.
func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// bidRow повторяет строку таблицы bids: поля встречного оффера хранятся
// плоскими nullable колонками и собираются в CounterOffer после чтения.
type bidRow struct {
	ID                  uuid.UUID  `db:"id"`
	ProjectID           uuid.UUID  `db:"project_id"`
	FreelancerID        uuid.UUID  `db:"freelancer_id"`
	Amount              float64    `db:"amount"`
	DeliveryDays        int        `db:"delivery_days"`
	Proposal            string     `db:"proposal"`
	Status              string     `db:"status"`
	RejectionReason     *string    `db:"rejection_reason"`
	CounterAmount       *float64   `db:"counter_amount"`
	CounterDeliveryDays *int       `db:"counter_delivery_days"`
	CounterMessage      *string    `db:"counter_message"`
	CounterAt           *time.Time `db:"counter_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

func (row *bidRow) toModel() *models.Bid {
	bid := &models.Bid{
		ID:              row.ID,
		ProjectID:       row.ProjectID,
		FreelancerID:    row.FreelancerID,
		Amount:          row.Amount,
		DeliveryDays:    row.DeliveryDays,
		Proposal:        row.Proposal,
		Status:          row.Status,
		RejectionReason: row.RejectionReason,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}

	if row.CounterAmount != nil && row.CounterDeliveryDays != nil && row.CounterAt != nil {
		message := ""
		if row.CounterMessage != nil {
			message = *row.CounterMessage
		}
		bid.CounterOffer = &models.CounterOffer{
			Amount:       *row.CounterAmount,
			DeliveryDays: *row.CounterDeliveryDays,
			Message:      message,
			Date:         *row.CounterAt,
		}
	}

	return bid
}

const bidColumns = `id, project_id, freelancer_id, amount, delivery_days, proposal, status,
	       rejection_reason, counter_amount, counter_delivery_days, counter_message, counter_at,
	       created_at, updated_at`

// Create сохраняет предложение и его этапы в одной транзакции.
// Частичный уникальный индекс по (project_id, freelancer_id) для активных
// статусов превращает гонку двойной подачи в ошибку уникальности.
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid, milestones []models.BidMilestone) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO bids (project_id, freelancer_id, amount, delivery_days, proposal, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`

		if err := tx.QueryRowxContext(
			ctx,
			query,
			bid.ProjectID,
			bid.FreelancerID,
			bid.Amount,
			bid.DeliveryDays,
			bid.Proposal,
			models.BidStatusPending,
		).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt); err != nil {
			return fmt.Errorf("bid repository: insert bid %w", err)
		}

		if len(milestones) > 0 {
			// Batch INSERT для этапов (устранение N+1)
			msQuery := `INSERT INTO bid_milestones (bid_id, position, title, description, amount, delivery_days) VALUES `
			msValues := make([]interface{}, 0, len(milestones)*6)

			for i := range milestones {
				if i > 0 {
					msQuery += ", "
				}
				msQuery += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)", i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6)
				msValues = append(msValues, bid.ID, i, milestones[i].Title, milestones[i].Description, milestones[i].Amount, milestones[i].DeliveryDays)
			}

			if _, err := tx.ExecContext(ctx, msQuery, msValues...); err != nil {
				return fmt.Errorf("bid repository: batch insert milestones %w", err)
			}
		}

		return nil
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateBid
		}
		return err
	}

	bid.Status = models.BidStatusPending
	return nil
}

// GetByID возвращает предложение по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	var row bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get by id %w", err)
	}
	return row.toModel(), nil
}

// GetActiveByProjectAndFreelancer возвращает активное предложение фрилансера
// по проекту (pending/countered/accepted), если оно есть.
func (r *BidRepository) GetActiveByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Bid, error) {
	var row bidRow
	query := `
		SELECT ` + bidColumns + `
		FROM bids
		WHERE project_id = $1 AND freelancer_id = $2 AND status IN ('pending', 'countered', 'accepted')
	`
	if err := r.db.GetContext(ctx, &row, query, projectID, freelancerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotFound
		}
		return nil, fmt.Errorf("bid repository: get active bid %w", err)
	}
	return row.toModel(), nil
}

// ListByProject возвращает все предложения по проекту.
func (r *BidRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	var rows []bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE project_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, fmt.Errorf("bid repository: list by project %w", err)
	}

	bids := make([]models.Bid, 0, len(rows))
	for i := range rows {
		bids = append(bids, *rows[i].toModel())
	}
	return bids, nil
}

// ListByFreelancer возвращает предложения фрилансера по всем проектам
// (выборка «мои ставки», обслуживается индексом по freelancer_id).
// Пустой status означает «без фильтра».
func (r *BidRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, status string) ([]models.Bid, error) {
	var rows []bidRow
	query := `SELECT ` + bidColumns + ` FROM bids WHERE freelancer_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, freelancerID, status); err != nil {
		return nil, fmt.Errorf("bid repository: list by freelancer %w", err)
	}

	bids := make([]models.Bid, 0, len(rows))
	for i := range rows {
		bids = append(bids, *rows[i].toModel())
	}
	return bids, nil
}

// ListMilestones возвращает этапы предложения в порядке подачи.
func (r *BidRepository) ListMilestones(ctx context.Context, bidID uuid.UUID) ([]models.BidMilestone, error) {
	var milestones []models.BidMilestone
	query := `
		SELECT id, bid_id, position, title, description, amount, delivery_days
		FROM bid_milestones
		WHERE bid_id = $1
		ORDER BY position
	`
	if err := r.db.SelectContext(ctx, &milestones, query, bidID); err != nil {
		return nil, fmt.Errorf("bid repository: list milestones %w", err)
	}
	return milestones, nil
}

// AcceptResult итог атомарного принятия предложения.
type AcceptResult struct {
	Bid          *models.Bid
	Project      *models.Project
	RejectedBids []models.Bid
}

// Accept атомарно принимает предложение: перевод ставки в accepted, перевод
// проекта из open в in_progress с назначением исполнителя и каскадное
// отклонение остальных pending ставок выполняются в одной транзакции.
// Побеждает первый зафиксированный Accept: конкурирующий вызов не пройдёт
// guard status='pending' или status='open' и получит ошибку перехода.
func (r *BidRepository) Accept(ctx context.Context, projectID, bidID uuid.UUID) (*AcceptResult, error) {
	result := &AcceptResult{}

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var accepted bidRow
		acceptQuery := `
			UPDATE bids
			SET status = 'accepted', updated_at = NOW()
			WHERE id = $1 AND project_id = $2 AND status = 'pending'
			RETURNING ` + bidColumns + `
		`
		if err := tx.QueryRowxContext(ctx, acceptQuery, bidID, projectID).StructScan(&accepted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBidNotPending
			}
			return fmt.Errorf("bid repository: accept bid %w", err)
		}

		var project models.Project
		projectQuery := `
			UPDATE projects
			SET status = 'in_progress', freelancer_id = $2, start_date = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = 'open'
			RETURNING ` + projectColumns + `
		`
		if err := tx.QueryRowxContext(ctx, projectQuery, projectID, accepted.FreelancerID).StructScan(&project); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Проект уже не open: другой Accept успел раньше.
				return ErrBidNotPending
			}
			return fmt.Errorf("bid repository: close project %w", err)
		}

		// Отклонение проигравших — часть той же операции: окно, в котором
		// две ставки одновременно accepted, не существует.
		var losers []bidRow
		rejectQuery := `
			UPDATE bids
			SET status = 'rejected', updated_at = NOW()
			WHERE project_id = $1 AND id <> $2 AND status = 'pending'
			RETURNING ` + bidColumns + `
		`
		if err := tx.SelectContext(ctx, &losers, rejectQuery, projectID, bidID); err != nil {
			return fmt.Errorf("bid repository: reject siblings %w", err)
		}

		result.Bid = accepted.toModel()
		result.Project = &project
		result.RejectedBids = make([]models.Bid, 0, len(losers))
		for i := range losers {
			result.RejectedBids = append(result.RejectedBids, *losers[i].toModel())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Reject отклоняет pending предложение и сохраняет причину.
func (r *BidRepository) Reject(ctx context.Context, bidID uuid.UUID, reason *string) (*models.Bid, error) {
	var row bidRow
	query := `
		UPDATE bids
		SET status = 'rejected', rejection_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + bidColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, bidID, reason).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotPending
		}
		return nil, fmt.Errorf("bid repository: reject %w", err)
	}
	return row.toModel(), nil
}

// Withdraw отзывает pending предложение фрилансера.
func (r *BidRepository) Withdraw(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	var row bidRow
	query := `
		UPDATE bids
		SET status = 'withdrawn', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + bidColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, bidID).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotPending
		}
		return nil, fmt.Errorf("bid repository: withdraw %w", err)
	}
	return row.toModel(), nil
}

// Counter переводит pending предложение в countered и сохраняет встречный оффер.
func (r *BidRepository) Counter(ctx context.Context, bidID uuid.UUID, offer models.CounterOffer) (*models.Bid, error) {
	var row bidRow
	query := `
		UPDATE bids
		SET status = 'countered',
		    counter_amount = $2,
		    counter_delivery_days = $3,
		    counter_message = $4,
		    counter_at = $5,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + bidColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, bidID, offer.Amount, offer.DeliveryDays, offer.Message, offer.Date).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBidNotPending
		}
		return nil, fmt.Errorf("bid repository: counter %w", err)
	}
	return row.toModel(), nil
}

// CounterAccept принимает встречный оффер: условия ставки перезаписываются,
// предложение возвращается в pending, оффер очищается.
func (r *BidRepository) CounterAccept(ctx context.Context, bidID uuid.UUID, amount float64, deliveryDays int) (*models.Bid, error) {
	var row bidRow
	query := `
		UPDATE bids
		SET status = 'pending',
		    amount = $2,
		    delivery_days = $3,
		    counter_amount = NULL,
		    counter_delivery_days = NULL,
		    counter_message = NULL,
		    counter_at = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'countered' AND counter_amount IS NOT NULL
		RETURNING ` + bidColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, bidID, amount, deliveryDays).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCounterOffer
		}
		return nil, fmt.Errorf("bid repository: counter accept %w", err)
	}
	return row.toModel(), nil
}

// CounterReject отклоняет встречный оффер: предложение возвращается в pending
// с исходными условиями, оффер отбрасывается.
func (r *BidRepository) CounterReject(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	var row bidRow
	query := `
		UPDATE bids
		SET status = 'pending',
		    counter_amount = NULL,
		    counter_delivery_days = NULL,
		    counter_message = NULL,
		    counter_at = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'countered' AND counter_amount IS NOT NULL
		RETURNING ` + bidColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, bidID).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCounterOffer
		}
		return nil, fmt.Errorf("bid repository: counter reject %w", err)
	}
	return row.toModel(), nil
}
