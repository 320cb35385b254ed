package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/repository/common"
)

var (
	ErrContractNotFound = fmt.Errorf("contract: %w", common.ErrNotFound)
	ErrContractExists   = fmt.Errorf("project contract: %w", common.ErrAlreadyExists)
	ErrContractState    = errors.New("contract is not in a valid state for this operation")
)

// ContractRepository отвечает за контракты, подписи и приложенные документы.
type ContractRepository struct {
	db *sqlx.DB
}

// NewContractRepository создаёт новый экземпляр.
func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// contractRow повторяет строку таблицы contracts: подписи хранятся плоскими
// колонками и собираются в Signature после чтения.
type contractRow struct {
	ID                 uuid.UUID  `db:"id"`
	ProjectID          uuid.UUID  `db:"project_id"`
	ClientID           uuid.UUID  `db:"client_id"`
	FreelancerID       uuid.UUID  `db:"freelancer_id"`
	Amount             float64    `db:"amount"`
	DeliveryDays       int        `db:"delivery_days"`
	Terms              string     `db:"terms"`
	Status             string     `db:"status"`
	ClientSigned       bool       `db:"client_signed"`
	ClientSignedAt     *time.Time `db:"client_signed_at"`
	ClientSignIP       *string    `db:"client_sign_ip"`
	FreelancerSigned   bool       `db:"freelancer_signed"`
	FreelancerSignedAt *time.Time `db:"freelancer_signed_at"`
	FreelancerSignIP   *string    `db:"freelancer_sign_ip"`
	ActivatedAt        *time.Time `db:"activated_at"`
	TerminatedAt       *time.Time `db:"terminated_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (row *contractRow) toModel() *models.Contract {
	return &models.Contract{
		ID:           row.ID,
		ProjectID:    row.ProjectID,
		ClientID:     row.ClientID,
		FreelancerID: row.FreelancerID,
		Amount:       row.Amount,
		DeliveryDays: row.DeliveryDays,
		Terms:        row.Terms,
		Status:       row.Status,
		ClientSignature: models.Signature{
			Signed:    row.ClientSigned,
			Date:      row.ClientSignedAt,
			IPAddress: row.ClientSignIP,
		},
		FreelancerSignature: models.Signature{
			Signed:    row.FreelancerSigned,
			Date:      row.FreelancerSignedAt,
			IPAddress: row.FreelancerSignIP,
		},
		ActivatedAt:  row.ActivatedAt,
		TerminatedAt: row.TerminatedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

const contractColumns = `id, project_id, client_id, freelancer_id, amount, delivery_days, terms, status,
	       client_signed, client_signed_at, client_sign_ip,
	       freelancer_signed, freelancer_signed_at, freelancer_sign_ip,
	       activated_at, terminated_at, created_at, updated_at`

// Create сохраняет контракт и привязывает его к проекту в одной транзакции.
// Guard contract_id IS NULL гарантирует не больше одного контракта на проект
// даже при конкурентных вызовах.
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO contracts (project_id, client_id, freelancer_id, amount, delivery_days, terms, status)
			VALUES ($1, $2, $3, $4, $5, $6, 'draft')
			RETURNING id, created_at, updated_at
		`

		if err := tx.QueryRowxContext(
			ctx,
			query,
			contract.ProjectID,
			contract.ClientID,
			contract.FreelancerID,
			contract.Amount,
			contract.DeliveryDays,
			contract.Terms,
		).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt); err != nil {
			return fmt.Errorf("contract repository: insert contract %w", err)
		}

		result, err := tx.ExecContext(
			ctx,
			`UPDATE projects SET contract_id = $2, updated_at = NOW() WHERE id = $1 AND contract_id IS NULL`,
			contract.ProjectID,
			contract.ID,
		)
		if err != nil {
			return fmt.Errorf("contract repository: link project %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("contract repository: rows affected %w", err)
		}
		if rows == 0 {
			return ErrContractExists
		}

		contract.Status = models.ContractStatusDraft
		return nil
	})
}

// GetByID возвращает контракт по идентификатору.
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("contract repository: get by id %w", err)
	}
	return row.toModel(), nil
}

// GetByProject возвращает контракт проекта.
func (r *ContractRepository) GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Contract, error) {
	var row contractRow
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE project_id = $1`
	if err := r.db.GetContext(ctx, &row, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractNotFound
		}
		return nil, fmt.Errorf("contract repository: get by project %w", err)
	}
	return row.toModel(), nil
}

// Sign фиксирует подпись стороны. Статус пересчитывается в том же UPDATE:
// первая подпись переводит draft в pending, вторая — в active с отметкой
// времени активации. Повторная подпись той же стороны идемпотентна.
func (r *ContractRepository) Sign(ctx context.Context, contractID, userID uuid.UUID, ip string) (*models.Contract, error) {
	var row contractRow
	query := `
		UPDATE contracts
		SET client_signed        = client_signed OR (client_id = $2),
		    client_signed_at     = CASE WHEN client_id = $2 AND NOT client_signed THEN NOW() ELSE client_signed_at END,
		    client_sign_ip       = CASE WHEN client_id = $2 AND NOT client_signed THEN $3 ELSE client_sign_ip END,
		    freelancer_signed    = freelancer_signed OR (freelancer_id = $2),
		    freelancer_signed_at = CASE WHEN freelancer_id = $2 AND NOT freelancer_signed THEN NOW() ELSE freelancer_signed_at END,
		    freelancer_sign_ip   = CASE WHEN freelancer_id = $2 AND NOT freelancer_signed THEN $3 ELSE freelancer_sign_ip END,
		    status = CASE
		        WHEN (client_signed OR client_id = $2) AND (freelancer_signed OR freelancer_id = $2) THEN 'active'
		        ELSE 'pending'
		    END,
		    activated_at = CASE
		        WHEN (client_signed OR client_id = $2) AND (freelancer_signed OR freelancer_id = $2) AND activated_at IS NULL THEN NOW()
		        ELSE activated_at
		    END,
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'pending')
		RETURNING ` + contractColumns + `
	`
	if err := r.db.QueryRowxContext(ctx, query, contractID, userID, ip).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContractState
		}
		return nil, fmt.Errorf("contract repository: sign %w", err)
	}
	return row.toModel(), nil
}

// Terminate расторгает контракт (из draft, pending или active) и отменяет
// связанный проект в одной транзакции.
func (r *ContractRepository) Terminate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var row contractRow

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE contracts
			SET status = 'terminated', terminated_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status IN ('draft', 'pending', 'active')
			RETURNING ` + contractColumns + `
		`
		if err := tx.QueryRowxContext(ctx, query, contractID).StructScan(&row); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrContractState
			}
			return fmt.Errorf("contract repository: terminate %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE projects SET status = 'cancelled', updated_at = NOW() WHERE id = $1`,
			row.ProjectID,
		); err != nil {
			return fmt.Errorf("contract repository: cancel project %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

// Complete закрывает активный контракт по завершении работ и помечает
// проект завершённым.
func (r *ContractRepository) Complete(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var row contractRow

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE contracts
			SET status = 'completed', updated_at = NOW()
			WHERE id = $1 AND status = 'active'
			RETURNING ` + contractColumns + `
		`
		if err := tx.QueryRowxContext(ctx, query, contractID).StructScan(&row); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrContractState
			}
			return fmt.Errorf("contract repository: complete %w", err)
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE projects SET status = 'completed', updated_at = NOW() WHERE id = $1`,
			row.ProjectID,
		); err != nil {
			return fmt.Errorf("contract repository: complete project %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return row.toModel(), nil
}

// CreateDocument сохраняет метаданные загруженного документа контракта.
func (r *ContractRepository) CreateDocument(ctx context.Context, doc *models.ContractDocument) error {
	query := `
		INSERT INTO contract_documents (contract_id, uploader_id, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		doc.ContractID,
		doc.UploaderID,
		doc.FilePath,
		doc.FileType,
		doc.FileSize,
	).Scan(&doc.ID, &doc.CreatedAt); err != nil {
		return fmt.Errorf("contract repository: insert document %w", err)
	}

	return nil
}

// ListDocuments возвращает документы контракта.
func (r *ContractRepository) ListDocuments(ctx context.Context, contractID uuid.UUID) ([]models.ContractDocument, error) {
	var docs []models.ContractDocument
	query := `
		SELECT id, contract_id, uploader_id, file_path, file_type, file_size, created_at
		FROM contract_documents
		WHERE contract_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &docs, query, contractID); err != nil {
		return nil, fmt.Errorf("contract repository: list documents %w", err)
	}
	return docs, nil
}
