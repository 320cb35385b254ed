package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/logger"
	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/repository"
	"github.com/avoronin/bidmarket-backend/internal/validation"
)

// ContractRepository описывает зависимости сервиса контрактов.
type ContractRepository interface {
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetByProject(ctx context.Context, projectID uuid.UUID) (*models.Contract, error)
	Sign(ctx context.Context, contractID, userID uuid.UUID, ip string) (*models.Contract, error)
	Terminate(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	Complete(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	CreateDocument(ctx context.Context, doc *models.ContractDocument) error
	ListDocuments(ctx context.Context, contractID uuid.UUID) ([]models.ContractDocument, error)
}

// ContractProjectRepository подгружает проект для проверок владения.
type ContractProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// DocumentStore сохраняет загруженные документы контракта.
type DocumentStore interface {
	Save(ctx context.Context, contractID uuid.UUID, originalName string, r io.Reader) (string, string, int64, error)
	Delete(ctx context.Context, relativePath string) error
}

// ContractService инкапсулирует жизненный цикл контракта: черновик,
// подписание обеими сторонами, активацию, расторжение и завершение.
type ContractService struct {
	contracts ContractRepository
	projects  ContractProjectRepository
	documents DocumentStore
	notifier  *Notifier
	welcome   WelcomeMessenger
}

// NewContractService создаёт сервис контрактов.
func NewContractService(contracts ContractRepository, projects ContractProjectRepository, documents DocumentStore, notifier *Notifier, welcome WelcomeMessenger) *ContractService {
	return &ContractService{
		contracts: contracts,
		projects:  projects,
		documents: documents,
		notifier:  notifier,
		welcome:   welcome,
	}
}

// CreateContractInput содержит условия нового контракта.
type CreateContractInput struct {
	Amount       float64
	DeliveryDays int
	Terms        string
}

// Create создаёт черновик контракта по проекту с назначенным исполнителем.
// На проект допускается не больше одного контракта.
func (s *ContractService) Create(ctx context.Context, client *models.User, projectID uuid.UUID, in CreateContractInput) (*models.Contract, error) {
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateDeliveryDays(in.DeliveryDays); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateNonEmpty("условия контракта", in.Terms); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Internal("не удалось загрузить проект", err)
	}

	if project.ClientID != client.ID {
		return nil, apperror.ErrForbidden
	}
	if project.Status != models.ProjectStatusInProgress || project.FreelancerID == nil {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "контракт можно создать только по проекту с назначенным исполнителем")
	}

	contract := &models.Contract{
		ProjectID:    projectID,
		ClientID:     project.ClientID,
		FreelancerID: *project.FreelancerID,
		Amount:       in.Amount,
		DeliveryDays: in.DeliveryDays,
		Terms:        in.Terms,
	}

	if err := s.contracts.Create(ctx, contract); err != nil {
		if errors.Is(err, repository.ErrContractExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "по проекту уже есть контракт")
		}
		return nil, apperror.Internal("не удалось создать контракт", err)
	}

	s.notifier.Notify(contract.FreelancerID, EventContractCreated, contract)

	return contract, nil
}

// Get возвращает контракт его сторонам.
func (s *ContractService) Get(ctx context.Context, requesterID, contractID uuid.UUID) (*models.Contract, error) {
	return s.authorize(ctx, requesterID, contractID)
}

// GetByProject возвращает контракт проекта его сторонам.
func (s *ContractService) GetByProject(ctx context.Context, requesterID, projectID uuid.UUID) (*models.Contract, error) {
	return s.authorizeByProject(ctx, requesterID, projectID)
}

// Sign фиксирует подпись стороны по контракту проекта. Первая подпись
// переводит черновик в pending, вторая активирует контракт. Повторная
// подпись той же стороны идемпотентна. При активации в чат проекта
// уходит системное сообщение.
func (s *ContractService) Sign(ctx context.Context, user *models.User, projectID uuid.UUID, ip string) (*models.Contract, error) {
	contract, err := s.authorizeByProject(ctx, user.ID, projectID)
	if err != nil {
		return nil, err
	}

	signature := contract.ClientSignature
	if user.ID == contract.FreelancerID {
		signature = contract.FreelancerSignature
	}
	if signature.Signed {
		return contract, nil
	}

	wasActive := contract.Status == models.ContractStatusActive

	signed, err := s.contracts.Sign(ctx, contract.ID, user.ID, ip)
	if err != nil {
		if errors.Is(err, repository.ErrContractState) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "контракт нельзя подписать в текущем статусе")
		}
		return nil, apperror.Internal("не удалось подписать контракт", err)
	}

	counterparty := signed.FreelancerID
	if user.ID == signed.FreelancerID {
		counterparty = signed.ClientID
	}

	if signed.Status == models.ContractStatusActive && !wasActive {
		s.notifier.NotifyMany([]uuid.UUID{signed.ClientID, signed.FreelancerID}, EventContractActivated, signed)

		if s.welcome != nil {
			if err := s.welcome.SendSystemMessage(ctx, signed.ProjectID, signed.ClientID, signed.FreelancerID,
				"Контракт подписан обеими сторонами и вступил в силу."); err != nil {
				logger.Log.WithError(err).WithField("contract_id", signed.ID).Warn("contract service: не удалось создать системное сообщение")
			}
		}
	} else {
		s.notifier.Notify(counterparty, EventContractSigned, signed)
	}

	return signed, nil
}

// Terminate расторгает контракт проекта (до его завершения). Проект при
// этом отменяется.
func (s *ContractService) Terminate(ctx context.Context, user *models.User, projectID uuid.UUID) (*models.Contract, error) {
	contract, err := s.authorizeByProject(ctx, user.ID, projectID)
	if err != nil {
		return nil, err
	}

	if !contract.CanTerminate() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "контракт уже завершён или расторгнут")
	}

	terminated, err := s.contracts.Terminate(ctx, contract.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContractState) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "контракт уже завершён или расторгнут")
		}
		return nil, apperror.Internal("не удалось расторгнуть контракт", err)
	}

	counterparty := terminated.FreelancerID
	if user.ID == terminated.FreelancerID {
		counterparty = terminated.ClientID
	}
	s.notifier.Notify(counterparty, EventContractTerminated, terminated)

	return terminated, nil
}

// Complete завершает активный контракт по окончании работ. Доступно
// только клиенту, проект помечается завершённым.
func (s *ContractService) Complete(ctx context.Context, user *models.User, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.authorize(ctx, user.ID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.ClientID != user.ID {
		return nil, apperror.ErrForbidden
	}

	completed, err := s.contracts.Complete(ctx, contractID)
	if err != nil {
		if errors.Is(err, repository.ErrContractState) {
			return nil, apperror.New(apperror.ErrCodeInvalidState, "завершить можно только активный контракт")
		}
		return nil, apperror.Internal("не удалось завершить контракт", err)
	}

	s.notifier.Notify(completed.FreelancerID, EventContractSigned, completed)

	return completed, nil
}

// UploadDocument сохраняет документ контракта (подписанную копию и т.п.).
func (s *ContractService) UploadDocument(ctx context.Context, user *models.User, contractID uuid.UUID, fileName string, r io.Reader) (*models.ContractDocument, error) {
	if _, err := s.authorize(ctx, user.ID, contractID); err != nil {
		return nil, err
	}

	path, mime, size, err := s.documents.Save(ctx, contractID, fileName, r)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	doc := &models.ContractDocument{
		ContractID: contractID,
		UploaderID: user.ID,
		FilePath:   path,
		FileType:   mime,
		FileSize:   size,
	}

	if err := s.contracts.CreateDocument(ctx, doc); err != nil {
		// Файл без записи в БД недостижим, подчищаем его сразу.
		if delErr := s.documents.Delete(ctx, path); delErr != nil {
			logger.Log.WithError(delErr).WithField("path", path).Warn("contract service: не удалось удалить осиротевший файл")
		}
		return nil, apperror.Internal("не удалось сохранить документ", err)
	}

	return doc, nil
}

// ListDocuments возвращает документы контракта его сторонам.
func (s *ContractService) ListDocuments(ctx context.Context, requesterID, contractID uuid.UUID) ([]models.ContractDocument, error) {
	if _, err := s.authorize(ctx, requesterID, contractID); err != nil {
		return nil, err
	}

	docs, err := s.contracts.ListDocuments(ctx, contractID)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить документы", err)
	}
	return docs, nil
}

func (s *ContractService) authorize(ctx context.Context, requesterID, contractID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return nil, apperror.ErrContractNotFound
		}
		return nil, apperror.Internal("не удалось загрузить контракт", err)
	}
	return s.requireParty(contract, requesterID)
}

func (s *ContractService) authorizeByProject(ctx context.Context, requesterID, projectID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contracts.GetByProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrContractNotFound) {
			return nil, apperror.ErrContractNotFound
		}
		return nil, apperror.Internal("не удалось загрузить контракт", err)
	}
	return s.requireParty(contract, requesterID)
}

func (s *ContractService) requireParty(contract *models.Contract, requesterID uuid.UUID) (*models.Contract, error) {
	if contract.ClientID != requesterID && contract.FreelancerID != requesterID {
		return nil, apperror.ErrForbidden
	}
	return contract, nil
}
