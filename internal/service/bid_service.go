package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/logger"
	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/negotiation"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
	"github.com/avoronin/bidmarket-backend/internal/repository"
	"github.com/avoronin/bidmarket-backend/internal/validation"
)

// BidRepository описывает зависимости сервиса предложений от хранилища.
type BidRepository interface {
	Create(ctx context.Context, bid *models.Bid, milestones []models.BidMilestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	GetActiveByProjectAndFreelancer(ctx context.Context, projectID, freelancerID uuid.UUID) (*models.Bid, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, status string) ([]models.Bid, error)
	ListMilestones(ctx context.Context, bidID uuid.UUID) ([]models.BidMilestone, error)
	Accept(ctx context.Context, projectID, bidID uuid.UUID) (*repository.AcceptResult, error)
	Reject(ctx context.Context, bidID uuid.UUID, reason *string) (*models.Bid, error)
	Withdraw(ctx context.Context, bidID uuid.UUID) (*models.Bid, error)
	Counter(ctx context.Context, bidID uuid.UUID, offer models.CounterOffer) (*models.Bid, error)
	CounterAccept(ctx context.Context, bidID uuid.UUID, amount float64, deliveryDays int) (*models.Bid, error)
	CounterReject(ctx context.Context, bidID uuid.UUID) (*models.Bid, error)
}

// BidProjectRepository подгружает проект для проверок владения и статуса.
type BidProjectRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// WelcomeMessenger создаёт чат между сторонами после принятия предложения.
type WelcomeMessenger interface {
	SendSystemMessage(ctx context.Context, projectID, clientID, freelancerID uuid.UUID, content string) error
}

// BidService инкапсулирует жизненный цикл предложения. Проверки статусов
// здесь дают ранний понятный отказ, но финальное слово всегда за условным
// UPDATE в хранилище: при гонке двух операций фиксируется только первая.
type BidService struct {
	bids     BidRepository
	projects BidProjectRepository
	notifier *Notifier
	welcome  WelcomeMessenger
}

// NewBidService создаёт сервис предложений.
func NewBidService(bids BidRepository, projects BidProjectRepository, notifier *Notifier, welcome WelcomeMessenger) *BidService {
	return &BidService{
		bids:     bids,
		projects: projects,
		notifier: notifier,
		welcome:  welcome,
	}
}

// SubmitBidInput содержит данные нового предложения.
type SubmitBidInput struct {
	Amount       float64
	DeliveryDays int
	Proposal     string
	Milestones   []MilestoneInput
}

// MilestoneInput описывает один этап работ в предложении.
type MilestoneInput struct {
	Title        string
	Description  string
	Amount       float64
	DeliveryDays int
}

// CounterOfferInput содержит условия встречного оффера клиента.
type CounterOfferInput struct {
	Amount       float64
	DeliveryDays int
	Message      string
}

// CounterAcceptInput необязательные поправки к условиям оффера при его
// принятии. Пустые поля означают «принять как есть».
type CounterAcceptInput struct {
	Amount       *float64
	DeliveryDays *int
}

// Submit подаёт предложение на открытый проект.
func (s *BidService) Submit(ctx context.Context, freelancer *models.User, projectID uuid.UUID, in SubmitBidInput) (*models.Bid, error) {
	if freelancer.Role != models.RoleFreelancer {
		return nil, apperror.ErrForbidden
	}
	if freelancer.DisplayName == "" {
		return nil, apperror.ErrProfileMissing
	}

	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateDeliveryDays(in.DeliveryDays); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateProposal(in.Proposal); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if len(in.Milestones) > validation.MaxMilestonesCount {
		return nil, apperror.Validation("слишком много этапов")
	}

	milestones := make([]models.BidMilestone, 0, len(in.Milestones))
	for _, m := range in.Milestones {
		if err := validation.ValidateNonEmpty("название этапа", m.Title); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		if err := validation.ValidateAmount(m.Amount); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		if err := validation.ValidateDeliveryDays(m.DeliveryDays); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		milestones = append(milestones, models.BidMilestone{
			Title:        m.Title,
			Description:  m.Description,
			Amount:       m.Amount,
			DeliveryDays: m.DeliveryDays,
		})
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Internal("не удалось загрузить проект", err)
	}

	if project.ClientID == freelancer.ID {
		return nil, apperror.ErrForbidden
	}
	if !project.IsOpenForBids() {
		return nil, apperror.ErrProjectNotOpen
	}

	// Ранний отказ на повторную ставку. Гонку двух одновременных подач
	// всё равно ловит частичный уникальный индекс внутри Create.
	existing, err := s.bids.GetActiveByProjectAndFreelancer(ctx, projectID, freelancer.ID)
	if err != nil && !errors.Is(err, repository.ErrBidNotFound) {
		return nil, apperror.Internal("не удалось проверить предложения", err)
	}
	if existing != nil && existing.IsActive() {
		return nil, apperror.ErrDuplicateBid
	}

	bid := &models.Bid{
		ProjectID:    projectID,
		FreelancerID: freelancer.ID,
		Amount:       in.Amount,
		DeliveryDays: in.DeliveryDays,
		Proposal:     in.Proposal,
	}

	if err := s.bids.Create(ctx, bid, milestones); err != nil {
		if errors.Is(err, repository.ErrDuplicateBid) {
			return nil, apperror.ErrDuplicateBid
		}
		return nil, apperror.Internal("не удалось сохранить предложение", err)
	}
	bid.Milestones = milestones

	s.notifier.Notify(project.ClientID, EventBidReceived, bid)

	return bid, nil
}

// Get возвращает предложение вместе с этапами. Доступ имеют только
// стороны переговоров: автор ставки и владелец проекта.
func (s *BidService) Get(ctx context.Context, requesterID uuid.UUID, bidID uuid.UUID) (*models.Bid, error) {
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.FreelancerID != requesterID {
		project, err := s.projects.GetByID(ctx, bid.ProjectID)
		if err != nil || project.ClientID != requesterID {
			return nil, apperror.ErrForbidden
		}
	}

	milestones, err := s.bids.ListMilestones(ctx, bidID)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить этапы", err)
	}
	bid.Milestones = milestones

	return bid, nil
}

// ListByProject возвращает предложения проекта его владельцу.
func (s *BidService) ListByProject(ctx context.Context, requesterID uuid.UUID, projectID uuid.UUID) ([]models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, apperror.Internal("не удалось загрузить проект", err)
	}
	if project.ClientID != requesterID {
		return nil, apperror.ErrForbidden
	}

	bids, err := s.bids.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить предложения", err)
	}
	return bids, nil
}

// ListMine возвращает предложения фрилансера, опционально по статусу.
func (s *BidService) ListMine(ctx context.Context, freelancerID uuid.UUID, status string) ([]models.Bid, error) {
	if status != "" {
		if _, ok := models.ValidBidStatuses[status]; !ok {
			return nil, apperror.Validation("неизвестный статус предложения")
		}
	}

	bids, err := s.bids.ListByFreelancer(ctx, freelancerID, status)
	if err != nil {
		return nil, apperror.Internal("не удалось загрузить предложения", err)
	}
	return bids, nil
}

// Accept принимает предложение от имени клиента. Ставка, проект и
// отклонение остальных pending ставок меняются атомарно: при двух
// конкурирующих вызовах второй получит INVALID_STATE.
func (s *BidService) Accept(ctx context.Context, client *models.User, projectID, bidID uuid.UUID) (*models.Bid, error) {
	bid, project, err := s.authorizeClientAction(ctx, client, projectID, bidID, negotiation.ActionAccept)
	if err != nil {
		return nil, err
	}

	result, err := s.bids.Accept(ctx, projectID, bidID)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionAccept)
	}

	s.notifier.Notify(bid.FreelancerID, EventBidAccepted, result.Bid)
	for _, rejected := range result.RejectedBids {
		s.notifier.Notify(rejected.FreelancerID, EventBidAcceptedUpdate, rejected)
	}

	// Приветственное сообщение не должно ломать принятие
	if s.welcome != nil {
		if err := s.welcome.SendSystemMessage(ctx, projectID, project.ClientID, bid.FreelancerID,
			"Предложение принято. Обсудите детали работы здесь."); err != nil {
			logger.Log.WithError(err).WithField("project_id", projectID).Warn("bid service: не удалось создать приветственное сообщение")
		}
	}

	return result.Bid, nil
}

// Reject отклоняет предложение с необязательной причиной.
func (s *BidService) Reject(ctx context.Context, client *models.User, projectID, bidID uuid.UUID, reason *string) (*models.Bid, error) {
	bid, _, err := s.authorizeClientAction(ctx, client, projectID, bidID, negotiation.ActionReject)
	if err != nil {
		return nil, err
	}

	rejected, err := s.bids.Reject(ctx, bidID, reason)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionReject)
	}

	s.notifier.Notify(bid.FreelancerID, EventBidUpdate, rejected)

	return rejected, nil
}

// Counter выставляет встречный оффер по pending предложению.
func (s *BidService) Counter(ctx context.Context, client *models.User, projectID, bidID uuid.UUID, in CounterOfferInput) (*models.Bid, error) {
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateDeliveryDays(in.DeliveryDays); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	bid, _, err := s.authorizeClientAction(ctx, client, projectID, bidID, negotiation.ActionCounter)
	if err != nil {
		return nil, err
	}

	offer := models.CounterOffer{
		Amount:       in.Amount,
		DeliveryDays: in.DeliveryDays,
		Message:      in.Message,
		Date:         time.Now(),
	}

	countered, err := s.bids.Counter(ctx, bidID, offer)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionCounter)
	}

	s.notifier.Notify(bid.FreelancerID, EventCounterOffer, countered)
	s.notifier.Notify(bid.FreelancerID, EventCounterOfferReceived, countered)

	return countered, nil
}

// Withdraw отзывает pending предложение фрилансера на проекте. Ставка
// ищется по автору: активная ставка фрилансера на проект всегда одна.
func (s *BidService) Withdraw(ctx context.Context, freelancer *models.User, projectID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetActiveByProjectAndFreelancer(ctx, projectID, freelancer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Internal("не удалось загрузить предложение", err)
	}

	if _, err := negotiation.CanAct(bid.Status, negotiation.ActionWithdraw, negotiation.ActorFreelancer); err != nil {
		return nil, err
	}

	withdrawn, err := s.bids.Withdraw(ctx, bid.ID)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionWithdraw)
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err == nil {
		s.notifier.Notify(project.ClientID, EventBidUpdate, withdrawn)
	}

	return withdrawn, nil
}

// CounterAccept принимает встречный оффер клиента: условия оффера (или
// явные поправки из in) переносятся в ставку, и она возвращается клиенту
// на рассмотрение.
func (s *BidService) CounterAccept(ctx context.Context, freelancer *models.User, projectID, bidID uuid.UUID, in CounterAcceptInput) (*models.Bid, error) {
	bid, err := s.authorizeFreelancerAction(ctx, freelancer, projectID, bidID, negotiation.ActionCounterAccept)
	if err != nil {
		return nil, err
	}
	if bid.CounterOffer == nil {
		return nil, apperror.ErrNoCounterOffer
	}

	amount := bid.CounterOffer.Amount
	deliveryDays := bid.CounterOffer.DeliveryDays
	if in.Amount != nil {
		amount = *in.Amount
	}
	if in.DeliveryDays != nil {
		deliveryDays = *in.DeliveryDays
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateDeliveryDays(deliveryDays); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	updated, err := s.bids.CounterAccept(ctx, bidID, amount, deliveryDays)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionCounterAccept)
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err == nil {
		s.notifier.Notify(project.ClientID, EventCounterResponse, updated)
	}

	return updated, nil
}

// CounterReject отклоняет встречный оффер: предложение возвращается
// в pending с исходными условиями.
func (s *BidService) CounterReject(ctx context.Context, freelancer *models.User, projectID, bidID uuid.UUID) (*models.Bid, error) {
	bid, err := s.authorizeFreelancerAction(ctx, freelancer, projectID, bidID, negotiation.ActionCounterReject)
	if err != nil {
		return nil, err
	}

	updated, err := s.bids.CounterReject(ctx, bidID)
	if err != nil {
		return nil, s.mapTransitionErr(err, negotiation.ActionCounterReject)
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err == nil {
		s.notifier.Notify(project.ClientID, EventCounterResponse, updated)
	}

	return updated, nil
}

// authorizeClientAction загружает ставку и проект, проверяет владение
// проектом, принадлежность ставки проекту и допустимость перехода.
func (s *BidService) authorizeClientAction(ctx context.Context, client *models.User, projectID, bidID uuid.UUID, action negotiation.Action) (*models.Bid, *models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, nil, apperror.ErrProjectNotFound
		}
		return nil, nil, apperror.Internal("не удалось загрузить проект", err)
	}
	if project.ClientID != client.ID {
		return nil, nil, apperror.ErrForbidden
	}

	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, nil, err
	}
	if bid.ProjectID != projectID {
		return nil, nil, apperror.ErrBidNotFound
	}

	if _, err := negotiation.CanAct(bid.Status, action, negotiation.ActorClient); err != nil {
		return nil, nil, err
	}

	return bid, project, nil
}

// authorizeFreelancerAction загружает ставку, проверяет принадлежность
// проекту, авторство и допустимость перехода.
func (s *BidService) authorizeFreelancerAction(ctx context.Context, freelancer *models.User, projectID, bidID uuid.UUID, action negotiation.Action) (*models.Bid, error) {
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.ProjectID != projectID {
		return nil, apperror.ErrBidNotFound
	}
	if bid.FreelancerID != freelancer.ID {
		return nil, apperror.ErrForbidden
	}

	if _, err := negotiation.CanAct(bid.Status, action, negotiation.ActorFreelancer); err != nil {
		return nil, err
	}

	return bid, nil
}

func (s *BidService) loadBid(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	bid, err := s.bids.GetByID(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, apperror.Internal("не удалось загрузить предложение", err)
	}
	return bid, nil
}

// mapTransitionErr переводит ошибки условных UPDATE в доменные:
// проигранная гонка выглядит для клиента так же, как заведомо
// недопустимый переход.
func (s *BidService) mapTransitionErr(err error, action negotiation.Action) error {
	switch {
	case errors.Is(err, repository.ErrBidNotPending):
		if action == negotiation.ActionCounterAccept || action == negotiation.ActionCounterReject {
			return apperror.ErrNoCounterOffer
		}
		return apperror.ErrBidNotPending
	case errors.Is(err, repository.ErrNoCounterOffer):
		return apperror.ErrNoCounterOffer
	case errors.Is(err, repository.ErrProjectNotOpen):
		return apperror.ErrProjectNotOpen
	default:
		return apperror.Internal("не удалось выполнить операцию", err)
	}
}
