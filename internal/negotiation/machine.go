// Package negotiation содержит чистую логику переходов жизненного цикла
// предложения: никакого I/O, только статус + действие -> новый статус.
// Побочные эффекты (каскадное отклонение, смена статуса проекта,
// уведомления) вычисляются отдельно и выполняются сервисным слоем.
package negotiation

import (
	"github.com/avoronin/bidmarket-backend/internal/models"
	"github.com/avoronin/bidmarket-backend/internal/pkg/apperror"
)

// Action действие одного из участников переговоров.
type Action string

const (
	ActionSubmit        Action = "submit"
	ActionAccept        Action = "accept"
	ActionReject        Action = "reject"
	ActionWithdraw      Action = "withdraw"
	ActionCounter       Action = "counter"
	ActionCounterAccept Action = "counter_accept"
	ActionCounterReject Action = "counter_reject"
)

// Actor сторона, которой разрешено действие.
type Actor string

const (
	ActorClient     Actor = "client"
	ActorFreelancer Actor = "freelancer"
)

// transitions описывает допустимые переходы: текущий статус -> действие -> новый статус.
// Accepted, Rejected и Withdrawn — терминальные статусы для данного предложения.
var transitions = map[string]map[Action]string{
	models.BidStatusPending: {
		ActionAccept:   models.BidStatusAccepted,
		ActionReject:   models.BidStatusRejected,
		ActionWithdraw: models.BidStatusWithdrawn,
		ActionCounter:  models.BidStatusCountered,
	},
	models.BidStatusCountered: {
		// Оба ответа фрилансера возвращают предложение в очередь клиента;
		// counter_accept переносит условия оффера в ставку, counter_reject
		// отбрасывает оффер и сохраняет исходные условия.
		ActionCounterAccept: models.BidStatusPending,
		ActionCounterReject: models.BidStatusPending,
	},
}

// actors определяет, какая сторона вправе выполнить действие.
var actors = map[Action]Actor{
	ActionAccept:        ActorClient,
	ActionReject:        ActorClient,
	ActionCounter:       ActorClient,
	ActionWithdraw:      ActorFreelancer,
	ActionCounterAccept: ActorFreelancer,
	ActionCounterReject: ActorFreelancer,
}

// Next возвращает статус предложения после действия action.
// Возвращает ErrBidNotPending/ErrNoCounterOffer, если переход недопустим.
func Next(status string, action Action) (string, error) {
	if IsTerminal(status) {
		return "", invalidTransition(status, action)
	}
	byAction, ok := transitions[status]
	if !ok {
		return "", invalidTransition(status, action)
	}
	next, ok := byAction[action]
	if !ok {
		return "", invalidTransition(status, action)
	}
	return next, nil
}

// AllowedActor возвращает сторону, которой разрешено действие.
func AllowedActor(action Action) (Actor, bool) {
	actor, ok := actors[action]
	return actor, ok
}

// CanAct проверяет и переход, и полномочия стороны за один вызов.
func CanAct(status string, action Action, actor Actor) (string, error) {
	if allowed, ok := AllowedActor(action); ok && allowed != actor {
		return "", apperror.ErrForbidden
	}
	return Next(status, action)
}

// IsTerminal сообщает, завершён ли жизненный цикл предложения.
func IsTerminal(status string) bool {
	switch status {
	case models.BidStatusAccepted, models.BidStatusRejected, models.BidStatusWithdrawn:
		return true
	}
	return false
}

func invalidTransition(status string, action Action) error {
	switch action {
	case ActionCounterAccept, ActionCounterReject:
		return apperror.ErrNoCounterOffer
	default:
		return apperror.ErrBidNotPending
	}
}
