package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avoronin/bidmarket-backend/internal/goroutine"
	"github.com/avoronin/bidmarket-backend/internal/logger"
	"github.com/avoronin/bidmarket-backend/internal/models"
)

// Имена событий, уходящих по WebSocket и оседающих в истории уведомлений.
const (
	EventBidReceived          = "bidReceived"
	EventBidUpdate            = "bidUpdate"
	EventCounterOffer         = "counterOffer"
	EventCounterOfferReceived = "counterOfferReceived"
	EventCounterResponse      = "counterOfferResponseReceived"
	EventBidAccepted          = "yourBidAccepted"
	EventBidAcceptedUpdate    = "bidAcceptedUpdate"
	EventContractCreated      = "contractCreated"
	EventContractSigned       = "contractSigned"
	EventContractActivated    = "contractActivated"
	EventContractTerminated   = "contractTerminated"
)

// Pusher доставляет событие в открытые соединения пользователя.
type Pusher interface {
	Push(userID uuid.UUID, event string, data any) error
}

// NotificationCreator сохраняет уведомление в историю.
type NotificationCreator interface {
	Create(ctx context.Context, userID uuid.UUID, event string, data any) (*models.Notification, error)
}

// Notifier рассылает доменные события: сохраняет уведомление и пушит его
// в WebSocket. Получатель всегда вычисляется вызывающим кодом из записи
// (автор ставки, владелец проекта), рассылок «кому попало» нет.
// Вызов не блокирует бизнес-операцию: вся работа идёт в фоне с жёстким
// таймаутом, ошибка доставки только логируется.
type Notifier struct {
	notifications NotificationCreator
	pusher        Pusher
	timeout       time.Duration
}

// NewNotifier создаёт рассыльщик событий.
func NewNotifier(notifications NotificationCreator, pusher Pusher, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Notifier{
		notifications: notifications,
		pusher:        pusher,
		timeout:       timeout,
	}
}

// Notify отправляет событие пользователю и сразу возвращает управление.
func (n *Notifier) Notify(userID uuid.UUID, event string, data any) {
	goroutine.SafeGoWithTimeout(n.timeout, func(ctx context.Context) {
		if _, err := n.notifications.Create(ctx, userID, event, data); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"user_id": userID,
				"event":   event,
			}).Warn("notifier: не удалось сохранить уведомление")
		}

		if n.pusher == nil {
			return
		}
		if err := n.pusher.Push(userID, event, data); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"user_id": userID,
				"event":   event,
			}).Warn("notifier: не удалось отправить событие в WebSocket")
		}
	})
}

// NotifyMany отправляет одно событие нескольким получателям.
func (n *Notifier) NotifyMany(userIDs []uuid.UUID, event string, data any) {
	for _, id := range userIDs {
		n.Notify(id, event, data)
	}
}
