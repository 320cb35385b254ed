package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid представляет предложение фрилансера по проекту.
type Bid struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	ProjectID       uuid.UUID     `db:"project_id" json:"project_id"`
	FreelancerID    uuid.UUID     `db:"freelancer_id" json:"freelancer_id"`
	Amount          float64       `db:"amount" json:"amount"`
	DeliveryDays    int           `db:"delivery_days" json:"delivery_days"`
	Proposal        string        `db:"proposal" json:"proposal"`
	Status          string        `db:"status" json:"status"`
	RejectionReason *string       `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
	CounterOffer    *CounterOffer  `db:"-" json:"counter_offer,omitempty"`
	Milestones      []BidMilestone `db:"-" json:"milestones,omitempty"`
}

// CounterOffer хранит встречное предложение клиента по ставке.
// Присутствует только пока статус предложения countered.
type CounterOffer struct {
	Amount       float64   `json:"amount"`
	DeliveryDays int       `json:"delivery_days"`
	Message      string    `json:"message"`
	Date         time.Time `json:"date"`
}

// BidMilestone описывает этап работ, зафиксированный при подаче предложения.
type BidMilestone struct {
	ID           uuid.UUID `db:"id" json:"id"`
	BidID        uuid.UUID `db:"bid_id" json:"bid_id"`
	Position     int       `db:"position" json:"position"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	Amount       float64   `db:"amount" json:"amount"`
	DeliveryDays int       `db:"delivery_days" json:"delivery_days"`
}

// IsActive сообщает, блокирует ли предложение повторную подачу этим фрилансером.
func (b *Bid) IsActive() bool {
	_, ok := ActiveBidStatuses[b.Status]
	return ok
}
