package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает проект, опубликованный клиентом.
type Project struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	BudgetMin    *float64   `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax    *float64   `db:"budget_max" json:"budget_max,omitempty"`
	Status       string     `db:"status" json:"status"`
	FreelancerID *uuid.UUID `db:"freelancer_id" json:"freelancer_id,omitempty"`
	ContractID   *uuid.UUID `db:"contract_id" json:"contract_id,omitempty"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	DeadlineAt   *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	BidsCount    *int       `db:"bids_count" json:"bids_count,omitempty"`
	// Связанные предложения (загружаются отдельным запросом)
	Bids []Bid `db:"-" json:"bids,omitempty"`
}

// IsOpenForBids сообщает, принимает ли проект новые предложения.
func (p *Project) IsOpenForBids() bool {
	return p.Status == ProjectStatusOpen
}
