package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract описывает двусторонний договор между клиентом и фрилансером.
type Contract struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ProjectID    uuid.UUID  `db:"project_id" json:"project_id"`
	ClientID     uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Amount       float64    `db:"amount" json:"amount"`
	DeliveryDays int        `db:"delivery_days" json:"delivery_days"`
	Terms        string     `db:"terms" json:"terms"`
	Status       string     `db:"status" json:"status"`
	ActivatedAt  *time.Time `db:"activated_at" json:"activated_at,omitempty"`
	TerminatedAt *time.Time `db:"terminated_at" json:"terminated_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	ClientSignature     Signature `db:"-" json:"client_signature"`
	FreelancerSignature Signature `db:"-" json:"freelancer_signature"`
}

// Signature фиксирует факт подписи одной из сторон.
type Signature struct {
	Signed    bool       `json:"signed"`
	Date      *time.Time `json:"date,omitempty"`
	IPAddress *string    `json:"ip_address,omitempty"`
}

// BothSigned сообщает, подписан ли контракт обеими сторонами.
// Переход в active вычисляется из этого предиката, а не запрашивается явно.
func (c *Contract) BothSigned() bool {
	return c.ClientSignature.Signed && c.FreelancerSignature.Signed
}

// CanTerminate сообщает, допустимо ли расторжение из текущего статуса.
func (c *Contract) CanTerminate() bool {
	switch c.Status {
	case ContractStatusDraft, ContractStatusPending, ContractStatusActive:
		return true
	}
	return false
}

// ContractDocument описывает файл, приложенный к контракту (подписанная копия и т.п.).
type ContractDocument struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ContractID uuid.UUID `db:"contract_id" json:"contract_id"`
	UploaderID uuid.UUID `db:"uploader_id" json:"uploader_id"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
