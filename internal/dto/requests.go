package dto

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username" binding:"required"`
	Role        string `json:"role" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LoginRequest тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest тело запроса обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest тело запроса обновления профиля.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// CreateProjectRequest тело запроса публикации проекта.
type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
}

// SubmitBidRequest тело запроса подачи предложения.
type SubmitBidRequest struct {
	Amount       float64            `json:"amount" binding:"required"`
	DeliveryDays int                `json:"delivery_days" binding:"required"`
	Proposal     string             `json:"proposal" binding:"required"`
	Milestones   []MilestoneRequest `json:"milestones"`
}

// MilestoneRequest описывает один этап работ в предложении.
type MilestoneRequest struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount" binding:"required"`
	DeliveryDays int     `json:"delivery_days" binding:"required"`
}

// RejectBidRequest тело запроса отклонения предложения.
type RejectBidRequest struct {
	Reason *string `json:"reason"`
}

// CounterOfferRequest тело запроса встречного оффера.
type CounterOfferRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	DeliveryDays int     `json:"delivery_days" binding:"required"`
	Message      string  `json:"message"`
}

// CounterAcceptRequest необязательные поправки при принятии встречного оффера.
type CounterAcceptRequest struct {
	Amount       *float64 `json:"amount"`
	DeliveryDays *int     `json:"delivery_days"`
}

// CreateContractRequest тело запроса создания контракта.
type CreateContractRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	DeliveryDays int     `json:"delivery_days" binding:"required"`
	Terms        string  `json:"terms" binding:"required"`
}

// SendMessageRequest тело запроса отправки сообщения.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
