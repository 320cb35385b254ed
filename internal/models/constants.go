package models

// ProjectStatus константы статусов проектов
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// BidStatus константы статусов предложений
const (
	BidStatusPending   = "pending"
	BidStatusAccepted  = "accepted"
	BidStatusRejected  = "rejected"
	BidStatusWithdrawn = "withdrawn"
	BidStatusCountered = "countered"
)

// ContractStatus константы статусов контрактов
const (
	ContractStatusDraft      = "draft"
	ContractStatusPending    = "pending"
	ContractStatusActive     = "active"
	ContractStatusCompleted  = "completed"
	ContractStatusTerminated = "terminated"
	ContractStatusDisputed   = "disputed"
)

// AuthorType типы авторов сообщений
const (
	AuthorTypeClient     = "client"
	AuthorTypeFreelancer = "freelancer"
	AuthorTypeSystem     = "system"
)

// ValidProjectStatuses список валидных статусов проектов
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusOpen:       {},
	ProjectStatusInProgress: {},
	ProjectStatusCompleted:  {},
	ProjectStatusCancelled:  {},
}

// ValidBidStatuses список валидных статусов предложений
var ValidBidStatuses = map[string]struct{}{
	BidStatusPending:   {},
	BidStatusAccepted:  {},
	BidStatusRejected:  {},
	BidStatusWithdrawn: {},
	BidStatusCountered: {},
}

// ActiveBidStatuses статусы, при которых фрилансер считается участником торгов
// по проекту и не может подать повторное предложение.
var ActiveBidStatuses = map[string]struct{}{
	BidStatusPending:   {},
	BidStatusCountered: {},
	BidStatusAccepted:  {},
}
