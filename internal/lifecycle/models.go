package lifecycle

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PostType string

const (
	PostTypeOffer PostType = "offer"
	PostTypeNeed  PostType = "need"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

type JobStatus string

const (
	JobStatusNone      JobStatus = "none"
	JobStatusCancelled JobStatus = "cancelled"
)

type CancellationReason string

const (
	ReasonNotShowedUp CancellationReason = "not_showed_up"
	ReasonOther       CancellationReason = "other"
)

type Role string

const (
	RoleRequester Role = "requester"
	RoleProvider  Role = "provider"
)

type Phase string

const (
	PhaseNegotiating      Phase = "negotiating"
	PhaseScheduled        Phase = "scheduled"
	PhaseAwaitingApproval Phase = "awaiting_approval"
	PhaseCompleted        Phase = "completed"
	PhaseDeclined         Phase = "declined"
	PhaseCancelled        Phase = "cancelled"
	PhaseJobCancelled     Phase = "job_cancelled"
)

// Proposal is the read-only snapshot the engine evaluates. Callers build it
// from their stored records; the engine never mutates or persists anything.
type Proposal struct {
	ID          uuid.UUID
	PostID      uuid.UUID
	PostType    PostType
	RequesterID uuid.UUID
	ProviderID  uuid.UUID

	Hours int

	ProposedDate     string // 2006-01-02
	ProposedTime     string // 15:04, empty means end of day
	ProposedLocation string

	Status            Status
	ProviderApproved  bool
	RequesterApproved bool

	JobStatus             JobStatus
	JobCancellationReason CancellationReason
	JobCancelledByID      *uuid.UUID

	Notes string
}

// Decision is the full evaluation result for one viewer at one instant.
// Re-deriving it from the same inputs always yields an identical value.
type Decision struct {
	Phase                Phase `json:"phase"`
	CanProviderApprove   bool  `json:"can_provider_approve"`
	CanRequesterApprove  bool  `json:"can_requester_approve"`
	CanCancelNegotiation bool  `json:"can_cancel_negotiation"`
	CanReview            bool  `json:"can_review"`
	PayerRole            Role  `json:"payer_role"`
	EarnerRole           Role  `json:"earner_role"`
}

// CreationRequest carries the fields validated before a proposal is stored.
// Hours arrives as a decimal so that fractional submissions can be rejected
// instead of silently truncated.
type CreationRequest struct {
	PostType     PostType
	Hours        decimal.Decimal
	ProposedDate string
	ProposedTime string
	Location     string
}
