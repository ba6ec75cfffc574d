package proposal

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

// CreateRequest mirrors the client payload. Hours stays decimal until
// validation so "2.5" is rejected rather than truncated.
type CreateRequest struct {
	PostID       uuid.UUID       `json:"post_id"`
	Hours        decimal.Decimal `json:"timebank_hour"`
	ProposedDate string          `json:"proposed_date"`
	ProposedTime string          `json:"proposed_time"`
	Location     string          `json:"proposed_location"`
	Notes        string          `json:"notes"`
}

// UpdateRequest is the partial-update body of PATCH /proposals/{id}/. The
// combination of set fields selects exactly one lifecycle action.
type UpdateRequest struct {
	Status             *lifecycle.Status `json:"status"`
	ProviderApproved   *bool             `json:"provider_approved"`
	RequesterApproved  *bool             `json:"requester_approved"`
	DeclineJob         bool              `json:"decline_job"`
	CancellationReason string            `json:"cancellation_reason"`
	ResponseMessage    string            `json:"response_message"`
	Notes              string            `json:"notes"`
}
