package events

import (
	"time"

	"github.com/google/uuid"
)

// Subjects carrying typed payloads. The legacy client fanned these out as
// untyped DOM events; here every payload has a schema and a single publisher.
const (
	SubjectProposalUpdated = "hive.proposal.updated"
	SubjectMessageCreated  = "hive.message.created"
	SubjectUserUpdated     = "hive.user.updated"
)

type ProposalEvent string

const (
	ProposalCreated              ProposalEvent = "created"
	ProposalAccepted             ProposalEvent = "accepted"
	ProposalDeclined             ProposalEvent = "declined"
	ProposalApproved             ProposalEvent = "approved"
	ProposalCompleted            ProposalEvent = "completed"
	ProposalNegotiationCancelled ProposalEvent = "negotiation_cancelled"
	ProposalJobCancelled         ProposalEvent = "job_cancelled"
)

type ProposalUpdatedPayload struct {
	ProposalID  uuid.UUID     `json:"proposal_id"`
	PostID      uuid.UUID     `json:"post_id"`
	PostType    string        `json:"post_type"`
	Event       ProposalEvent `json:"event"`
	Status      string        `json:"status"`
	JobStatus   string        `json:"job_status"`
	ActorID     uuid.UUID     `json:"actor_id"`
	RequesterID uuid.UUID     `json:"requester_id"`
	ProviderID  uuid.UUID     `json:"provider_id"`
	Hours       int           `json:"hours"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// Counterparty is the involved user who did not trigger the event.
func (p ProposalUpdatedPayload) Counterparty() uuid.UUID {
	if p.ActorID == p.RequesterID {
		return p.ProviderID
	}
	return p.RequesterID
}

type MessageCreatedPayload struct {
	MessageID  uuid.UUID `json:"message_id"`
	ProposalID uuid.UUID `json:"proposal_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Preview    string    `json:"preview"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UserUpdatedPayload struct {
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
