package proposal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

// Proposal is one negotiation between a requester and the owner of a post.
// Post type is denormalized so settlement direction survives post edits.
type Proposal struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PostID   uuid.UUID          `gorm:"index" json:"post_id"`
	PostType lifecycle.PostType `json:"post_type"`

	RequesterID uuid.UUID `gorm:"index" json:"requester_id"`
	ProviderID  uuid.UUID `gorm:"index" json:"provider_id"`

	Hours int `gorm:"column:timebank_hour" json:"timebank_hour"`

	ProposedDate     string `json:"proposed_date"`
	ProposedTime     string `json:"proposed_time"`
	ProposedLocation string `json:"proposed_location"`

	Status            lifecycle.Status `json:"status"`
	ProviderApproved  bool             `json:"provider_approved"`
	RequesterApproved bool             `json:"requester_approved"`

	JobStatus             lifecycle.JobStatus          `json:"job_status"`
	JobCancellationReason lifecycle.CancellationReason `json:"job_cancellation_reason,omitempty"`
	JobCancelledByID      *uuid.UUID                   `json:"job_cancelled_by_id,omitempty"`
	JobCancelledByName    string                       `json:"job_cancelled_by_username,omitempty"`

	ResponseMessage string `json:"response_message,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Snapshot converts the stored row into the engine's read-only view.
func (p Proposal) Snapshot() lifecycle.Proposal {
	return lifecycle.Proposal{
		ID:                    p.ID,
		PostID:                p.PostID,
		PostType:              p.PostType,
		RequesterID:           p.RequesterID,
		ProviderID:            p.ProviderID,
		Hours:                 p.Hours,
		ProposedDate:          p.ProposedDate,
		ProposedTime:          p.ProposedTime,
		ProposedLocation:      p.ProposedLocation,
		Status:                p.Status,
		ProviderApproved:      p.ProviderApproved,
		RequesterApproved:     p.RequesterApproved,
		JobStatus:             p.JobStatus,
		JobCancellationReason: p.JobCancellationReason,
		JobCancelledByID:      p.JobCancelledByID,
		Notes:                 p.Notes,
	}
}

func (p Proposal) isParticipant(userID uuid.UUID) bool {
	return userID == p.RequesterID || userID == p.ProviderID
}

// applyLegacyNotes backfills fields that rows migrated from the old client
// kept inside the notes blob. First-class columns always win; nothing is
// written back.
func (p *Proposal) applyLegacyNotes() {
	if p.Notes == "" {
		return
	}

	fields := lifecycle.ParseNotes(p.Notes)

	if p.ProposedLocation == "" {
		p.ProposedLocation = fields.Location
	}
	if p.ProposedTime == "" {
		p.ProposedTime = fields.Time
	}
	if p.ResponseMessage == "" && len(fields.Responses) > 0 {
		p.ResponseMessage = fields.Responses[len(fields.Responses)-1].Message
	}
}
