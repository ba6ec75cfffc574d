package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is feedback left by one participant of a finished proposal about
// the other. A reviewer gets one review per proposal.
type Review struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	ProposalID uuid.UUID `gorm:"index;uniqueIndex:idx_reviews_reviewer_proposal,priority:2" json:"proposal_id"`
	ReviewerID uuid.UUID `gorm:"uniqueIndex:idx_reviews_reviewer_proposal,priority:1" json:"reviewer_id"`
	RevieweeID uuid.UUID `gorm:"index" json:"reviewee_id"`

	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (Review) TableName() string {
	return "reviews"
}
