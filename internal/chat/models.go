package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to the private thread between the two participants of a
// proposal.
type Message struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time `json:"created_at"`

	ProposalID uuid.UUID `gorm:"index" json:"proposal_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`

	Body   string     `json:"body"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

func (Message) TableName() string {
	return "chat_messages"
}
