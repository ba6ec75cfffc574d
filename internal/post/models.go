package post

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

// Post is a service listing: an offer of help or a need for it. The type is
// immutable after creation because payer and earner are derived from it for
// every proposal underneath.
type Post struct {
	ID uuid.UUID `gorm:"primary_key" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `json:"title"`
	Description string `json:"description"`

	PostedByID uuid.UUID          `gorm:"index" json:"posted_by_id"`
	PostType   lifecycle.PostType `json:"post_type"`

	Location         string     `json:"location"`
	Duration         string     `json:"duration"`
	Frequency        *string    `json:"frequency,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	Date             *time.Time `json:"date,omitempty"`

	Tags json.RawMessage `json:"tags,omitempty"`
}

// AISummary caches the generated digest of a post description.
type AISummary struct {
	PostID    uuid.UUID `gorm:"primary_key"`
	CreatedAt time.Time
	Summary   string
}

func (AISummary) TableName() string {
	return "post_ai_summary"
}

// AIRequest is one user's summary request, counted against the monthly limit.
type AIRequest struct {
	CreatedAt time.Time
	UserID    uuid.UUID `gorm:"index"`
	PostID    uuid.UUID
}

func (AIRequest) TableName() string {
	return "ai_requests"
}
