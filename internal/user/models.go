package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID uuid.UUID `gorm:"primary_key"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Email        string `gorm:"uniqueIndex"`
	Username     string
	PasswordHash string

	Avatar   string
	Location *string

	// Skills the member offers and services they look for, stored as plain
	// string arrays.
	Skills    json.RawMessage
	Interests json.RawMessage

	IsAdmin            bool
	IsAnonymousProfile bool
	WarningsReceived   int

	GuidelinesAcknowledgedAt *time.Time
}

type Session struct {
	ID     uuid.UUID `gorm:"primary_key"`
	UserID uuid.UUID `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	DeviceName string

	LastActivityAt time.Time
}

func (s *Session) TableName() string {
	return "user_sessions"
}
