package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	Email     string          `json:"email"`
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Location  *string         `json:"location"`
	Skills    json.RawMessage `json:"skills"`
	Interests json.RawMessage `json:"interests"`
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type UpdateProfileRequest struct {
	Username           *string         `json:"username"`
	Avatar             *string         `json:"avatar"`
	Location           *string         `json:"location"`
	Skills             json.RawMessage `json:"skills"`
	Interests          json.RawMessage `json:"interests"`
	IsAnonymousProfile *bool           `json:"is_anonymous_profile"`
	AcknowledgeRules   bool            `json:"acknowledge_guidelines"`
}

// Profile is the externally visible shape of a user.
type Profile struct {
	ID                 uuid.UUID       `json:"id"`
	Email              string          `json:"email,omitempty"`
	Username           string          `json:"username"`
	Avatar             string          `json:"avatar"`
	Location           *string         `json:"location,omitempty"`
	Skills             json.RawMessage `json:"skills,omitempty"`
	Interests          json.RawMessage `json:"interests,omitempty"`
	IsAdmin            bool            `json:"is_admin,omitempty"`
	WarningsReceived   int             `json:"warnings_received,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	IsAnonymousProfile bool            `json:"is_anonymous_profile"`
}

// PublicProfile hides contact details and, for anonymous members, anything
// identifying beyond the handle.
func PublicProfile(u *User) Profile {
	p := Profile{
		ID:                 u.ID,
		Username:           u.Username,
		Avatar:             u.Avatar,
		CreatedAt:          u.CreatedAt,
		IsAnonymousProfile: u.IsAnonymousProfile,
	}

	if !u.IsAnonymousProfile {
		p.Location = u.Location
		p.Skills = u.Skills
		p.Interests = u.Interests
	}

	return p
}

// OwnProfile is the full view a member gets of themselves.
func OwnProfile(u *User) Profile {
	p := PublicProfile(u)
	p.Email = u.Email
	p.Location = u.Location
	p.Skills = u.Skills
	p.Interests = u.Interests
	p.IsAdmin = u.IsAdmin
	p.WarningsReceived = u.WarningsReceived

	return p
}
