package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionCacheTTL = time.Minute

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AccountOpener seeds the credit account inside the signup transaction.
type AccountOpener interface {
	OpenAccount(tx *gorm.DB, userID uuid.UUID) error
}

type userStore interface {
	Create(tx *gorm.DB, user *User) error
	Update(user User) error
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
}

type sessionStore interface {
	Create(session *Session) error
	GetByID(id uuid.UUID) (*Session, error)
	Delete(id uuid.UUID) error
	UpdateLastActivityAt(id uuid.UUID, lastActivityAt time.Time) error
}

type Service struct {
	repo     userStore
	sessions sessionStore
	tokens   *TokenManager
	accounts AccountOpener

	inTx func(fn func(tx *gorm.DB) error) error

	sessionCache *cache
}

func NewService(db *gorm.DB, repo *Repo, sessions *SessionRepo, tokens *TokenManager, accounts AccountOpener) *Service {
	return &Service{
		repo:         repo,
		sessions:     sessions,
		tokens:       tokens,
		accounts:     accounts,
		inTx: func(fn func(tx *gorm.DB) error) error {
			return db.Transaction(fn)
		},
		sessionCache: newCache(),
	}
}

func (s *Service) GetByID(id uuid.UUID) (*User, error) {
	return s.repo.GetByID(id)
}

// Signup creates the member and their seeded credit account atomically.
func (s *Service) Signup(_ context.Context, req SignupRequest) (*User, error) {
	// rows store lowercased emails, so every lookup has to use the same form
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	if _, err := s.repo.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.Split(email, "@")[0]
	}

	u := User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Location:     req.Location,
		Skills:       req.Skills,
		Interests:    req.Interests,
	}

	err = s.inTx(func(tx *gorm.DB) error {
		if err := s.repo.Create(tx, &u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		if err := s.accounts.OpenAccount(tx, u.ID); err != nil {
			return fmt.Errorf("open credit account: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Login verifies credentials and opens a session, returning the bearer token.
func (s *Service) Login(_ context.Context, req LoginRequest) (string, *User, error) {
	u, err := s.repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := Session{
		ID:             uuid.New(),
		UserID:         u.ID,
		DeviceName:     req.DeviceName,
		LastActivityAt: now,
	}
	if err := s.sessions.Create(&session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.tokens.Issue(u.ID, session.ID, now)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, u, nil
}

// Authenticate resolves a bearer token to an identity, refreshing session
// activity at most once per cache window.
func (s *Service) Authenticate(accessToken string) (uuid.UUID, uuid.UUID, error) {
	userID, sessionID, err := s.tokens.Parse(accessToken)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if _, ok := s.sessionCache.get(sessionID); ok {
		return userID, sessionID, nil
	}

	session, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("get session: %w", err)
	}

	if err := s.sessions.UpdateLastActivityAt(session.ID, time.Now()); err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("touch session: %w", err)
	}

	s.sessionCache.set(sessionID, session.UserID, sessionCacheTTL)

	return userID, sessionID, nil
}

func (s *Service) Logout(sessionID uuid.UUID) error {
	s.sessionCache.remove(sessionID)
	return s.sessions.Delete(sessionID)
}

func (s *Service) UpdateProfile(id uuid.UUID, req UpdateProfileRequest) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		u.Username = strings.TrimSpace(*req.Username)
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
	if req.Location != nil {
		u.Location = req.Location
	}
	if req.Skills != nil {
		u.Skills = req.Skills
	}
	if req.Interests != nil {
		u.Interests = req.Interests
	}
	if req.IsAnonymousProfile != nil {
		u.IsAnonymousProfile = *req.IsAnonymousProfile
	}
	if req.AcknowledgeRules && u.GuidelinesAcknowledgedAt == nil {
		now := time.Now()
		u.GuidelinesAcknowledgedAt = &now
	}

	if err := s.repo.Update(*u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}
