package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
)

var (
	ErrNotOwner             = errors.New("post belongs to another user")
	ErrInvalidPost          = errors.New("title, description and location are required")
	ErrInvalidPostType      = errors.New("post type must be offer or need")
	ErrRequestLimitExceeded = errors.New("request limit exceeded")
)

type Service struct {
	repo *Repo

	aiMonthlyRequestLimit int64
	aiProvider            *AIClient
}

func NewService(repo *Repo, aiProvider *AIClient, aiMonthlyRequestLimit int64) *Service {
	return &Service{
		repo:                  repo,
		aiProvider:            aiProvider,
		aiMonthlyRequestLimit: aiMonthlyRequestLimit,
	}
}

func (s *Service) GetByID(id uuid.UUID) (*Post, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(filters []Filter) ([]Post, error) {
	return s.repo.GetByFilters(filters)
}

func (s *Service) Create(ownerID uuid.UUID, p Post) (*Post, error) {
	if strings.TrimSpace(p.Title) == "" ||
		strings.TrimSpace(p.Description) == "" ||
		strings.TrimSpace(p.Location) == "" {
		return nil, ErrInvalidPost
	}

	if p.PostType != lifecycle.PostTypeOffer && p.PostType != lifecycle.PostTypeNeed {
		return nil, ErrInvalidPostType
	}

	p.ID = uuid.New()
	p.PostedByID = ownerID
	if p.ParticipantCount <= 0 {
		p.ParticipantCount = 1
	}

	if err := s.repo.Create(&p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	return &p, nil
}

// Update edits a listing. The post type stays fixed: flipping offer to need
// would silently swap payer and earner under existing proposals.
func (s *Service) Update(ownerID, postID uuid.UUID, changes Post) (*Post, error) {
	p, err := s.repo.GetByID(postID)
	if err != nil {
		return nil, err
	}

	if p.PostedByID != ownerID {
		return nil, ErrNotOwner
	}

	if strings.TrimSpace(changes.Title) != "" {
		p.Title = changes.Title
	}
	if strings.TrimSpace(changes.Description) != "" {
		p.Description = changes.Description
	}
	if strings.TrimSpace(changes.Location) != "" {
		p.Location = changes.Location
	}
	if strings.TrimSpace(changes.Duration) != "" {
		p.Duration = changes.Duration
	}
	if changes.Frequency != nil {
		p.Frequency = changes.Frequency
	}
	if changes.ParticipantCount > 0 {
		p.ParticipantCount = changes.ParticipantCount
	}
	if changes.Date != nil {
		p.Date = changes.Date
	}
	if changes.Tags != nil {
		p.Tags = changes.Tags
	}

	if err := s.repo.Update(*p); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return p, nil
}

func (s *Service) Delete(ownerID, postID uuid.UUID) error {
	p, err := s.repo.GetByID(postID)
	if err != nil {
		return err
	}

	if p.PostedByID != ownerID {
		return ErrNotOwner
	}

	return s.repo.Delete(postID)
}

// GetAISummary returns the cached digest of a post description, generating
// it on first request and counting generation against the caller's monthly
// limit.
func (s *Service) GetAISummary(ctx context.Context, userID, postID uuid.UUID) (string, error) {
	requested, err := s.repo.AISummaryRequested(userID, postID)
	if err != nil {
		return "", fmt.Errorf("get requested summary: %w", err)
	}

	cnt, err := s.repo.GetCurrentAIRequestsCount(userID)
	if err != nil {
		return "", fmt.Errorf("get current AI requests count: %w", err)
	}

	if !requested && cnt >= s.aiMonthlyRequestLimit {
		return "", ErrRequestLimitExceeded
	}

	summary, err := s.getAiSummary(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("get summary: %w", err)
	}

	if requested {
		return summary, nil
	}

	err = s.repo.CreateAIRequest(&AIRequest{
		CreatedAt: time.Now(),
		UserID:    userID,
		PostID:    postID,
	})
	if err != nil {
		log.Err(err).Msg("create AI request row")
	}

	return summary, nil
}

func (s *Service) getAiSummary(ctx context.Context, postID uuid.UUID) (string, error) {
	sum, err := s.repo.GetSummary(postID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("get summary from DB: %w", err)
	}

	if err == nil {
		return sum, nil
	}

	p, err := s.repo.GetByID(postID)
	if err != nil {
		return "", fmt.Errorf("get post: %w", err)
	}

	summary, err := s.aiProvider.GetSummaryByDescription(ctx, p.Description)
	if err != nil {
		return "", fmt.Errorf("get summary from OpenAI: %w", err)
	}

	if err := s.repo.CreateAISummary(&AISummary{
		PostID:    postID,
		CreatedAt: time.Now(),
		Summary:   summary,
	}); err != nil {
		return "", fmt.Errorf("create summary: %w", err)
	}

	return summary, nil
}
