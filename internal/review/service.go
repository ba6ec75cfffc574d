package review

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
	"github.com/the-hive-labs/hive-timebank/internal/proposal"
)

var (
	ErrNotEligible     = errors.New("proposal is not open for review by this user")
	ErrAlreadyReviewed = errors.New("user already reviewed this proposal")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

type store interface {
	Create(rev *Review) error
	GetByFilters(filters []Filter) ([]Review, error)
	Exists(proposalID, reviewerID uuid.UUID) (bool, error)
	AverageRating(revieweeID uuid.UUID) (*float64, error)
}

// ProposalProvider resolves a proposal the viewer participates in.
type ProposalProvider interface {
	GetByID(viewerID, id uuid.UUID) (*proposal.Proposal, error)
}

type CreateRequest struct {
	ProposalID uuid.UUID `json:"proposal_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}

// Check is what the client asks before showing the review form.
type Check struct {
	CanReview       bool `json:"can_review"`
	AlreadyReviewed bool `json:"already_reviewed"`
}

type Service struct {
	reviews   store
	proposals ProposalProvider
}

func NewService(reviews store, proposals ProposalProvider) *Service {
	return &Service{
		reviews:   reviews,
		proposals: proposals,
	}
}

func (s *Service) Create(reviewerID uuid.UUID, req CreateRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	p, err := s.proposals.GetByID(reviewerID, req.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	snapshot := p.Snapshot()
	if !lifecycle.CanReview(reviewerID, snapshot) {
		return nil, ErrNotEligible
	}

	exists, err := s.reviews.Exists(req.ProposalID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	revieweeID := p.RequesterID
	if reviewerID == p.RequesterID {
		revieweeID = p.ProviderID
	}

	rev := Review{
		ID:         uuid.New(),
		ProposalID: req.ProposalID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	if err = s.reviews.Create(&rev); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	return &rev, nil
}

func (s *Service) GetByFilters(filters []Filter) ([]Review, error) {
	return s.reviews.GetByFilters(filters)
}

func (s *Service) AverageRating(revieweeID uuid.UUID) (*float64, error) {
	return s.reviews.AverageRating(revieweeID)
}

// CheckProposal reports whether the viewer may still leave a review.
func (s *Service) CheckProposal(viewerID, proposalID uuid.UUID) (Check, error) {
	p, err := s.proposals.GetByID(viewerID, proposalID)
	if err != nil {
		return Check{}, fmt.Errorf("get proposal: %w", err)
	}

	reviewed, err := s.reviews.Exists(proposalID, viewerID)
	if err != nil {
		return Check{}, fmt.Errorf("check existing review: %w", err)
	}

	return Check{
		CanReview:       lifecycle.CanReview(viewerID, p.Snapshot()) && !reviewed,
		AlreadyReviewed: reviewed,
	}, nil
}
