package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/events"
	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
	"github.com/the-hive-labs/hive-timebank/internal/metrics"
	"github.com/the-hive-labs/hive-timebank/internal/post"
	"github.com/the-hive-labs/hive-timebank/internal/user"
)

var (
	ErrNotParticipant      = errors.New("user is not part of this proposal")
	ErrSelfProposal        = errors.New("cannot propose on own post")
	ErrDuplicateProposal   = errors.New("an active proposal for this post already exists")
	ErrInsufficientBalance = errors.New("not enough available balance to cover the hours")
	ErrActionUnavailable   = errors.New("action is not available in the current state")
)

type store interface {
	InTx(fn func(tx *gorm.DB) error) error
	Create(p *Proposal) error
	Update(tx *gorm.DB, p Proposal) error
	GetByID(id uuid.UUID) (*Proposal, error)
	GetByFilters(filters []Filter) ([]Proposal, error)
	GetByPostAndRequester(postID, requesterID uuid.UUID) ([]Proposal, error)
	SumPendingPayerHours(userID uuid.UUID) (int, error)
}

type PostProvider interface {
	GetByID(id uuid.UUID) (*post.Post, error)
}

type UserProvider interface {
	GetByID(id uuid.UUID) (*user.User, error)
}

type Ledger interface {
	Balance(userID uuid.UUID) (decimal.Decimal, error)
	Hold(tx *gorm.DB, payerID, proposalID uuid.UUID, hours int) error
	Refund(tx *gorm.DB, payerID, proposalID uuid.UUID, hours int) error
	Transfer(tx *gorm.DB, recipientID, proposalID uuid.UUID, hours int) error
	Earn(tx *gorm.DB, earnerID, proposalID uuid.UUID, hours int) error
}

type Service struct {
	proposals store
	posts     PostProvider
	users     UserProvider
	ledger    Ledger
	publisher events.Publisher

	now func() time.Time
}

func NewService(proposals store, posts PostProvider, users UserProvider, ledger Ledger, publisher events.Publisher) *Service {
	return &Service{
		proposals: proposals,
		posts:     posts,
		users:     users,
		ledger:    ledger,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) GetByID(viewerID, id uuid.UUID) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !p.isParticipant(viewerID) {
		return nil, ErrNotParticipant
	}

	p.applyLegacyNotes()

	return p, nil
}

func (s *Service) GetByFilters(filters []Filter) ([]Proposal, error) {
	list, err := s.proposals.GetByFilters(filters)
	if err != nil {
		return nil, err
	}

	for i := range list {
		list[i].applyLegacyNotes()
	}

	return list, nil
}

// Eligibility evaluates every lifecycle action for the viewer at this instant.
func (s *Service) Eligibility(viewerID, id uuid.UUID) (lifecycle.Decision, error) {
	p, err := s.GetByID(viewerID, id)
	if err != nil {
		return lifecycle.Decision{}, err
	}

	return lifecycle.Evaluate(p.Snapshot(), viewerID, s.now()), nil
}

// PendingPayerHours reports hours committed by the user on accepted
// proposals that have not settled yet.
func (s *Service) PendingPayerHours(userID uuid.UUID) (int, error) {
	return s.proposals.SumPendingPayerHours(userID)
}

func (s *Service) Create(ctx context.Context, requesterID uuid.UUID, req CreateRequest) (*Proposal, error) {
	source, err := s.posts.GetByID(req.PostID)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if source.PostedByID == requesterID {
		return nil, ErrSelfProposal
	}

	if err = lifecycle.ValidateCreation(lifecycle.CreationRequest{
		PostType:     source.PostType,
		Hours:        req.Hours,
		ProposedDate: req.ProposedDate,
		ProposedTime: req.ProposedTime,
		Location:     req.Location,
	}, s.now()); err != nil {
		return nil, err
	}

	previous, err := s.proposals.GetByPostAndRequester(req.PostID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("check active proposals: %w", err)
	}
	for _, prev := range previous {
		if lifecycle.IsActive(prev.Status, prev.JobStatus) {
			return nil, ErrDuplicateProposal
		}
	}

	hours := int(req.Hours.IntPart())

	// On an offer the requester will fund the hold, so the commitment has
	// to fit inside the balance not already promised elsewhere.
	if source.PostType == lifecycle.PostTypeOffer {
		available, err := s.availableBalance(requesterID)
		if err != nil {
			return nil, fmt.Errorf("check available balance: %w", err)
		}
		if available < hours {
			return nil, ErrInsufficientBalance
		}
	}

	p := Proposal{
		ID:               uuid.New(),
		PostID:           source.ID,
		PostType:         source.PostType,
		RequesterID:      requesterID,
		ProviderID:       source.PostedByID,
		Hours:            hours,
		ProposedDate:     req.ProposedDate,
		ProposedTime:     req.ProposedTime,
		ProposedLocation: req.Location,
		Status:           lifecycle.StatusWaiting,
		JobStatus:        lifecycle.JobStatusNone,
		Notes:            req.Notes,
	}

	if err = s.proposals.Create(&p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}

	s.notify(ctx, p, requesterID, events.ProposalCreated)

	return &p, nil
}

func (s *Service) availableBalance(userID uuid.UUID) (int, error) {
	balance, err := s.ledger.Balance(userID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	pending, err := s.proposals.SumPendingPayerHours(userID)
	if err != nil {
		return 0, fmt.Errorf("sum pending hours: %w", err)
	}

	return int(balance.IntPart()) - pending, nil
}

// Accept moves a waiting proposal to accepted and locks the payer's hours.
func (s *Service) Accept(ctx context.Context, actorID, id uuid.UUID, responseMessage string) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actorID != p.ProviderID {
		return nil, ErrNotParticipant
	}

	if !lifecycle.CanTransition(p.Status, lifecycle.StatusAccepted) {
		return nil, ErrActionUnavailable
	}

	p.Status = lifecycle.StatusAccepted
	if responseMessage != "" {
		p.ResponseMessage = responseMessage
	}

	err = s.proposals.InTx(func(tx *gorm.DB) error {
		if err := s.ledger.Hold(tx, lifecycle.PayerID(p.Snapshot()), p.ID, p.Hours); err != nil {
			return fmt.Errorf("hold hours: %w", err)
		}

		return s.proposals.Update(tx, *p)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, *p, actorID, events.ProposalAccepted)

	return p, nil
}

func (s *Service) Decline(ctx context.Context, actorID, id uuid.UUID, responseMessage string) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actorID != p.ProviderID {
		return nil, ErrNotParticipant
	}

	if !lifecycle.CanTransition(p.Status, lifecycle.StatusDeclined) {
		return nil, ErrActionUnavailable
	}

	p.Status = lifecycle.StatusDeclined
	if responseMessage != "" {
		p.ResponseMessage = responseMessage
	}

	err = s.proposals.InTx(func(tx *gorm.DB) error {
		return s.proposals.Update(tx, *p)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, *p, actorID, events.ProposalDeclined)

	return p, nil
}

// Approve records the actor's sign-off. When both sides have signed off the
// proposal completes and the earner is credited.
func (s *Service) Approve(ctx context.Context, actorID, id uuid.UUID) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !p.isParticipant(actorID) {
		return nil, ErrNotParticipant
	}

	snapshot := p.Snapshot()
	now := s.now()

	switch actorID {
	case p.ProviderID:
		if !lifecycle.CanProviderApprove(actorID, snapshot, now) {
			return nil, ErrActionUnavailable
		}
		p.ProviderApproved = true
	case p.RequesterID:
		if !lifecycle.CanRequesterApprove(actorID, snapshot, now) {
			return nil, ErrActionUnavailable
		}
		p.RequesterApproved = true
	}

	completed := p.ProviderApproved && p.RequesterApproved
	if completed {
		p.Status = lifecycle.StatusCompleted
	}

	err = s.proposals.InTx(func(tx *gorm.DB) error {
		if completed {
			if err := s.ledger.Earn(tx, lifecycle.EarnerID(snapshot), p.ID, p.Hours); err != nil {
				return fmt.Errorf("credit earner: %w", err)
			}
		}

		return s.proposals.Update(tx, *p)
	})
	if err != nil {
		return nil, err
	}

	event := events.ProposalApproved
	if completed {
		event = events.ProposalCompleted
	}
	s.notify(ctx, *p, actorID, event)

	return p, nil
}

// CancelNegotiation tears down an accepted proposal more than the cancel
// window ahead of the event and refunds the payer's hold.
func (s *Service) CancelNegotiation(ctx context.Context, actorID, id uuid.UUID) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !p.isParticipant(actorID) {
		return nil, ErrNotParticipant
	}

	snapshot := p.Snapshot()
	if !lifecycle.CanCancelNegotiation(snapshot, s.now()) {
		return nil, ErrActionUnavailable
	}

	p.Status = lifecycle.StatusCancelled

	err = s.proposals.InTx(func(tx *gorm.DB) error {
		if err := s.ledger.Refund(tx, lifecycle.PayerID(snapshot), p.ID, p.Hours); err != nil {
			return fmt.Errorf("refund payer: %w", err)
		}

		return s.proposals.Update(tx, *p)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, *p, actorID, events.ProposalNegotiationCancelled)

	return p, nil
}

// CancelJob marks an accepted job as cancelled and settles the hold. A
// no-show pays the counterparty; any other reason refunds the payer.
func (s *Service) CancelJob(ctx context.Context, actorID, id uuid.UUID, reason lifecycle.CancellationReason) (*Proposal, error) {
	p, err := s.proposals.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !p.isParticipant(actorID) {
		return nil, ErrNotParticipant
	}

	if p.Status != lifecycle.StatusAccepted || p.JobStatus == lifecycle.JobStatusCancelled {
		return nil, ErrActionUnavailable
	}

	if reason != lifecycle.ReasonNotShowedUp {
		reason = lifecycle.ReasonOther
	}

	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, fmt.Errorf("get actor: %w", err)
	}

	snapshot := p.Snapshot()
	cancelledBy := actorID

	p.JobStatus = lifecycle.JobStatusCancelled
	p.JobCancellationReason = reason
	p.JobCancelledByID = &cancelledBy
	p.JobCancelledByName = actor.Username

	err = s.proposals.InTx(func(tx *gorm.DB) error {
		if reason == lifecycle.ReasonNotShowedUp {
			recipient := lifecycle.TransferRecipient(snapshot, actorID)
			if err := s.ledger.Transfer(tx, recipient, p.ID, p.Hours); err != nil {
				return fmt.Errorf("transfer hold: %w", err)
			}
		} else {
			if err := s.ledger.Refund(tx, lifecycle.PayerID(snapshot), p.ID, p.Hours); err != nil {
				return fmt.Errorf("refund payer: %w", err)
			}
		}

		return s.proposals.Update(tx, *p)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, *p, actorID, events.ProposalJobCancelled)

	return p, nil
}

func (s *Service) notify(ctx context.Context, p Proposal, actorID uuid.UUID, event events.ProposalEvent) {
	metrics.CollectProposalTransition(string(event), string(p.PostType))

	err := s.publisher.ProposalUpdated(ctx, events.ProposalUpdatedPayload{
		ProposalID:  p.ID,
		PostID:      p.PostID,
		PostType:    string(p.PostType),
		Event:       event,
		Status:      string(p.Status),
		JobStatus:   string(p.JobStatus),
		ActorID:     actorID,
		RequesterID: p.RequesterID,
		ProviderID:  p.ProviderID,
		Hours:       p.Hours,
		OccurredAt:  s.now(),
	})
	if err != nil {
		log.Error().Err(err).Str("proposal_id", p.ID.String()).Msg("publish proposal event")
	}
}
