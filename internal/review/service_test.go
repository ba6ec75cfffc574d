package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
	"github.com/the-hive-labs/hive-timebank/internal/proposal"
)

var (
	testRequester = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testProvider  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type fakeStore struct {
	exists  bool
	average *float64
	created *Review
}

func (f *fakeStore) Create(rev *Review) error {
	f.created = rev
	return nil
}

func (f *fakeStore) GetByFilters(_ []Filter) ([]Review, error) {
	return nil, nil
}

func (f *fakeStore) Exists(_, _ uuid.UUID) (bool, error) {
	return f.exists, nil
}

func (f *fakeStore) AverageRating(_ uuid.UUID) (*float64, error) {
	return f.average, nil
}

type fakeProposals struct {
	proposal *proposal.Proposal
}

func (f *fakeProposals) GetByID(viewerID, _ uuid.UUID) (*proposal.Proposal, error) {
	if f.proposal == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if viewerID != f.proposal.RequesterID && viewerID != f.proposal.ProviderID {
		return nil, proposal.ErrNotParticipant
	}
	return f.proposal, nil
}

func reviewableProposal() *proposal.Proposal {
	return &proposal.Proposal{
		ID:                uuid.New(),
		PostType:          lifecycle.PostTypeOffer,
		RequesterID:       testRequester,
		ProviderID:        testProvider,
		Hours:             4,
		Status:            lifecycle.StatusCompleted,
		ProviderApproved:  true,
		RequesterApproved: true,
		JobStatus:         lifecycle.JobStatusNone,
	}
}

func newService(store *fakeStore, proposals *fakeProposals) *Service {
	return NewService(store, proposals)
}

func TestService_Create(t *testing.T) {
	t.Run("reviewer rates the counterparty", func(t *testing.T) {
		store := &fakeStore{}
		p := reviewableProposal()
		s := newService(store, &fakeProposals{proposal: p})

		rev, err := s.Create(testRequester, CreateRequest{
			ProposalID: p.ID,
			Rating:     5,
			Comment:    "great help",
		})
		require.NoError(t, err)

		require.Equal(t, testRequester, rev.ReviewerID)
		require.Equal(t, testProvider, rev.RevieweeID)
		require.NotNil(t, store.created)
	})

	t.Run("rejects out-of-range ratings", func(t *testing.T) {
		s := newService(&fakeStore{}, &fakeProposals{proposal: reviewableProposal()})

		for _, rating := range []int{0, -1, 6} {
			_, err := s.Create(testRequester, CreateRequest{Rating: rating})
			require.ErrorIs(t, err, ErrInvalidRating)
		}
	})

	t.Run("rejects a proposal not open for review", func(t *testing.T) {
		p := reviewableProposal()
		p.Status = lifecycle.StatusAccepted
		p.ProviderApproved = false
		p.RequesterApproved = false
		s := newService(&fakeStore{}, &fakeProposals{proposal: p})

		_, err := s.Create(testRequester, CreateRequest{ProposalID: p.ID, Rating: 4})
		require.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("rejects a duplicate review", func(t *testing.T) {
		p := reviewableProposal()
		s := newService(&fakeStore{exists: true}, &fakeProposals{proposal: p})

		_, err := s.Create(testRequester, CreateRequest{ProposalID: p.ID, Rating: 4})
		require.ErrorIs(t, err, ErrAlreadyReviewed)
	})

	t.Run("outsiders cannot review", func(t *testing.T) {
		p := reviewableProposal()
		s := newService(&fakeStore{}, &fakeProposals{proposal: p})

		_, err := s.Create(uuid.New(), CreateRequest{ProposalID: p.ID, Rating: 4})
		require.ErrorIs(t, err, proposal.ErrNotParticipant)
	})
}

func TestService_CheckProposal(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate   func(p *proposal.Proposal)
		reviewed bool
		expected Check
	}{
		"open for review": {
			mutate:   func(_ *proposal.Proposal) {},
			expected: Check{CanReview: true},
		},
		"already reviewed": {
			mutate:   func(_ *proposal.Proposal) {},
			reviewed: true,
			expected: Check{CanReview: false, AlreadyReviewed: true},
		},
		"not finished yet": {
			mutate: func(p *proposal.Proposal) {
				p.Status = lifecycle.StatusAccepted
				p.ProviderApproved = false
				p.RequesterApproved = false
			},
			expected: Check{},
		},
		"cancelled by the viewer": {
			mutate: func(p *proposal.Proposal) {
				p.Status = lifecycle.StatusAccepted
				p.ProviderApproved = false
				p.RequesterApproved = false
				p.JobStatus = lifecycle.JobStatusCancelled
				cancelledBy := testRequester
				p.JobCancelledByID = &cancelledBy
			},
			expected: Check{CanReview: true},
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := reviewableProposal()
			tc.mutate(p)

			s := newService(&fakeStore{exists: tc.reviewed}, &fakeProposals{proposal: p})

			check, err := s.CheckProposal(testRequester, p.ID)
			require.NoError(t, err)
			require.Equal(t, tc.expected, check)
		})
	}
}
