package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/the-hive-labs/hive-timebank/internal/events"
	"github.com/the-hive-labs/hive-timebank/internal/lifecycle"
	"github.com/the-hive-labs/hive-timebank/internal/post"
	"github.com/the-hive-labs/hive-timebank/internal/user"
)

var (
	testRequester = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testProvider  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	testStranger  = uuid.MustParse("33333333-3333-3333-3333-333333333333")
	testPostID    = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

type fakeStore struct {
	byID     map[uuid.UUID]*Proposal
	previous []Proposal
	pending  int

	created *Proposal
	updated *Proposal
}

func (f *fakeStore) InTx(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (f *fakeStore) Create(p *Proposal) error {
	f.created = p
	return nil
}

func (f *fakeStore) Update(_ *gorm.DB, p Proposal) error {
	f.updated = &p
	return nil
}

func (f *fakeStore) GetByID(id uuid.UUID) (*Proposal, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetByFilters(_ []Filter) ([]Proposal, error) {
	var list []Proposal
	for _, p := range f.byID {
		list = append(list, *p)
	}
	return list, nil
}

func (f *fakeStore) GetByPostAndRequester(_, _ uuid.UUID) ([]Proposal, error) {
	return f.previous, nil
}

func (f *fakeStore) SumPendingPayerHours(_ uuid.UUID) (int, error) {
	return f.pending, nil
}

type movement struct {
	userID uuid.UUID
	hours  int
}

type fakeLedger struct {
	balance    decimal.Decimal
	balanceErr error

	holds     []movement
	refunds   []movement
	transfers []movement
	earns     []movement
}

func (f *fakeLedger) Balance(_ uuid.UUID) (decimal.Decimal, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) Hold(_ *gorm.DB, payerID, _ uuid.UUID, hours int) error {
	f.holds = append(f.holds, movement{payerID, hours})
	return nil
}

func (f *fakeLedger) Refund(_ *gorm.DB, payerID, _ uuid.UUID, hours int) error {
	f.refunds = append(f.refunds, movement{payerID, hours})
	return nil
}

func (f *fakeLedger) Transfer(_ *gorm.DB, recipientID, _ uuid.UUID, hours int) error {
	f.transfers = append(f.transfers, movement{recipientID, hours})
	return nil
}

func (f *fakeLedger) Earn(_ *gorm.DB, earnerID, _ uuid.UUID, hours int) error {
	f.earns = append(f.earns, movement{earnerID, hours})
	return nil
}

type fakePosts struct {
	post *post.Post
}

func (f *fakePosts) GetByID(_ uuid.UUID) (*post.Post, error) {
	if f.post == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.post, nil
}

type fakeUsers struct{}

func (fakeUsers) GetByID(id uuid.UUID) (*user.User, error) {
	return &user.User{ID: id, Username: "member-" + id.String()[:4]}, nil
}

type fixture struct {
	service   *Service
	store     *fakeStore
	ledger    *fakeLedger
	posts     *fakePosts
	publisher *events.Recorder
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	f := &fixture{
		store:     &fakeStore{byID: map[uuid.UUID]*Proposal{}},
		ledger:    &fakeLedger{balance: decimal.NewFromInt(10)},
		posts:     &fakePosts{},
		publisher: events.NewRecorder(),
	}

	f.service = NewService(f.store, f.posts, fakeUsers{}, f.ledger, f.publisher)
	f.service.now = func() time.Time { return now }

	return f
}

func offerPost() *post.Post {
	return &post.Post{
		ID:         testPostID,
		PostedByID: testProvider,
		PostType:   lifecycle.PostTypeOffer,
	}
}

func needPost() *post.Post {
	p := offerPost()
	p.PostType = lifecycle.PostTypeNeed
	return p
}

func storedProposal(pt lifecycle.PostType, status lifecycle.Status) *Proposal {
	return &Proposal{
		ID:               uuid.New(),
		PostID:           testPostID,
		PostType:         pt,
		RequesterID:      testRequester,
		ProviderID:       testProvider,
		Hours:            4,
		ProposedDate:     "2025-06-01",
		ProposedTime:     "14:00",
		ProposedLocation: "community garden",
		Status:           status,
		JobStatus:        lifecycle.JobStatusNone,
	}
}

func at(t *testing.T, value string) time.Time {
	t.Helper()

	ts, err := time.Parse("2006-01-02T15:04:05", value)
	require.NoError(t, err)

	return ts.UTC()
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		PostID:       testPostID,
		Hours:        decimal.NewFromInt(4),
		ProposedDate: "2025-06-01",
		ProposedTime: "14:00",
		Location:     "community garden",
	}
}

func TestService_Create(t *testing.T) {
	now := at(t, "2025-05-30T10:00:00")

	t.Run("creates a waiting proposal on an offer", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()

		p, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.NoError(t, err)

		require.Equal(t, lifecycle.StatusWaiting, p.Status)
		require.Equal(t, lifecycle.JobStatusNone, p.JobStatus)
		require.Equal(t, testProvider, p.ProviderID)
		require.Equal(t, 4, p.Hours)
		require.NotNil(t, f.store.created)

		event, ok := f.publisher.LastProposalEvent()
		require.True(t, ok)
		require.Equal(t, events.ProposalCreated, event.Event)
		require.Equal(t, testRequester, event.ActorID)
	})

	t.Run("rejects proposing on own post", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()

		_, err := f.service.Create(context.Background(), testProvider, validCreateRequest())
		require.ErrorIs(t, err, ErrSelfProposal)
	})

	t.Run("rejects a second active proposal on the same post", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()
		f.store.previous = []Proposal{*storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusWaiting)}

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.ErrorIs(t, err, ErrDuplicateProposal)
	})

	t.Run("a declined proposal still blocks re-proposing", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()
		f.store.previous = []Proposal{*storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusDeclined)}

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.ErrorIs(t, err, ErrDuplicateProposal)
	})

	t.Run("resolved proposals do not block a new one", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()

		cancelledJob := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		cancelledJob.JobStatus = lifecycle.JobStatusCancelled

		f.store.previous = []Proposal{
			*storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusCompleted),
			*storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusCancelled),
			*cancelledJob,
		}

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.NoError(t, err)
	})

	t.Run("rejects fractional hours", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()

		req := validCreateRequest()
		req.Hours = decimal.RequireFromString("2.5")

		_, err := f.service.Create(context.Background(), testRequester, req)
		require.ErrorIs(t, err, lifecycle.ErrHoursFractional)
	})

	t.Run("rejects an event inside the lead window", func(t *testing.T) {
		f := newFixture(t, at(t, "2025-06-01T10:00:00"))
		f.posts.post = offerPost()

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.ErrorIs(t, err, lifecycle.ErrInsufficientLead)
	})

	t.Run("offer requires covering available balance", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()
		f.ledger.balance = decimal.NewFromInt(5)
		f.store.pending = 3

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("fails when the balance cannot be read", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = offerPost()
		f.ledger.balanceErr = gorm.ErrInvalidDB

		_, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.Error(t, err)
		require.Nil(t, f.store.created)
	})

	t.Run("need skips the requester balance check", func(t *testing.T) {
		f := newFixture(t, now)
		f.posts.post = needPost()
		f.ledger.balance = decimal.Zero

		p, err := f.service.Create(context.Background(), testRequester, validCreateRequest())
		require.NoError(t, err)
		require.Equal(t, lifecycle.PostTypeNeed, p.PostType)
	})
}

func TestService_Accept(t *testing.T) {
	now := at(t, "2025-05-30T10:00:00")

	t.Run("provider accepts and the payer hold is placed", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusWaiting)
		f.store.byID[p.ID] = p

		updated, err := f.service.Accept(context.Background(), testProvider, p.ID, "see you there")
		require.NoError(t, err)

		require.Equal(t, lifecycle.StatusAccepted, updated.Status)
		require.Equal(t, "see you there", updated.ResponseMessage)
		require.Equal(t, []movement{{testRequester, 4}}, f.ledger.holds)

		event, ok := f.publisher.LastProposalEvent()
		require.True(t, ok)
		require.Equal(t, events.ProposalAccepted, event.Event)
	})

	t.Run("need hold debits the provider", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeNeed, lifecycle.StatusWaiting)
		f.store.byID[p.ID] = p

		_, err := f.service.Accept(context.Background(), testProvider, p.ID, "")
		require.NoError(t, err)
		require.Equal(t, []movement{{testProvider, 4}}, f.ledger.holds)
	})

	t.Run("requester cannot accept", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusWaiting)
		f.store.byID[p.ID] = p

		_, err := f.service.Accept(context.Background(), testRequester, p.ID, "")
		require.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("only waiting proposals can be accepted", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusDeclined)
		f.store.byID[p.ID] = p

		_, err := f.service.Accept(context.Background(), testProvider, p.ID, "")
		require.ErrorIs(t, err, ErrActionUnavailable)
	})
}

func TestService_Decline(t *testing.T) {
	now := at(t, "2025-05-30T10:00:00")

	f := newFixture(t, now)
	p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusWaiting)
	f.store.byID[p.ID] = p

	updated, err := f.service.Decline(context.Background(), testProvider, p.ID, "schedule conflict")
	require.NoError(t, err)

	require.Equal(t, lifecycle.StatusDeclined, updated.Status)
	require.Empty(t, f.ledger.holds)

	event, ok := f.publisher.LastProposalEvent()
	require.True(t, ok)
	require.Equal(t, events.ProposalDeclined, event.Event)
}

func TestService_Approve(t *testing.T) {
	afterEvent := at(t, "2025-06-01T15:00:00")

	t.Run("offer completes after provider then requester", func(t *testing.T) {
		f := newFixture(t, afterEvent)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		first, err := f.service.Approve(context.Background(), testProvider, p.ID)
		require.NoError(t, err)
		require.True(t, first.ProviderApproved)
		require.Equal(t, lifecycle.StatusAccepted, first.Status)
		require.Empty(t, f.ledger.earns)

		f.store.byID[p.ID] = first

		second, err := f.service.Approve(context.Background(), testRequester, p.ID)
		require.NoError(t, err)
		require.Equal(t, lifecycle.StatusCompleted, second.Status)
		require.Equal(t, []movement{{testProvider, 4}}, f.ledger.earns)

		event, ok := f.publisher.LastProposalEvent()
		require.True(t, ok)
		require.Equal(t, events.ProposalCompleted, event.Event)
	})

	t.Run("need completion credits the requester", func(t *testing.T) {
		f := newFixture(t, afterEvent)
		p := storedProposal(lifecycle.PostTypeNeed, lifecycle.StatusAccepted)
		p.RequesterApproved = true
		f.store.byID[p.ID] = p

		updated, err := f.service.Approve(context.Background(), testProvider, p.ID)
		require.NoError(t, err)
		require.Equal(t, lifecycle.StatusCompleted, updated.Status)
		require.Equal(t, []movement{{testRequester, 4}}, f.ledger.earns)
	})

	t.Run("requester cannot approve an offer before the provider", func(t *testing.T) {
		f := newFixture(t, afterEvent)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		_, err := f.service.Approve(context.Background(), testRequester, p.ID)
		require.ErrorIs(t, err, ErrActionUnavailable)
	})

	t.Run("approvals stay closed before the event", func(t *testing.T) {
		f := newFixture(t, at(t, "2025-06-01T13:59:59"))
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		_, err := f.service.Approve(context.Background(), testProvider, p.ID)
		require.ErrorIs(t, err, ErrActionUnavailable)
	})

	t.Run("strangers are rejected", func(t *testing.T) {
		f := newFixture(t, afterEvent)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		_, err := f.service.Approve(context.Background(), testStranger, p.ID)
		require.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestService_CancelNegotiation(t *testing.T) {
	t.Run("refunds the payer outside the window", func(t *testing.T) {
		f := newFixture(t, at(t, "2025-05-30T10:00:00"))
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		updated, err := f.service.CancelNegotiation(context.Background(), testRequester, p.ID)
		require.NoError(t, err)

		require.Equal(t, lifecycle.StatusCancelled, updated.Status)
		require.Equal(t, []movement{{testRequester, 4}}, f.ledger.refunds)

		event, ok := f.publisher.LastProposalEvent()
		require.True(t, ok)
		require.Equal(t, events.ProposalNegotiationCancelled, event.Event)
	})

	t.Run("closes at exactly the window boundary", func(t *testing.T) {
		f := newFixture(t, at(t, "2025-06-01T02:00:00"))
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		_, err := f.service.CancelNegotiation(context.Background(), testRequester, p.ID)
		require.ErrorIs(t, err, ErrActionUnavailable)
		require.Empty(t, f.ledger.refunds)
	})
}

func TestService_CancelJob(t *testing.T) {
	now := at(t, "2025-06-01T15:00:00")

	t.Run("no-show transfers the hold to the counterparty", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		updated, err := f.service.CancelJob(context.Background(), testRequester, p.ID, lifecycle.ReasonNotShowedUp)
		require.NoError(t, err)

		require.Equal(t, lifecycle.JobStatusCancelled, updated.JobStatus)
		require.Equal(t, lifecycle.ReasonNotShowedUp, updated.JobCancellationReason)
		require.NotNil(t, updated.JobCancelledByID)
		require.Equal(t, testRequester, *updated.JobCancelledByID)
		require.Equal(t, []movement{{testProvider, 4}}, f.ledger.transfers)
		require.Empty(t, f.ledger.refunds)
	})

	t.Run("any other reason refunds the payer", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		f.store.byID[p.ID] = p

		updated, err := f.service.CancelJob(context.Background(), testProvider, p.ID, "weather")
		require.NoError(t, err)

		require.Equal(t, lifecycle.ReasonOther, updated.JobCancellationReason)
		require.Equal(t, []movement{{testRequester, 4}}, f.ledger.refunds)
		require.Empty(t, f.ledger.transfers)
	})

	t.Run("rejects a second cancellation", func(t *testing.T) {
		f := newFixture(t, now)
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		p.JobStatus = lifecycle.JobStatusCancelled
		f.store.byID[p.ID] = p

		_, err := f.service.CancelJob(context.Background(), testRequester, p.ID, lifecycle.ReasonOther)
		require.ErrorIs(t, err, ErrActionUnavailable)
	})
}

func TestService_LegacyNotesBackfill(t *testing.T) {
	f := newFixture(t, at(t, "2025-06-01T15:00:00"))

	p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
	p.ProposedTime = ""
	p.ProposedLocation = ""
	p.Notes = "Location: community garden\nTime: 14:00\n[Response from Ana]: see you there\nbring gloves"
	f.store.byID[p.ID] = p

	got, err := f.service.GetByID(testRequester, p.ID)
	require.NoError(t, err)

	require.Equal(t, "community garden", got.ProposedLocation)
	require.Equal(t, "14:00", got.ProposedTime)
	require.Equal(t, "see you there", got.ResponseMessage)

	// the engine sees the backfilled schedule: 15:00 is past the legacy 14:00
	decision, err := f.service.Eligibility(testProvider, p.ID)
	require.NoError(t, err)
	require.True(t, decision.CanProviderApprove)
	require.Equal(t, lifecycle.PhaseAwaitingApproval, decision.Phase)

	t.Run("first-class columns win over notes", func(t *testing.T) {
		p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
		p.Notes = "Location: somewhere else\nTime: 09:00"
		f.store.byID[p.ID] = p

		got, err := f.service.GetByID(testRequester, p.ID)
		require.NoError(t, err)

		require.Equal(t, "community garden", got.ProposedLocation)
		require.Equal(t, "14:00", got.ProposedTime)
	})
}

func TestService_Eligibility(t *testing.T) {
	f := newFixture(t, at(t, "2025-06-01T15:00:00"))
	p := storedProposal(lifecycle.PostTypeOffer, lifecycle.StatusAccepted)
	f.store.byID[p.ID] = p

	decision, err := f.service.Eligibility(testProvider, p.ID)
	require.NoError(t, err)

	require.Equal(t, lifecycle.PhaseAwaitingApproval, decision.Phase)
	require.True(t, decision.CanProviderApprove)
	require.False(t, decision.CanCancelNegotiation)
	require.Equal(t, lifecycle.RoleRequester, decision.PayerRole)

	_, err = f.service.Eligibility(testStranger, p.ID)
	require.ErrorIs(t, err, ErrNotParticipant)
}
