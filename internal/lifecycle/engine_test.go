package lifecycle

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	testRequester = uuid.New()
	testProvider  = uuid.New()
	testStranger  = uuid.New()
)

func acceptedProposal(pt PostType) Proposal {
	return Proposal{
		ID:           uuid.New(),
		PostID:       uuid.New(),
		PostType:     pt,
		RequesterID:  testRequester,
		ProviderID:   testProvider,
		Hours:        2,
		ProposedDate: "2025-06-01",
		ProposedTime: "14:00",
		Status:       StatusAccepted,
		JobStatus:    JobStatusNone,
	}
}

func at(value string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestUnitEventTime(t *testing.T) {
	for name, tc := range map[string]struct {
		date     string
		clock    string
		expected string
		ok       bool
	}{
		"date and time": {
			date:     "2025-06-01",
			clock:    "14:00",
			expected: "2025-06-01T14:00:00",
			ok:       true,
		},
		"time with seconds": {
			date:     "2025-06-01",
			clock:    "14:30:15",
			expected: "2025-06-01T14:30:15",
			ok:       true,
		},
		"no time settles end of day": {
			date:     "2025-06-01",
			clock:    "",
			expected: "2025-06-01T23:59:59",
			ok:       true,
		},
		"missing date": {
			date: "",
			ok:   false,
		},
		"garbage date": {
			date: "june first",
			ok:   false,
		},
		"garbage time": {
			date:  "2025-06-01",
			clock: "half past two",
			ok:    false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			event, ok := EventTime(Proposal{ProposedDate: tc.date, ProposedTime: tc.clock}, at("2025-05-01T00:00:00"))
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, at(tc.expected).Truncate(time.Second), event.Truncate(time.Second))
			}
		})
	}
}

func TestUnitEventTimeOnDSTDays(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, loc)

	// spring forward: 2025-03-09 is a 23-hour day
	event, ok := EventTime(Proposal{ProposedDate: "2025-03-09"}, now)
	require.True(t, ok)
	require.Equal(t, 9, event.Day())
	require.Equal(t, 23, event.Hour())

	event, ok = EventTime(Proposal{ProposedDate: "2025-03-09", ProposedTime: "14:00"}, now)
	require.True(t, ok)
	require.Equal(t, 14, event.Hour())

	// fall back: 2025-11-02 is a 25-hour day
	event, ok = EventTime(Proposal{ProposedDate: "2025-11-02"}, now)
	require.True(t, ok)
	require.Equal(t, 2, event.Day())
	require.Equal(t, 23, event.Hour())
}

func TestUnitCanApproveBoundary(t *testing.T) {
	p := acceptedProposal(PostTypeOffer)

	require.False(t, CanApprove(p, at("2025-06-01T13:59:59")))
	require.True(t, CanApprove(p, at("2025-06-01T14:00:00")), "boundary is inclusive")
	require.True(t, CanApprove(p, at("2025-06-02T00:00:00")))
}

func TestUnitApprovalRequiresAcceptedStatus(t *testing.T) {
	now := at("2025-06-02T00:00:00")

	for _, status := range []Status{StatusWaiting, StatusDeclined, StatusCancelled, StatusCompleted} {
		p := acceptedProposal(PostTypeOffer)
		p.Status = status

		require.False(t, CanProviderApprove(testProvider, p, now), string(status))
		require.False(t, CanRequesterApprove(testRequester, p, now), string(status))
	}
}

func TestUnitOfferApprovalOrder(t *testing.T) {
	now := at("2025-06-02T00:00:00")
	p := acceptedProposal(PostTypeOffer)

	t.Run("provider moves first", func(t *testing.T) {
		require.True(t, CanProviderApprove(testProvider, p, now))
		require.False(t, CanRequesterApprove(testRequester, p, now))
	})

	t.Run("requester unlocks after provider", func(t *testing.T) {
		approved := p
		approved.ProviderApproved = true

		require.False(t, CanProviderApprove(testProvider, approved, now), "already approved")
		require.True(t, CanRequesterApprove(testRequester, approved, now))
	})
}

func TestUnitNeedApprovalOrderReversed(t *testing.T) {
	now := at("2025-06-02T00:00:00")
	p := acceptedProposal(PostTypeNeed)

	require.True(t, CanRequesterApprove(testRequester, p, now))
	require.False(t, CanProviderApprove(testProvider, p, now), "provider waits on need posts")

	p.RequesterApproved = true
	require.True(t, CanProviderApprove(testProvider, p, now))
}

func TestUnitApprovalIdentityChecks(t *testing.T) {
	now := at("2025-06-02T00:00:00")
	p := acceptedProposal(PostTypeOffer)

	require.False(t, CanProviderApprove(testRequester, p, now))
	require.False(t, CanProviderApprove(testStranger, p, now))
	require.False(t, CanRequesterApprove(testProvider, p, now))
	require.False(t, CanRequesterApprove(testStranger, p, now))
}

func TestUnitCancelledJobBlocksApproval(t *testing.T) {
	now := at("2025-06-02T00:00:00")
	p := acceptedProposal(PostTypeOffer)
	p.JobStatus = JobStatusCancelled

	require.False(t, CanProviderApprove(testProvider, p, now))
	require.False(t, CanRequesterApprove(testRequester, p, now))
}

func TestUnitMissingScheduleFailsClosed(t *testing.T) {
	now := at("2025-06-02T00:00:00")

	for name, mutate := range map[string]func(*Proposal){
		"no date":  func(p *Proposal) { p.ProposedDate = "" },
		"bad date": func(p *Proposal) { p.ProposedDate = "soon" },
		"bad time": func(p *Proposal) { p.ProposedTime = "noonish" },
	} {
		t.Run(name, func(t *testing.T) {
			p := acceptedProposal(PostTypeOffer)
			mutate(&p)

			require.False(t, CanApprove(p, now))
			require.False(t, CanProviderApprove(testProvider, p, now))
			require.False(t, CanRequesterApprove(testRequester, p, now))
			require.False(t, CanCancelNegotiation(p, now))
		})
	}
}

func TestUnitCancelNegotiationWindow(t *testing.T) {
	p := acceptedProposal(PostTypeOffer) // event at 2025-06-01 14:00

	for name, tc := range map[string]struct {
		now      time.Time
		expected bool
	}{
		"37 hours before": {
			now:      at("2025-05-31T01:00:00"),
			expected: true,
		},
		"just over 12 hours before": {
			now:      at("2025-06-01T01:59:59"),
			expected: true,
		},
		"exactly 12 hours before": {
			now:      at("2025-06-01T02:00:00"),
			expected: false,
		},
		"inside the window": {
			now:      at("2025-06-01T10:00:00"),
			expected: false,
		},
		"after the event": {
			now:      at("2025-06-01T15:00:00"),
			expected: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, CanCancelNegotiation(p, tc.now))
		})
	}

	t.Run("only accepted proposals", func(t *testing.T) {
		waiting := acceptedProposal(PostTypeOffer)
		waiting.Status = StatusWaiting
		require.False(t, CanCancelNegotiation(waiting, at("2025-05-31T01:00:00")))
	})
}

func TestUnitApproveOpenCancelClosedAfterEvent(t *testing.T) {
	p := acceptedProposal(PostTypeOffer)
	now := at("2025-06-01T15:00:00") // one hour past the event

	require.True(t, CanApprove(p, now))
	require.False(t, CanCancelNegotiation(p, now))
}

func TestUnitPayerEarnerAsymmetry(t *testing.T) {
	t.Run("offer: requester pays, provider earns", func(t *testing.T) {
		p := acceptedProposal(PostTypeOffer)
		require.Equal(t, RoleRequester, PayerRole(p.PostType))
		require.Equal(t, RoleProvider, EarnerRole(p.PostType))
		require.Equal(t, testRequester, PayerID(p))
		require.Equal(t, testProvider, EarnerID(p))
	})

	t.Run("need: provider pays, requester earns", func(t *testing.T) {
		p := acceptedProposal(PostTypeNeed)
		require.Equal(t, RoleProvider, PayerRole(p.PostType))
		require.Equal(t, RoleRequester, EarnerRole(p.PostType))
		require.Equal(t, testProvider, PayerID(p))
		require.Equal(t, testRequester, EarnerID(p))
	})
}

func TestUnitTransferRecipient(t *testing.T) {
	p := acceptedProposal(PostTypeOffer)

	require.Equal(t, testProvider, TransferRecipient(p, testRequester))
	require.Equal(t, testRequester, TransferRecipient(p, testProvider))
}

func TestUnitCanReview(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate   func(*Proposal)
		viewer   uuid.UUID
		expected bool
	}{
		"requester approved": {
			mutate:   func(p *Proposal) { p.RequesterApproved = true },
			viewer:   testRequester,
			expected: true,
		},
		"requester not approved": {
			mutate:   func(p *Proposal) {},
			viewer:   testRequester,
			expected: false,
		},
		"provider approved": {
			mutate:   func(p *Proposal) { p.ProviderApproved = true },
			viewer:   testProvider,
			expected: true,
		},
		"job cancelled by viewer": {
			mutate: func(p *Proposal) {
				p.JobStatus = JobStatusCancelled
				p.JobCancelledByID = &testProvider
			},
			viewer:   testProvider,
			expected: true,
		},
		"job cancelled by counterparty": {
			mutate: func(p *Proposal) {
				p.JobStatus = JobStatusCancelled
				p.JobCancelledByID = &testProvider
			},
			viewer:   testRequester,
			expected: false,
		},
		"stranger": {
			mutate:   func(p *Proposal) { p.RequesterApproved = true; p.ProviderApproved = true },
			viewer:   testStranger,
			expected: false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := acceptedProposal(PostTypeOffer)
			tc.mutate(&p)
			require.Equal(t, tc.expected, CanReview(tc.viewer, p))
		})
	}
}

func TestUnitCurrentPhase(t *testing.T) {
	for name, tc := range map[string]struct {
		mutate   func(*Proposal)
		now      time.Time
		expected Phase
	}{
		"waiting": {
			mutate:   func(p *Proposal) { p.Status = StatusWaiting },
			now:      at("2025-05-01T00:00:00"),
			expected: PhaseNegotiating,
		},
		"accepted before event": {
			mutate:   func(p *Proposal) {},
			now:      at("2025-05-01T00:00:00"),
			expected: PhaseScheduled,
		},
		"accepted after event": {
			mutate:   func(p *Proposal) {},
			now:      at("2025-06-02T00:00:00"),
			expected: PhaseAwaitingApproval,
		},
		"declined": {
			mutate:   func(p *Proposal) { p.Status = StatusDeclined },
			now:      at("2025-05-01T00:00:00"),
			expected: PhaseDeclined,
		},
		"cancelled": {
			mutate:   func(p *Proposal) { p.Status = StatusCancelled },
			now:      at("2025-05-01T00:00:00"),
			expected: PhaseCancelled,
		},
		"completed": {
			mutate:   func(p *Proposal) { p.Status = StatusCompleted },
			now:      at("2025-06-05T00:00:00"),
			expected: PhaseCompleted,
		},
		"job cancelled wins": {
			mutate:   func(p *Proposal) { p.JobStatus = JobStatusCancelled },
			now:      at("2025-06-05T00:00:00"),
			expected: PhaseJobCancelled,
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := acceptedProposal(PostTypeOffer)
			tc.mutate(&p)
			require.Equal(t, tc.expected, CurrentPhase(p, tc.now))
		})
	}
}

func TestUnitEvaluateDeterministic(t *testing.T) {
	p := acceptedProposal(PostTypeNeed)
	p.RequesterApproved = true
	now := at("2025-06-02T00:00:00")

	first := Evaluate(p, testProvider, now)

	raw, err := json.Marshal(first)
	require.NoError(t, err)

	var restored Decision
	require.NoError(t, json.Unmarshal(raw, &restored))

	second := Evaluate(p, testProvider, now)
	require.Equal(t, first, second)
	require.Equal(t, first, restored)
	require.True(t, second.CanProviderApprove)
	require.Equal(t, PhaseAwaitingApproval, second.Phase)
}
