package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

const (
	// CancelWindow is how long before the scheduled event plain negotiation
	// cancellation stays available. Past it only job-level cancellation with
	// its transfer/refund semantics remains.
	CancelWindow = 12 * time.Hour

	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	timeLayoutSecs = "15:04:05"
)

// EventTime resolves the scheduled moment of a proposal in the location of
// now. A date with no time settles at the end of that day. The second return
// is false when the date is missing or unparsable; every predicate treats
// that as "not eligible" rather than failing.
func EventTime(p Proposal, now time.Time) (time.Time, bool) {
	if p.ProposedDate == "" {
		return time.Time{}, false
	}

	day, err := time.ParseInLocation(dateLayout, p.ProposedDate, now.Location())
	if err != nil {
		return time.Time{}, false
	}

	// Wall-clock construction via time.Date keeps the hour stable on days
	// where a DST shift makes the day longer or shorter than 24h.
	if p.ProposedTime == "" {
		return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location()), true
	}

	clock, err := time.ParseInLocation(timeLayout, p.ProposedTime, now.Location())
	if err != nil {
		clock, err = time.ParseInLocation(timeLayoutSecs, p.ProposedTime, now.Location())
		if err != nil {
			return time.Time{}, false
		}
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, now.Location()), true
}

// CanApprove reports whether the scheduled event has already taken place.
// Nobody may confirm an exchange before it could have happened. The boundary
// is inclusive: at the exact event instant approval opens.
func CanApprove(p Proposal, now time.Time) bool {
	event, ok := EventTime(p, now)
	if !ok {
		return false
	}
	return !now.Before(event)
}

// CanProviderApprove reports whether the viewer, as the provider, may confirm
// the exchange right now. For offer posts the provider moves first; for need
// posts the provider is the payer's counterpart and must wait for the
// requester's confirmation. See PayerRole for why the order differs.
func CanProviderApprove(viewerID uuid.UUID, p Proposal, now time.Time) bool {
	if p.JobStatus == JobStatusCancelled {
		return false
	}
	if p.Status != StatusAccepted {
		return false
	}
	if viewerID != p.ProviderID {
		return false
	}
	if p.ProviderApproved {
		return false
	}
	if !CanApprove(p, now) {
		return false
	}

	switch p.PostType {
	case PostTypeOffer:
		return true
	case PostTypeNeed:
		return p.RequesterApproved
	default:
		return false
	}
}

// CanRequesterApprove is the mirror image of CanProviderApprove.
func CanRequesterApprove(viewerID uuid.UUID, p Proposal, now time.Time) bool {
	if p.JobStatus == JobStatusCancelled {
		return false
	}
	if p.Status != StatusAccepted {
		return false
	}
	if viewerID != p.RequesterID {
		return false
	}
	if p.RequesterApproved {
		return false
	}
	if !CanApprove(p, now) {
		return false
	}

	switch p.PostType {
	case PostTypeOffer:
		return p.ProviderApproved
	case PostTypeNeed:
		return true
	default:
		return false
	}
}

// CanCancelNegotiation reports whether an accepted proposal may still be
// cancelled outright, refunding the payer. The window closes exactly
// CancelWindow before the event: strictly more time must remain.
func CanCancelNegotiation(p Proposal, now time.Time) bool {
	if p.Status != StatusAccepted || p.JobStatus == JobStatusCancelled {
		return false
	}
	event, ok := EventTime(p, now)
	if !ok {
		return false
	}
	return event.Sub(now) > CancelWindow
}

// CanReview reports whether the viewer may review the counterparty: either
// they already confirmed the exchange, or they were the one who called the
// job off.
func CanReview(viewerID uuid.UUID, p Proposal) bool {
	cancelledByViewer := p.JobStatus == JobStatusCancelled &&
		p.JobCancelledByID != nil && *p.JobCancelledByID == viewerID

	switch viewerID {
	case p.RequesterID:
		return p.RequesterApproved || cancelledByViewer
	case p.ProviderID:
		return p.ProviderApproved || cancelledByViewer
	default:
		return false
	}
}

// PayerRole names the party whose balance is debited when the proposal is
// accepted. For an offer the requester consumes the posted service and pays.
// For a need the poster ("provider") is the one whose need gets fulfilled, so
// the provider pays and the requester earns. The naming reads backwards for
// need posts; the direction is deliberate and must not be "fixed".
func PayerRole(pt PostType) Role {
	if pt == PostTypeNeed {
		return RoleProvider
	}
	return RoleRequester
}

// EarnerRole names the party credited when both sides approve.
func EarnerRole(pt PostType) Role {
	if pt == PostTypeNeed {
		return RoleRequester
	}
	return RoleProvider
}

// PayerID resolves PayerRole to a user on this proposal.
func PayerID(p Proposal) uuid.UUID {
	if PayerRole(p.PostType) == RoleProvider {
		return p.ProviderID
	}
	return p.RequesterID
}

// EarnerID resolves EarnerRole to a user on this proposal.
func EarnerID(p Proposal) uuid.UUID {
	if EarnerRole(p.PostType) == RoleProvider {
		return p.ProviderID
	}
	return p.RequesterID
}

// TransferRecipient is who receives the held hours when a job is cancelled
// with a no-show reason: always the party that did not cancel.
func TransferRecipient(p Proposal, cancelledBy uuid.UUID) uuid.UUID {
	if cancelledBy == p.RequesterID {
		return p.ProviderID
	}
	return p.RequesterID
}

// CurrentPhase derives the display phase from stored state plus the clock.
func CurrentPhase(p Proposal, now time.Time) Phase {
	if p.JobStatus == JobStatusCancelled {
		return PhaseJobCancelled
	}

	switch p.Status {
	case StatusWaiting:
		return PhaseNegotiating
	case StatusDeclined:
		return PhaseDeclined
	case StatusCancelled:
		return PhaseCancelled
	case StatusCompleted:
		return PhaseCompleted
	case StatusAccepted:
		if CanApprove(p, now) {
			return PhaseAwaitingApproval
		}
		return PhaseScheduled
	default:
		return PhaseNegotiating
	}
}

// Evaluate computes everything a caller needs to render or authorize actions
// for one viewer at one instant. It is a pure function of its arguments.
func Evaluate(p Proposal, viewerID uuid.UUID, now time.Time) Decision {
	return Decision{
		Phase:                CurrentPhase(p, now),
		CanProviderApprove:   CanProviderApprove(viewerID, p, now),
		CanRequesterApprove:  CanRequesterApprove(viewerID, p, now),
		CanCancelNegotiation: CanCancelNegotiation(p, now),
		CanReview:            CanReview(viewerID, p),
		PayerRole:            PayerRole(p.PostType),
		EarnerRole:           EarnerRole(p.PostType),
	}
}
