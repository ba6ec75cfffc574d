package lifecycle

import (
	"errors"
	"strings"
	"time"
)

const (
	// MinLeadTime is the minimum distance between submission and the
	// scheduled event for a new proposal.
	MinLeadTime = 24 * time.Hour
)

var (
	ErrHoursNotPositive = errors.New("hours must be a positive amount")
	ErrHoursFractional  = errors.New("hours must be a whole number")
	ErrMissingLocation  = errors.New("location is required")
	ErrInvalidSchedule  = errors.New("proposed date or time is missing or invalid")
	ErrInsufficientLead = errors.New("event must be at least 24 hours away")
)

// ValidateCreation checks everything about a new proposal that needs no
// stored data. Balance sufficiency and the one-active-proposal rule are
// checked by the proposal service, which owns that data.
func ValidateCreation(req CreationRequest, now time.Time) error {
	if !req.Hours.IsPositive() {
		return ErrHoursNotPositive
	}
	if !req.Hours.IsInteger() {
		return ErrHoursFractional
	}
	if strings.TrimSpace(req.Location) == "" {
		return ErrMissingLocation
	}

	event, ok := EventTime(Proposal{
		ProposedDate: req.ProposedDate,
		ProposedTime: req.ProposedTime,
	}, now)
	if !ok {
		return ErrInvalidSchedule
	}

	if event.Sub(now) < MinLeadTime {
		return ErrInsufficientLead
	}

	return nil
}
