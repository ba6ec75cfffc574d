package lifecycle

var transitions = map[Status]map[Status]struct{}{
	StatusWaiting: {
		StatusAccepted: {},
		StatusDeclined: {},
	},
	StatusAccepted: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusDeclined:  {},
	StatusCancelled: {},
	StatusCompleted: {},
}

// CanTransition reports whether a proposal may move from one negotiation
// status to another. Job-level cancellation is not a status transition: an
// accepted proposal whose job was called off keeps status accepted and gets
// JobStatusCancelled instead.
func CanTransition(from, to Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsActive reports whether a proposal still blocks the requester from opening
// another one on the same post. Declined proposals keep blocking, matching the
// one-proposal-per-post constraint of the stored data.
func IsActive(s Status, js JobStatus) bool {
	if s == StatusCompleted || s == StatusCancelled {
		return false
	}
	return js != JobStatusCancelled
}
