package domain

var payLaterTransitions = map[PayLaterStatus][]PayLaterStatus{
	PayLaterPending:  {PayLaterApproved, PayLaterRejected},
	PayLaterApproved: {PayLaterPaid},
}

var treatmentTransitions = map[TreatmentStatus][]TreatmentStatus{
	TreatmentPending:  {TreatmentApproved, TreatmentCancelled},
	TreatmentApproved: {TreatmentOngoing, TreatmentCancelled},
	TreatmentOngoing:  {TreatmentCompleted, TreatmentCancelled},
}

// ParsePayLaterStatus converts a raw value into a known PayLaterStatus
func ParsePayLaterStatus(v string) (PayLaterStatus, bool) {
	s := PayLaterStatus(v)
	switch s {
	case PayLaterPending, PayLaterApproved, PayLaterRejected, PayLaterPaid:
		return s, true
	}
	return "", false
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s PayLaterStatus) CanTransitionTo(next PayLaterStatus) bool {
	for _, allowed := range payLaterTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s PayLaterStatus) IsTerminal() bool {
	return len(payLaterTransitions[s]) == 0
}

// Transition returns next if the move from s is allowed
func (s PayLaterStatus) Transition(next PayLaterStatus) (PayLaterStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, InvalidRequestf("Cannot change PayLater status from %s to %s", s, next)
	}
	return next, nil
}

// ParseTreatmentStatus converts a raw value into a known TreatmentStatus
func ParseTreatmentStatus(v string) (TreatmentStatus, bool) {
	s := TreatmentStatus(v)
	switch s {
	case TreatmentPending, TreatmentApproved, TreatmentOngoing, TreatmentCompleted, TreatmentCancelled:
		return s, true
	}
	return "", false
}

// CanTransitionTo reports whether next is reachable from s in one step
func (s TreatmentStatus) CanTransitionTo(next TreatmentStatus) bool {
	for _, allowed := range treatmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s TreatmentStatus) IsTerminal() bool {
	return len(treatmentTransitions[s]) == 0
}

// Transition returns next if the move from s is allowed
func (s TreatmentStatus) Transition(next TreatmentStatus) (TreatmentStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, InvalidRequestf("Cannot change treatment status from %s to %s", s, next)
	}
	return next, nil
}
