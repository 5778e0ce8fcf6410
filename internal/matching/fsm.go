package matching

import "go-postulation-backend/internal/domain"

// successors encodes the full lifecycle: the forward path is driven by the
// company, withdrawal by the candidate. A candidate cannot withdraw once
// interview scheduling has begun; scheduling is the commitment point.
var successors = map[domain.PostulationState][]domain.PostulationState{
	domain.StateSubmitted:          {domain.StateReviewed, domain.StateWithdrawn},
	domain.StateReviewed:           {domain.StateShortlisted, domain.StateRejected, domain.StateWithdrawn},
	domain.StateShortlisted:        {domain.StateInterviewScheduled, domain.StateRejected, domain.StateWithdrawn},
	domain.StateInterviewScheduled: {domain.StateInterviewCompleted},
	domain.StateInterviewCompleted: {domain.StateHired, domain.StateRejected},
	domain.StateHired:              {},
	domain.StateRejected:           {},
	domain.StateWithdrawn:          {},
}

// CanTransition reports whether target is in the allowed-successor set of
// from. Unknown states have no successors.
func CanTransition(from, to domain.PostulationState) bool {
	for _, s := range successors[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
func IsTerminal(s domain.PostulationState) bool {
	next, known := successors[s]
	return known && len(next) == 0
}

// IsActive reports whether a postulation in this state belongs to the
// ranked active set of its vacancy.
func IsActive(s domain.PostulationState) bool {
	next, known := successors[s]
	return known && len(next) > 0
}

// RequiredRole returns the actor role allowed to drive a transition to the
// target state: the owning candidate withdraws, the owning company drives
// everything else.
func RequiredRole(target domain.PostulationState) string {
	if target == domain.StateWithdrawn {
		return domain.RoleCandidate
	}
	return domain.RoleCompany
}

// States returns every known lifecycle state, for validation at the boundary.
func States() []domain.PostulationState {
	return []domain.PostulationState{
		domain.StateSubmitted,
		domain.StateReviewed,
		domain.StateShortlisted,
		domain.StateInterviewScheduled,
		domain.StateInterviewCompleted,
		domain.StateHired,
		domain.StateRejected,
		domain.StateWithdrawn,
	}
}
