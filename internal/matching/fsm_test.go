package matching_test

import (
	"testing"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/matching"

	"github.com/stretchr/testify/assert"
)

var allowed = map[domain.PostulationState][]domain.PostulationState{
	domain.StateSubmitted:          {domain.StateReviewed, domain.StateWithdrawn},
	domain.StateReviewed:           {domain.StateShortlisted, domain.StateRejected, domain.StateWithdrawn},
	domain.StateShortlisted:        {domain.StateInterviewScheduled, domain.StateRejected, domain.StateWithdrawn},
	domain.StateInterviewScheduled: {domain.StateInterviewCompleted},
	domain.StateInterviewCompleted: {domain.StateHired, domain.StateRejected},
	domain.StateHired:              {},
	domain.StateRejected:           {},
	domain.StateWithdrawn:          {},
}

func TestCanTransitionExhaustive(t *testing.T) {
	for _, from := range matching.States() {
		allowedSet := make(map[domain.PostulationState]bool)
		for _, to := range allowed[from] {
			allowedSet[to] = true
		}
		for _, to := range matching.States() {
			got := matching.CanTransition(from, to)
			assert.Equal(t, allowedSet[to], got, "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStates(t *testing.T) {
	assert.False(t, matching.CanTransition("frozen", domain.StateReviewed))
	assert.False(t, matching.CanTransition(domain.StateSubmitted, "frozen"))
}

func TestTerminalStates(t *testing.T) {
	terminal := []domain.PostulationState{
		domain.StateHired, domain.StateRejected, domain.StateWithdrawn,
	}
	for _, s := range terminal {
		assert.True(t, matching.IsTerminal(s), "%s should be terminal", s)
		assert.False(t, matching.IsActive(s), "%s should not be active", s)
		for _, to := range matching.States() {
			assert.False(t, matching.CanTransition(s, to), "terminal %s -> %s", s, to)
		}
	}
}

func TestActiveStates(t *testing.T) {
	active := []domain.PostulationState{
		domain.StateSubmitted, domain.StateReviewed, domain.StateShortlisted,
		domain.StateInterviewScheduled, domain.StateInterviewCompleted,
	}
	for _, s := range active {
		assert.True(t, matching.IsActive(s), "%s should be active", s)
		assert.False(t, matching.IsTerminal(s))
	}

	// Unknown states are neither active nor terminal.
	assert.False(t, matching.IsActive("frozen"))
	assert.False(t, matching.IsTerminal("frozen"))
}

func TestRequiredRole(t *testing.T) {
	assert.Equal(t, domain.RoleCandidate, matching.RequiredRole(domain.StateWithdrawn))
	assert.Equal(t, domain.RoleCompany, matching.RequiredRole(domain.StateReviewed))
	assert.Equal(t, domain.RoleCompany, matching.RequiredRole(domain.StateHired))
	assert.Equal(t, domain.RoleCompany, matching.RequiredRole(domain.StateRejected))
}

func TestWithdrawalCommitmentPoint(t *testing.T) {
	// A candidate may withdraw up to shortlisted; once an interview is
	// scheduled the withdrawal window is closed.
	assert.True(t, matching.CanTransition(domain.StateSubmitted, domain.StateWithdrawn))
	assert.True(t, matching.CanTransition(domain.StateReviewed, domain.StateWithdrawn))
	assert.True(t, matching.CanTransition(domain.StateShortlisted, domain.StateWithdrawn))
	assert.False(t, matching.CanTransition(domain.StateInterviewScheduled, domain.StateWithdrawn))
	assert.False(t, matching.CanTransition(domain.StateInterviewCompleted, domain.StateWithdrawn))
}
