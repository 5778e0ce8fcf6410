package matching_test

import (
	"testing"
	"time"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	postulations := []domain.Postulation{
		{ID: 1, State: domain.StateSubmitted, Score: 80, SubmittedAt: base},
		{ID: 2, State: domain.StateReviewed, Score: 95, SubmittedAt: base.Add(time.Hour)},
		{ID: 3, State: domain.StateShortlisted, Score: 80, SubmittedAt: base.Add(-time.Hour)},
		{ID: 4, State: domain.StateSubmitted, Score: 60, SubmittedAt: base},
	}

	ranks := matching.Rank(postulations)

	assert.Equal(t, 1, ranks[2], "highest score ranks first")
	assert.Equal(t, 2, ranks[3], "earlier submission wins the score tie")
	assert.Equal(t, 3, ranks[1])
	assert.Equal(t, 4, ranks[4])
}

func TestRankPermutation(t *testing.T) {
	base := time.Now()
	var postulations []domain.Postulation
	for i := int64(1); i <= 25; i++ {
		postulations = append(postulations, domain.Postulation{
			ID:          i,
			State:       domain.StateSubmitted,
			Score:       float64(i%7) * 10, // deliberate score collisions
			SubmittedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	ranks := matching.Rank(postulations)

	require.Len(t, ranks, len(postulations))
	seen := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, len(postulations))
		assert.False(t, seen[r], "rank %d assigned twice", r)
		seen[r] = true
	}
}

func TestRankExcludesTerminalStates(t *testing.T) {
	base := time.Now()
	postulations := []domain.Postulation{
		{ID: 1, State: domain.StateHired, Score: 99, SubmittedAt: base},
		{ID: 2, State: domain.StateRejected, Score: 90, SubmittedAt: base},
		{ID: 3, State: domain.StateWithdrawn, Score: 85, SubmittedAt: base},
		{ID: 4, State: domain.StateSubmitted, Score: 50, SubmittedAt: base},
		{ID: 5, State: domain.StateInterviewScheduled, Score: 40, SubmittedAt: base},
	}

	ranks := matching.Rank(postulations)

	// Terminal postulations are absent: they keep their last stored rank.
	assert.NotContains(t, ranks, int64(1))
	assert.NotContains(t, ranks, int64(2))
	assert.NotContains(t, ranks, int64(3))
	assert.Equal(t, 1, ranks[4])
	assert.Equal(t, 2, ranks[5])
}

func TestRankStableAcrossTies(t *testing.T) {
	// Identical score and timestamp: the lower ID wins, so the order is
	// total and reranking is idempotent.
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	postulations := []domain.Postulation{
		{ID: 7, State: domain.StateSubmitted, Score: 70, SubmittedAt: at},
		{ID: 3, State: domain.StateSubmitted, Score: 70, SubmittedAt: at},
	}

	first := matching.Rank(postulations)
	second := matching.Rank([]domain.Postulation{postulations[1], postulations[0]})

	assert.Equal(t, first, second)
	assert.Equal(t, 1, first[3])
	assert.Equal(t, 2, first[7])
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, matching.Rank(nil))
}
