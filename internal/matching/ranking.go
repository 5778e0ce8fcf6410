package matching

import (
	"sort"

	"go-postulation-backend/internal/domain"
)

// Rank recomputes the rank assignment for one vacancy's postulations and
// returns the new ranks keyed by postulation ID. Only active postulations are
// ranked; terminal ones are absent from the result and keep their
// last-assigned rank as a historical artifact.
//
// Ordering is total: descending score, then ascending submitted_at (the
// earlier application wins the tie), then ascending ID. Ranks are assigned
// 1..N with no gaps. The function is idempotent and pure; persistence is the
// caller's concern.
func Rank(postulations []domain.Postulation) map[int64]int {
	active := make([]domain.Postulation, 0, len(postulations))
	for _, p := range postulations {
		if IsActive(p.State) {
			active = append(active, p)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Score != active[j].Score {
			return active[i].Score > active[j].Score
		}
		if !active[i].SubmittedAt.Equal(active[j].SubmittedAt) {
			return active[i].SubmittedAt.Before(active[j].SubmittedAt)
		}
		return active[i].ID < active[j].ID
	})

	ranks := make(map[int64]int, len(active))
	for i, p := range active {
		ranks[p.ID] = i + 1
	}
	return ranks
}
