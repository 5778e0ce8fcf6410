package matching

import (
	"fmt"

	"go-postulation-backend/internal/domain"
)

// Result is the output of one scoring run. The breakdown is ordered and
// sufficient to reconstruct the pre-cap score exactly.
type Result struct {
	Score         float64
	Breakdown     []domain.FactorResult
	MandatoryMiss bool
}

// Score computes the 0-100 compatibility score of a candidate against a
// vacancy. It is a pure function of the two snapshots and the config:
// calling it twice with identical inputs returns identical output.
func Score(c *domain.CandidateSnapshot, v *domain.Vacancy, cfg Config) (*Result, error) {
	if err := validateSnapshots(c, v); err != nil {
		return nil, err
	}

	skills, miss := scoreSkills(c, v)
	factors := []domain.FactorResult{
		skills,
		scoreExperience(c, v, cfg),
		scoreEducation(c, v, cfg),
		scoreLocation(c, v, cfg),
	}

	// Zero-weight factors contribute 0/0 and are excluded from
	// normalization, not treated as a zero score.
	breakdown := make([]domain.FactorResult, 0, len(factors))
	var totalPoints, totalWeight float64
	for _, f := range factors {
		if f.Weight <= 0 {
			continue
		}
		breakdown = append(breakdown, f)
		totalPoints += f.Points
		totalWeight += f.Weight
	}

	var raw float64
	if totalWeight > 0 {
		raw = 100 * totalPoints / totalWeight
	}

	// Mandatory requirements are never fully compensated by unrelated
	// strengths.
	if miss && raw > cfg.MandatoryMissCap {
		raw = cfg.MandatoryMissCap
	}

	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}

	return &Result{
		Score:         round2(raw),
		Breakdown:     breakdown,
		MandatoryMiss: miss,
	}, nil
}

// validateSnapshots rejects snapshots that cannot be scored without guessing.
func validateSnapshots(c *domain.CandidateSnapshot, v *domain.Vacancy) error {
	if c == nil || c.CandidateID == "" {
		return fmt.Errorf("%w: candidate snapshot missing identity", ErrMalformedSnapshot)
	}
	if v == nil || v.ID == 0 {
		return fmt.Errorf("%w: vacancy snapshot missing identity", ErrMalformedSnapshot)
	}
	if c.YearsOfExperience < 0 {
		return fmt.Errorf("%w: candidate years_of_experience is negative", ErrMalformedSnapshot)
	}
	if v.RequiredExperienceYears < 0 {
		return fmt.Errorf("%w: vacancy required_experience_years is negative", ErrMalformedSnapshot)
	}
	if c.HighestEducation.Rank() == 0 {
		return fmt.Errorf("%w: unknown candidate education level %q", ErrMalformedSnapshot, c.HighestEducation)
	}
	if v.MinimumEducation.Rank() == 0 {
		return fmt.Errorf("%w: unknown vacancy education level %q", ErrMalformedSnapshot, v.MinimumEducation)
	}
	for _, s := range c.Skills {
		if s.ProficiencyLevel.Rank() == 0 {
			return fmt.Errorf("%w: unknown proficiency level %q for skill %d", ErrMalformedSnapshot, s.ProficiencyLevel, s.SkillID)
		}
		if s.YearsOfExperience < 0 {
			return fmt.Errorf("%w: negative experience for skill %d", ErrMalformedSnapshot, s.SkillID)
		}
	}
	for _, r := range v.Requirements {
		if r.MinimumLevel.Rank() == 0 {
			return fmt.Errorf("%w: unknown minimum level %q for requirement %d", ErrMalformedSnapshot, r.MinimumLevel, r.SkillID)
		}
		// Missing or out-of-range weights are rejected, never defaulted.
		if r.Weight < 1 || r.Weight > 100 {
			return fmt.Errorf("%w: requirement %d weight %.2f outside [1,100]", ErrMalformedSnapshot, r.SkillID, r.Weight)
		}
	}
	return nil
}
