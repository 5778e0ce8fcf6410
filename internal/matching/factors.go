package matching

import (
	"strings"

	"go-postulation-backend/internal/domain"
)

// scoreSkills walks every skill requirement of the vacancy and accumulates
// points against the candidate's skills. The factor weight is the sum of
// requirement weights; a vacancy with no requirements yields weight 0 and is
// excluded from normalization by the caller.
//
// A mandatory requirement that is absent or below the minimum level
// contributes zero points and flags the mandatory miss; optional requirements
// below the minimum earn partial credit proportional to the level ordinal.
func scoreSkills(c *domain.CandidateSnapshot, v *domain.Vacancy) (domain.FactorResult, bool) {
	var points, weight float64
	miss := false

	for _, req := range v.Requirements {
		weight += req.Weight

		skill, ok := c.SkillByID(req.SkillID)
		if !ok {
			if req.IsMandatory {
				miss = true
			}
			continue
		}

		if skill.ProficiencyLevel.Satisfies(req.MinimumLevel) {
			points += req.Weight
			continue
		}

		if req.IsMandatory {
			miss = true
			continue
		}

		// Partial credit, monotonic in level.
		points += req.Weight * float64(skill.ProficiencyLevel.Rank()) / float64(req.MinimumLevel.Rank())
	}

	return domain.FactorResult{Factor: FactorSkills, Points: round2(points), Weight: weight}, miss
}

// scoreExperience grants full weight when the candidate meets the required
// years, linear partial credit otherwise. A vacancy requiring zero years
// always awards full weight.
func scoreExperience(c *domain.CandidateSnapshot, v *domain.Vacancy, cfg Config) domain.FactorResult {
	w := cfg.ExperienceWeight
	result := domain.FactorResult{Factor: FactorExperience, Weight: w}

	if v.RequiredExperienceYears <= 0 || c.YearsOfExperience >= v.RequiredExperienceYears {
		result.Points = w
		return result
	}

	points := w * c.YearsOfExperience / v.RequiredExperienceYears
	if points < 0 {
		points = 0
	}
	result.Points = round2(points)
	return result
}

// scoreEducation is binary: education is not partially substitutable.
func scoreEducation(c *domain.CandidateSnapshot, v *domain.Vacancy, cfg Config) domain.FactorResult {
	result := domain.FactorResult{Factor: FactorEducation, Weight: cfg.EducationWeight}
	if c.HighestEducation.Meets(v.MinimumEducation) {
		result.Points = cfg.EducationWeight
	}
	return result
}

// scoreLocation awards full weight for remote vacancies or a city match,
// half weight for hybrid vacancies in the same department, zero otherwise.
func scoreLocation(c *domain.CandidateSnapshot, v *domain.Vacancy, cfg Config) domain.FactorResult {
	result := domain.FactorResult{Factor: FactorLocation, Weight: cfg.LocationWeight}

	sameCity := strings.EqualFold(c.City, v.City)
	sameDepartment := strings.EqualFold(c.Department, v.Department)

	switch {
	case v.Modality == domain.ModalityRemote || sameCity:
		result.Points = cfg.LocationWeight
	case v.Modality == domain.ModalityHybrid && sameDepartment:
		result.Points = round2(cfg.LocationWeight / 2)
	}
	return result
}
