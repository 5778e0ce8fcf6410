package domain

import "context"

// CandidateSkill is one skill on a candidate's profile. Mutated only by the
// candidate; removed when the candidate deletes it or the catalog skill is
// deactivated.
type CandidateSkill struct {
	SkillID           int64      `json:"skill_id" validate:"required"`
	SkillName         string     `json:"skill_name"`
	ProficiencyLevel  SkillLevel `json:"proficiency_level" validate:"required,oneof=basic intermediate advanced expert"`
	YearsOfExperience float64    `json:"years_of_experience" validate:"min=0"`
	Certified         bool       `json:"certified"`
}

// CandidateSnapshot is the read view of a candidate the scoring engine
// consumes. It is assembled by the repository at submission time; the score
// computed from it is immutable afterwards.
type CandidateSnapshot struct {
	CandidateID       string           `json:"candidate_id"`
	FullName          string           `json:"full_name"`
	Email             string           `json:"email,omitempty"`
	YearsOfExperience float64          `json:"years_of_experience"`
	HighestEducation  EducationLevel   `json:"highest_education"`
	City              string           `json:"city"`
	Department        string           `json:"department"`
	PreferredModality Modality         `json:"preferred_modality"`
	Languages         []string         `json:"languages,omitempty"`
	Skills            []CandidateSkill `json:"skills"`
}

// SkillByID returns the candidate's skill matching the catalog skill, if any.
func (s *CandidateSnapshot) SkillByID(skillID int64) (CandidateSkill, bool) {
	for _, cs := range s.Skills {
		if cs.SkillID == skillID {
			return cs, true
		}
	}
	return CandidateSkill{}, false
}

// CandidateRepository provides the candidate read view and skill maintenance.
type CandidateRepository interface {
	GetSnapshot(ctx context.Context, candidateID string) (*CandidateSnapshot, error)
	UpdateProfile(ctx context.Context, snapshot *CandidateSnapshot) error
	UpsertSkill(ctx context.Context, candidateID string, skill *CandidateSkill) error
	DeleteSkill(ctx context.Context, candidateID string, skillID int64) error
}

// CandidateUsecase defines candidate-facing profile operations.
type CandidateUsecase interface {
	GetProfile(ctx context.Context, actor Actor) (*CandidateSnapshot, error)
	UpdateProfile(ctx context.Context, actor Actor, snapshot *CandidateSnapshot) error
	UpsertSkill(ctx context.Context, actor Actor, skill *CandidateSkill) error
	RemoveSkill(ctx context.Context, actor Actor, skillID int64) error
}
