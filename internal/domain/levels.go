package domain

import "fmt"

// SkillLevel is the proficiency scale used by both candidate skills and
// vacancy requirements. The order is fixed: basic < intermediate < advanced < expert.
type SkillLevel string

const (
	SkillLevelBasic        SkillLevel = "basic"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
	SkillLevelExpert       SkillLevel = "expert"
)

var skillLevelRanks = map[SkillLevel]int{
	SkillLevelBasic:        1,
	SkillLevelIntermediate: 2,
	SkillLevelAdvanced:     3,
	SkillLevelExpert:       4,
}

// Rank returns the ordinal position of the level, or 0 for an unknown level.
// Callers are expected to have validated the level via ParseSkillLevel first.
func (l SkillLevel) Rank() int {
	return skillLevelRanks[l]
}

// Satisfies reports whether this level meets or exceeds the required level.
func (l SkillLevel) Satisfies(required SkillLevel) bool {
	return l.Rank() >= required.Rank()
}

// ParseSkillLevel validates a raw level string coming from external input.
func ParseSkillLevel(s string) (SkillLevel, error) {
	level := SkillLevel(s)
	if _, ok := skillLevelRanks[level]; !ok {
		return "", fmt.Errorf("unknown skill level %q", s)
	}
	return level, nil
}

// EducationLevel is the fixed education ordinal used by the education factor.
type EducationLevel string

const (
	EducationSecondary EducationLevel = "secondary"
	EducationTechnical EducationLevel = "technical"
	EducationBachelor  EducationLevel = "bachelor"
	EducationMaster    EducationLevel = "master"
	EducationDoctorate EducationLevel = "doctorate"
)

var educationRanks = map[EducationLevel]int{
	EducationSecondary: 1,
	EducationTechnical: 2,
	EducationBachelor:  3,
	EducationMaster:    4,
	EducationDoctorate: 5,
}

// Rank returns the ordinal position of the level, or 0 for an unknown level.
func (l EducationLevel) Rank() int {
	return educationRanks[l]
}

// Meets reports whether this education level is at least the required minimum.
func (l EducationLevel) Meets(minimum EducationLevel) bool {
	return l.Rank() >= minimum.Rank()
}

// ParseEducationLevel validates a raw education level string.
func ParseEducationLevel(s string) (EducationLevel, error) {
	level := EducationLevel(s)
	if _, ok := educationRanks[level]; !ok {
		return "", fmt.Errorf("unknown education level %q", s)
	}
	return level, nil
}

// Modality is the work arrangement of a vacancy or a candidate preference.
type Modality string

const (
	ModalityOnsite Modality = "onsite"
	ModalityHybrid Modality = "hybrid"
	ModalityRemote Modality = "remote"
)
