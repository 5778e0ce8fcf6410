// Package matching holds the pure core of the postulation engine: the
// compatibility scoring algorithm, the ranking recomputation and the
// lifecycle state machine. Nothing in this package touches persistence or
// I/O; identical inputs always produce identical outputs.
package matching

import (
	"errors"
	"math"
)

// ErrMalformedSnapshot is returned when a candidate or vacancy snapshot is
// missing fields the scorer needs. Scoring fails closed rather than guessing
// a default.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Factor names, in breakdown order.
const (
	FactorSkills     = "skills"
	FactorExperience = "experience"
	FactorEducation  = "education"
	FactorLocation   = "location"
)

// Config carries the scoring tunables. Defaults reproduce the documented
// factor ordering; deployments may override them through the environment.
type Config struct {
	ExperienceWeight float64
	EducationWeight  float64
	LocationWeight   float64
	// MandatoryMissCap is the score ceiling applied when any mandatory
	// skill requirement is unmet.
	MandatoryMissCap float64
}

// DefaultConfig returns the standard factor weights.
func DefaultConfig() Config {
	return Config{
		ExperienceWeight: 20,
		EducationWeight:  15,
		LocationWeight:   10,
		MandatoryMissCap: 59,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
