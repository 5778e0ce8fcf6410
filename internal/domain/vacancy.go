package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound  = errors.New("resource not found")
	ErrDuplicate = errors.New("resource already exists")
)

// Vacancy lifecycle states. Only open vacancies accept new postulations.
const (
	VacancyStateDraft  = "draft"
	VacancyStateOpen   = "open"
	VacancyStatePaused = "paused"
	VacancyStateClosed = "closed"
)

// VacancyStateTransitions defines the allowed vacancy state changes.
// Closed is terminal.
var VacancyStateTransitions = map[string][]string{
	VacancyStateDraft:  {VacancyStateOpen, VacancyStateClosed},
	VacancyStateOpen:   {VacancyStatePaused, VacancyStateClosed},
	VacancyStatePaused: {VacancyStateOpen, VacancyStateClosed},
	VacancyStateClosed: {},
}

// SkillRequirement is one required skill on a vacancy. Weights are relative
// and normalized at scoring time; they do not need to sum to 100.
type SkillRequirement struct {
	SkillID      int64      `json:"skill_id" validate:"required"`
	SkillName    string     `json:"skill_name"`
	MinimumLevel SkillLevel `json:"minimum_level" validate:"required,oneof=basic intermediate advanced expert"`
	IsMandatory  bool       `json:"is_mandatory"`
	Weight       float64    `json:"weight" validate:"required,min=1,max=100"`
}

// Vacancy is a job opening published by a company. The fields below double as
// the vacancy snapshot consumed by the scoring engine: requirements are read
// together with the vacancy row.
type Vacancy struct {
	ID                      int64              `json:"id"`
	CompanyID               string             `json:"company_id"`
	Title                   string             `json:"title" validate:"required,min=3,max=150"`
	Description             string             `json:"description" validate:"max=5000"`
	RequiredExperienceYears float64            `json:"required_experience_years" validate:"min=0"`
	MinimumEducation        EducationLevel     `json:"minimum_education" validate:"required,oneof=secondary technical bachelor master doctorate"`
	City                    string             `json:"city" validate:"required"`
	Department              string             `json:"department" validate:"required"`
	Modality                Modality           `json:"modality" validate:"required,oneof=onsite hybrid remote"`
	State                   string             `json:"state"`
	Requirements            []SkillRequirement `json:"requirements" validate:"dive"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

type VacancyRepository interface {
	Create(ctx context.Context, vacancy *Vacancy) error
	// GetByID loads the vacancy together with its skill requirements.
	GetByID(ctx context.Context, id int64) (*Vacancy, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]Vacancy, int64, error)
	// UpdateState applies the state change only when the stored state still
	// matches from; returns false when the precondition fails.
	UpdateState(ctx context.Context, id int64, from, to string) (bool, error)
	// ReplaceRequirements swaps the full requirement set atomically.
	ReplaceRequirements(ctx context.Context, vacancyID int64, reqs []SkillRequirement) error
}

type VacancyUsecase interface {
	CreateVacancy(ctx context.Context, actor Actor, vacancy *Vacancy) error
	GetVacancy(ctx context.Context, id int64) (*Vacancy, error)
	ListMyVacancies(ctx context.Context, actor Actor, page, pageSize int) (*PaginatedResult[Vacancy], error)
	ChangeState(ctx context.Context, actor Actor, vacancyID int64, target string) error
	SetRequirements(ctx context.Context, actor Actor, vacancyID int64, reqs []SkillRequirement) error
}
