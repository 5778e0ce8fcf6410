package domain

import (
	"context"
	"time"
)

// PostulationState is the lifecycle state of a postulation.
type PostulationState string

// Postulation lifecycle states. The forward path is driven by the company;
// withdrawn is driven by the candidate. Hired, rejected and withdrawn are
// terminal.
const (
	StateSubmitted          PostulationState = "submitted"
	StateReviewed           PostulationState = "reviewed"
	StateShortlisted        PostulationState = "shortlisted"
	StateInterviewScheduled PostulationState = "interview_scheduled"
	StateInterviewCompleted PostulationState = "interview_completed"
	StateHired              PostulationState = "hired"
	StateRejected           PostulationState = "rejected"
	StateWithdrawn          PostulationState = "withdrawn"
)

// FactorResult is one entry of a postulation's score breakdown. The ordered
// list of factor results is sufficient to reconstruct the pre-cap score
// (sum of points over sum of weights).
type FactorResult struct {
	Factor string  `json:"factor"`
	Points float64 `json:"points"`
	Weight float64 `json:"weight"`
}

// AuditNote is one append-only entry in a postulation's audit trail. Prior
// notes are never overwritten.
type AuditNote struct {
	ActorID   string           `json:"actor_id"`
	ActorRole string           `json:"actor_role"`
	FromState PostulationState `json:"from_state"`
	ToState   PostulationState `json:"to_state"`
	Note      string           `json:"note,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// Postulation is a single candidate's application to one vacancy. Score and
// breakdown are computed at creation and immutable afterwards; rank and state
// are the only mutable fields, both owned by the engine.
type Postulation struct {
	ID              int64            `json:"id"`
	VacancyID       int64            `json:"vacancy_id"`
	CandidateID     string           `json:"candidate_id"`
	State           PostulationState `json:"state"`
	Score           float64          `json:"score"`
	Breakdown       []FactorResult   `json:"score_breakdown"`
	Rank            *int             `json:"rank,omitempty"`
	CoverLetter     *string          `json:"cover_letter,omitempty"`
	InterviewDate   *time.Time       `json:"interview_date,omitempty"`
	OutcomeNotes    *string          `json:"outcome_notes,omitempty"`
	ViewedByCompany bool             `json:"viewed_by_company"`
	AuditTrail      []AuditNote      `json:"company_notes,omitempty"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	LastUpdatedAt   time.Time        `json:"last_updated_at"`

	// Joined data for list responses
	CandidateName *string `json:"candidate_name,omitempty"`
	VacancyTitle  *string `json:"vacancy_title,omitempty"`
}

// PostulationFilter narrows ranked listings for companies.
type PostulationFilter struct {
	States   []string `json:"states,omitempty" form:"states"`
	MinScore *float64 `json:"min_score,omitempty" form:"min_score"`
	Unviewed bool     `json:"unviewed,omitempty" form:"unviewed"`
	Page     int      `json:"page" form:"page"`
	PageSize int      `json:"page_size" form:"page_size"`
}

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// Domain event types
const (
	EventPostulationCreated      = "postulation.created"
	EventPostulationStateChanged = "postulation.state_changed"
)

// PostulationEvent is emitted after each committed creation or transition.
// Consumers (notification, audit log) act on it; the engine never waits on
// delivery.
type PostulationEvent struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	PostulationID int64            `json:"postulation_id"`
	VacancyID     int64            `json:"vacancy_id"`
	CandidateID   string           `json:"candidate_id"`
	FromState     PostulationState `json:"from_state,omitempty"`
	ToState       PostulationState `json:"to_state"`
	Actor         Actor            `json:"actor"`
	Timestamp     time.Time        `json:"timestamp"`
}

// EventPublisher is the one-way boundary to external collaborators.
type EventPublisher interface {
	Publish(ctx context.Context, event PostulationEvent)
}

// StateChange carries the optional payload of a transition request.
type StateChange struct {
	Target        PostulationState `json:"target_state" validate:"required"`
	Notes         string           `json:"notes,omitempty" validate:"max=2000"`
	InterviewDate *time.Time       `json:"interview_date,omitempty"`
	OutcomeNotes  *string          `json:"outcome_notes,omitempty"`
}

// PostulationRepository defines data access for postulations.
type PostulationRepository interface {
	// Create persists a new postulation; returns ErrDuplicate when a
	// non-withdrawn postulation already exists for the pair.
	Create(ctx context.Context, p *Postulation) error
	GetByID(ctx context.Context, id int64) (*Postulation, error)
	// ListByVacancy returns every postulation of a vacancy, for reranking.
	ListByVacancy(ctx context.Context, vacancyID int64) ([]Postulation, error)
	ListRanked(ctx context.Context, vacancyID int64, f PostulationFilter) ([]Postulation, int64, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]Postulation, error)
	ExistsActive(ctx context.Context, vacancyID int64, candidateID string) (bool, error)
	// UpdateState commits the transition only when the stored state still
	// matches from (compare-and-swap); returns false when the state moved
	// underneath the caller. The audit note is appended, never overwritten.
	UpdateState(ctx context.Context, id int64, from, to PostulationState, note AuditNote, change StateChange) (bool, error)
	// UpdateRanks persists a full rank assignment for one vacancy in a
	// single transaction. Postulations absent from the map keep their rank.
	UpdateRanks(ctx context.Context, vacancyID int64, ranks map[int64]int) error
	MarkViewed(ctx context.Context, id int64) error
}

// PostulationUsecase is the engine surface exposed to the HTTP boundary.
type PostulationUsecase interface {
	SubmitPostulation(ctx context.Context, actor Actor, vacancyID int64, coverLetter string) (*Postulation, error)
	ListRanked(ctx context.Context, actor Actor, vacancyID int64, f PostulationFilter) (*PaginatedResult[Postulation], error)
	ApplyTransition(ctx context.Context, actor Actor, postulationID int64, change StateChange) (*Postulation, error)
	GetMyPostulations(ctx context.Context, actor Actor) ([]Postulation, error)
	MarkViewed(ctx context.Context, actor Actor, postulationID int64) error
	ExportRanked(ctx context.Context, actor Actor, vacancyID int64, f PostulationFilter) ([]byte, string, error)
}
