package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/matching"
	"go-postulation-backend/pkg/apperror"
	"go-postulation-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type postulationUsecase struct {
	postulationRepo domain.PostulationRepository
	vacancyRepo     domain.VacancyRepository
	candidateRepo   domain.CandidateRepository
	events          domain.EventPublisher
	scoring         matching.Config

	// vacancyLocks serializes create+rerank and transition+rerank per
	// vacancy. Different vacancies proceed fully in parallel.
	vacancyLocks sync.Map // int64 -> *sync.Mutex
}

// NewPostulationUsecase creates the postulation engine usecase
func NewPostulationUsecase(
	postulationRepo domain.PostulationRepository,
	vacancyRepo domain.VacancyRepository,
	candidateRepo domain.CandidateRepository,
	events domain.EventPublisher,
	scoring matching.Config,
) domain.PostulationUsecase {
	return &postulationUsecase{
		postulationRepo: postulationRepo,
		vacancyRepo:     vacancyRepo,
		candidateRepo:   candidateRepo,
		events:          events,
		scoring:         scoring,
	}
}

func (uc *postulationUsecase) lockVacancy(vacancyID int64) func() {
	v, _ := uc.vacancyLocks.LoadOrStore(vacancyID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// SubmitPostulation scores the candidate against the vacancy and creates the
// postulation in state submitted. A postulation is never created with a blank
// score: scoring either fully succeeds or nothing is persisted.
func (uc *postulationUsecase) SubmitPostulation(ctx context.Context, actor domain.Actor, vacancyID int64, coverLetter string) (*domain.Postulation, error) {
	// 1. Only candidates submit, and the engine must be able to attribute
	// the action.
	if actor.ID == "" || actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can apply to vacancies")
	}

	// 2. Uniqueness check, creation and rerank form one atomic unit per
	// vacancy.
	unlock := uc.lockVacancy(vacancyID)
	defer unlock()

	// 3. Validate vacancy exists and accepts postulations
	vacancy, err := uc.vacancyRepo.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, apperror.NotFound("Vacancy not found")
	}
	if vacancy.State != domain.VacancyStateOpen {
		return nil, apperror.VacancyNotOpen("Vacancy is not accepting applications")
	}

	// 4. Check for duplicate postulation (withdrawn ones do not count)
	exists, err := uc.postulationRepo.ExistsActive(ctx, vacancyID, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, apperror.AlreadyApplied("You have already applied to this vacancy")
	}

	// 5. Assemble the candidate snapshot and score it
	candidate, err := uc.candidateRepo.GetSnapshot(ctx, actor.ID)
	if err != nil {
		return nil, apperror.NotFound("Complete your profile before applying")
	}

	result, err := matching.Score(candidate, vacancy, uc.scoring)
	if err != nil {
		if errors.Is(err, matching.ErrMalformedSnapshot) {
			return nil, apperror.MalformedSnapshot(err.Error(), err)
		}
		return nil, apperror.Internal(err)
	}

	var coverLetterPtr *string
	if coverLetter != "" {
		coverLetterPtr = &coverLetter
	}

	postulation := &domain.Postulation{
		VacancyID:   vacancyID,
		CandidateID: actor.ID,
		State:       domain.StateSubmitted,
		Score:       result.Score,
		Breakdown:   result.Breakdown,
		CoverLetter: coverLetterPtr,
	}

	// 6. Persist. The partial unique index backs the in-process lock for
	// submissions racing across instances.
	if err := uc.postulationRepo.Create(ctx, postulation); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.AlreadyApplied("You have already applied to this vacancy")
		}
		return nil, apperror.Internal(err)
	}

	// 7. Recompute ranks for the vacancy's active set
	if err := uc.rerank(ctx, vacancyID); err != nil {
		logger.Log.Error("rerank after creation failed", "vacancy_id", vacancyID, "error", err)
	}

	uc.events.Publish(ctx, domain.PostulationEvent{
		ID:            uuid.NewString(),
		Type:          domain.EventPostulationCreated,
		PostulationID: postulation.ID,
		VacancyID:     vacancyID,
		CandidateID:   actor.ID,
		ToState:       domain.StateSubmitted,
		Actor:         actor,
		Timestamp:     time.Now(),
	})

	return postulation, nil
}

// rerank recomputes and persists the full rank assignment of one vacancy.
// Callers must hold the vacancy lock.
func (uc *postulationUsecase) rerank(ctx context.Context, vacancyID int64) error {
	postulations, err := uc.postulationRepo.ListByVacancy(ctx, vacancyID)
	if err != nil {
		return err
	}
	ranks := matching.Rank(postulations)
	return uc.postulationRepo.UpdateRanks(ctx, vacancyID, ranks)
}

// ApplyTransition validates and commits one state transition under the FSM
// guards, appends the audit note and reranks when the active set changed.
func (uc *postulationUsecase) ApplyTransition(ctx context.Context, actor domain.Actor, postulationID int64, change domain.StateChange) (*domain.Postulation, error) {
	if actor.ID == "" {
		return nil, apperror.Unauthorized("Transition cannot be attributed to an actor")
	}

	postulation, err := uc.postulationRepo.GetByID(ctx, postulationID)
	if err != nil {
		return nil, apperror.NotFound("Postulation not found")
	}

	target := change.Target
	if !matching.CanTransition(postulation.State, target) {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("Cannot transition from %s to %s", postulation.State, target))
	}

	// Guard: withdrawal belongs to the owning candidate, everything else
	// to the owning company.
	switch matching.RequiredRole(target) {
	case domain.RoleCandidate:
		if actor.Role != domain.RoleCandidate || actor.ID != postulation.CandidateID {
			return nil, apperror.Unauthorized("Only the owning candidate can withdraw this postulation")
		}
	case domain.RoleCompany:
		if actor.Role != domain.RoleCompany && actor.Role != domain.RoleAdmin {
			return nil, apperror.Unauthorized("Only the owning company can drive this transition")
		}
		vacancy, err := uc.vacancyRepo.GetByID(ctx, postulation.VacancyID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if actor.Role == domain.RoleCompany && vacancy.CompanyID != actor.ID {
			return nil, apperror.Unauthorized("Only the owning company can drive this transition")
		}
	}

	note := domain.AuditNote{
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		FromState: postulation.State,
		ToState:   target,
		Note:      change.Notes,
		CreatedAt: time.Now(),
	}

	// Transitions that change active-set membership commit under the
	// vacancy lock so the subsequent rerank observes a settled set.
	membershipChanged := matching.IsActive(postulation.State) != matching.IsActive(target)
	if membershipChanged {
		unlock := uc.lockVacancy(postulation.VacancyID)
		defer unlock()
	}

	// Compare-and-swap on the state read above; losing the race is
	// retryable by the caller.
	committed, err := uc.postulationRepo.UpdateState(ctx, postulationID, postulation.State, target, note, change)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !committed {
		return nil, apperror.Conflict("Postulation was modified concurrently, please retry")
	}

	if membershipChanged {
		if err := uc.rerank(ctx, postulation.VacancyID); err != nil {
			logger.Log.Error("rerank after transition failed",
				"vacancy_id", postulation.VacancyID, "error", err)
		}
	}

	uc.events.Publish(ctx, domain.PostulationEvent{
		ID:            uuid.NewString(),
		Type:          domain.EventPostulationStateChanged,
		PostulationID: postulationID,
		VacancyID:     postulation.VacancyID,
		CandidateID:   postulation.CandidateID,
		FromState:     postulation.State,
		ToState:       target,
		Actor:         actor,
		Timestamp:     time.Now(),
	})

	updated, err := uc.postulationRepo.GetByID(ctx, postulationID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return updated, nil
}

// ListRanked returns the vacancy's postulations ordered by rank ascending.
func (uc *postulationUsecase) ListRanked(ctx context.Context, actor domain.Actor, vacancyID int64, f domain.PostulationFilter) (*domain.PaginatedResult[domain.Postulation], error) {
	if err := uc.authorizeVacancyOwner(ctx, actor, vacancyID); err != nil {
		return nil, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	items, total, err := uc.postulationRepo.ListRanked(ctx, vacancyID, f)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	totalPages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return &domain.PaginatedResult[domain.Postulation]{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetMyPostulations returns all postulations of the current candidate.
func (uc *postulationUsecase) GetMyPostulations(ctx context.Context, actor domain.Actor) ([]domain.Postulation, error) {
	if actor.Role != domain.RoleCandidate {
		return nil, apperror.Forbidden("Only candidates can list their postulations")
	}
	postulations, err := uc.postulationRepo.ListByCandidate(ctx, actor.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return postulations, nil
}

// MarkViewed records that the owning company opened the postulation.
func (uc *postulationUsecase) MarkViewed(ctx context.Context, actor domain.Actor, postulationID int64) error {
	postulation, err := uc.postulationRepo.GetByID(ctx, postulationID)
	if err != nil {
		return apperror.NotFound("Postulation not found")
	}
	if err := uc.authorizeVacancyOwner(ctx, actor, postulation.VacancyID); err != nil {
		return err
	}
	if err := uc.postulationRepo.MarkViewed(ctx, postulationID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// exportColumns is the fixed column order of the ranked-list export.
var exportColumns = []string{"RANK", "CANDIDATE", "SCORE", "STATE", "SUBMITTED AT", "VIEWED"}

// ExportRanked generates an XLSX file with the vacancy's ranked postulations.
func (uc *postulationUsecase) ExportRanked(ctx context.Context, actor domain.Actor, vacancyID int64, f domain.PostulationFilter) ([]byte, string, error) {
	f.Page = 1
	f.PageSize = 100

	page, err := uc.ListRanked(ctx, actor, vacancyID, f)
	if err != nil {
		return nil, "", err
	}

	xlsx := excelize.NewFile()
	sheetName := "Postulations"
	xlsx.SetSheetName("Sheet1", sheetName)

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		xlsx.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := xlsx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	_ = xlsx.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, p := range page.Items {
		rank := ""
		if p.Rank != nil {
			rank = fmt.Sprintf("%d", *p.Rank)
		}
		name := p.CandidateID
		if p.CandidateName != nil {
			name = *p.CandidateName
		}
		viewed := "no"
		if p.ViewedByCompany {
			viewed = "yes"
		}
		values := []interface{}{
			rank,
			name,
			p.Score,
			string(p.State),
			p.SubmittedAt.Format(time.RFC3339),
			viewed,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			xlsx.SetCellValue(sheetName, cell, v)
		}
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	filename := fmt.Sprintf("postulations_vacancy_%d_%s.xlsx", vacancyID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// authorizeVacancyOwner allows the owning company or an admin.
func (uc *postulationUsecase) authorizeVacancyOwner(ctx context.Context, actor domain.Actor, vacancyID int64) error {
	if actor.Role != domain.RoleCompany && actor.Role != domain.RoleAdmin {
		return apperror.Forbidden("Only companies can access a vacancy's postulations")
	}
	vacancy, err := uc.vacancyRepo.GetByID(ctx, vacancyID)
	if err != nil {
		return apperror.NotFound("Vacancy not found")
	}
	if actor.Role == domain.RoleCompany && vacancy.CompanyID != actor.ID {
		return apperror.Forbidden("You do not own this vacancy")
	}
	return nil
}
