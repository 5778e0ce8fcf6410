package usecase

import (
	"context"
	"fmt"
	"time"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type vacancyUsecase struct {
	vacancyRepo domain.VacancyRepository
	validate    *validator.Validate
}

func NewVacancyUsecase(vacancyRepo domain.VacancyRepository, validate *validator.Validate) domain.VacancyUsecase {
	return &vacancyUsecase{
		vacancyRepo: vacancyRepo,
		validate:    validate,
	}
}

// CreateVacancy persists a new vacancy in state draft. Requirement weights
// are validated here: a missing or out-of-range weight is rejected, never
// silently defaulted.
func (uc *vacancyUsecase) CreateVacancy(ctx context.Context, actor domain.Actor, vacancy *domain.Vacancy) error {
	if actor.Role != domain.RoleCompany {
		return apperror.Forbidden("Only companies can publish vacancies")
	}

	vacancy.CompanyID = actor.ID
	vacancy.State = domain.VacancyStateDraft

	if err := uc.validate.Struct(vacancy); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if err := uc.validateRequirements(vacancy.Requirements); err != nil {
		return err
	}

	vacancy.CreatedAt = time.Now()
	vacancy.UpdatedAt = time.Now()

	if err := uc.vacancyRepo.Create(ctx, vacancy); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *vacancyUsecase) GetVacancy(ctx context.Context, id int64) (*domain.Vacancy, error) {
	vacancy, err := uc.vacancyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Vacancy not found")
	}
	return vacancy, nil
}

func (uc *vacancyUsecase) ListMyVacancies(ctx context.Context, actor domain.Actor, page, pageSize int) (*domain.PaginatedResult[domain.Vacancy], error) {
	if actor.Role != domain.RoleCompany {
		return nil, apperror.Forbidden("Only companies can list their vacancies")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := uc.vacancyRepo.ListByCompany(ctx, actor.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResult[domain.Vacancy]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ChangeState moves the vacancy through its own lifecycle (draft, open,
// paused, closed). The update is a compare-and-swap so two operators racing
// on the same vacancy cannot both win.
func (uc *vacancyUsecase) ChangeState(ctx context.Context, actor domain.Actor, vacancyID int64, target string) error {
	vacancy, err := uc.authorizeOwner(ctx, actor, vacancyID)
	if err != nil {
		return err
	}

	allowed := false
	for _, s := range domain.VacancyStateTransitions[vacancy.State] {
		if s == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperror.InvalidTransition(
			fmt.Sprintf("Cannot move vacancy from %s to %s", vacancy.State, target))
	}

	committed, err := uc.vacancyRepo.UpdateState(ctx, vacancyID, vacancy.State, target)
	if err != nil {
		return apperror.Internal(err)
	}
	if !committed {
		return apperror.Conflict("Vacancy was modified concurrently, please retry")
	}
	return nil
}

// SetRequirements replaces the vacancy's skill requirements. Allowed only
// while the vacancy is still a draft: requirements are a snapshot contract
// with every postulation scored against them.
func (uc *vacancyUsecase) SetRequirements(ctx context.Context, actor domain.Actor, vacancyID int64, reqs []domain.SkillRequirement) error {
	vacancy, err := uc.authorizeOwner(ctx, actor, vacancyID)
	if err != nil {
		return err
	}
	if vacancy.State != domain.VacancyStateDraft {
		return apperror.BadRequest("Requirements can only be changed while the vacancy is a draft")
	}
	if err := uc.validateRequirements(reqs); err != nil {
		return err
	}
	if err := uc.vacancyRepo.ReplaceRequirements(ctx, vacancyID, reqs); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *vacancyUsecase) validateRequirements(reqs []domain.SkillRequirement) error {
	seen := make(map[int64]bool, len(reqs))
	for _, r := range reqs {
		if err := uc.validate.Struct(r); err != nil {
			return apperror.BadRequest(err.Error())
		}
		// One row per (vacancy, skill) pair.
		if seen[r.SkillID] {
			return apperror.BadRequest(fmt.Sprintf("Duplicate requirement for skill %d", r.SkillID))
		}
		seen[r.SkillID] = true
	}
	return nil
}

func (uc *vacancyUsecase) authorizeOwner(ctx context.Context, actor domain.Actor, vacancyID int64) (*domain.Vacancy, error) {
	vacancy, err := uc.vacancyRepo.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, apperror.NotFound("Vacancy not found")
	}
	if actor.Role == domain.RoleAdmin {
		return vacancy, nil
	}
	if actor.Role != domain.RoleCompany || vacancy.CompanyID != actor.ID {
		return nil, apperror.Forbidden("You do not own this vacancy")
	}
	return vacancy, nil
}
