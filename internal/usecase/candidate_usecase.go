package usecase

import (
	"context"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type candidateUsecase struct {
	candidateRepo domain.CandidateRepository
	validate      *validator.Validate
}

func NewCandidateUsecase(candidateRepo domain.CandidateRepository, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{
		candidateRepo: candidateRepo,
		validate:      validate,
	}
}

func (uc *candidateUsecase) GetProfile(ctx context.Context, actor domain.Actor) (*domain.CandidateSnapshot, error) {
	if actor.Role != domain.RoleCandidate || actor.ID == "" {
		return nil, apperror.Forbidden("You can only view your own profile")
	}
	snapshot, err := uc.candidateRepo.GetSnapshot(ctx, actor.ID)
	if err != nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return snapshot, nil
}

func (uc *candidateUsecase) UpdateProfile(ctx context.Context, actor domain.Actor, snapshot *domain.CandidateSnapshot) error {
	if actor.Role != domain.RoleCandidate || actor.ID == "" {
		return apperror.Forbidden("You can only update your own profile")
	}

	// Identity always comes from the authenticated actor, never the payload.
	snapshot.CandidateID = actor.ID

	if _, err := domain.ParseEducationLevel(string(snapshot.HighestEducation)); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if snapshot.YearsOfExperience < 0 {
		return apperror.BadRequest("years_of_experience cannot be negative")
	}

	if err := uc.candidateRepo.UpdateProfile(ctx, snapshot); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *candidateUsecase) UpsertSkill(ctx context.Context, actor domain.Actor, skill *domain.CandidateSkill) error {
	if actor.Role != domain.RoleCandidate || actor.ID == "" {
		return apperror.Forbidden("You can only modify your own skills")
	}
	if err := uc.validate.Struct(skill); err != nil {
		return apperror.BadRequest(err.Error())
	}
	if err := uc.candidateRepo.UpsertSkill(ctx, actor.ID, skill); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (uc *candidateUsecase) RemoveSkill(ctx context.Context, actor domain.Actor, skillID int64) error {
	if actor.Role != domain.RoleCandidate || actor.ID == "" {
		return apperror.Forbidden("You can only modify your own skills")
	}
	if err := uc.candidateRepo.DeleteSkill(ctx, actor.ID, skillID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
