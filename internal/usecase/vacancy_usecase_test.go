package usecase_test

import (
	"context"
	"testing"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/usecase"
	"go-postulation-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validVacancy() *domain.Vacancy {
	return &domain.Vacancy{
		Title:            "Backend Engineer",
		MinimumEducation: domain.EducationBachelor,
		City:             "Bogota",
		Department:       "Cundinamarca",
		Modality:         domain.ModalityRemote,
		Requirements: []domain.SkillRequirement{
			{SkillID: 1, MinimumLevel: domain.SkillLevelIntermediate, IsMandatory: true, Weight: 50},
		},
	}
}

func TestCreateVacancy(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}

	t.Run("Should create in draft state with the actor as owner", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Vacancy")).Return(nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		v := validVacancy()
		v.CompanyID = "spoofed-owner"
		v.State = domain.VacancyStateOpen

		err := uc.CreateVacancy(ctx, company, v)
		require.NoError(t, err)
		assert.Equal(t, "comp-1", v.CompanyID)
		assert.Equal(t, domain.VacancyStateDraft, v.State)
	})

	t.Run("Should reject candidates", func(t *testing.T) {
		uc := usecase.NewVacancyUsecase(new(MockVacancyRepo), validator.New())

		err := uc.CreateVacancy(ctx, domain.Actor{ID: "cand-1", Role: domain.RoleCandidate}, validVacancy())
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("Should reject a requirement without a weight", func(t *testing.T) {
		uc := usecase.NewVacancyUsecase(new(MockVacancyRepo), validator.New())

		v := validVacancy()
		v.Requirements[0].Weight = 0
		err := uc.CreateVacancy(ctx, company, v)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("Should reject duplicate skill requirements", func(t *testing.T) {
		uc := usecase.NewVacancyUsecase(new(MockVacancyRepo), validator.New())

		v := validVacancy()
		v.Requirements = append(v.Requirements, v.Requirements[0])
		err := uc.CreateVacancy(ctx, company, v)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestVacancyChangeState(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}

	stored := func(state string) *domain.Vacancy {
		v := validVacancy()
		v.ID = 42
		v.CompanyID = "comp-1"
		v.State = state
		return v
	}

	t.Run("Draft opens", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(stored(domain.VacancyStateDraft), nil)
		mockRepo.On("UpdateState", mock.Anything, int64(42), domain.VacancyStateDraft, domain.VacancyStateOpen).Return(true, nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		require.NoError(t, uc.ChangeState(ctx, company, 42, domain.VacancyStateOpen))
	})

	t.Run("Closed is terminal", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(stored(domain.VacancyStateClosed), nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		err := uc.ChangeState(ctx, company, 42, domain.VacancyStateOpen)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("Losing the compare-and-swap is a Conflict", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(stored(domain.VacancyStateOpen), nil)
		mockRepo.On("UpdateState", mock.Anything, int64(42), domain.VacancyStateOpen, domain.VacancyStateClosed).Return(false, nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		err := uc.ChangeState(ctx, company, 42, domain.VacancyStateClosed)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})

	t.Run("Non-owner is rejected", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(stored(domain.VacancyStateDraft), nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		err := uc.ChangeState(ctx, domain.Actor{ID: "comp-2", Role: domain.RoleCompany}, 42, domain.VacancyStateOpen)
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})
}

func TestSetRequirements(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}

	t.Run("Allowed while draft", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		v := validVacancy()
		v.ID = 42
		v.CompanyID = "comp-1"
		v.State = domain.VacancyStateDraft
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(v, nil)
		mockRepo.On("ReplaceRequirements", mock.Anything, int64(42), mock.Anything).Return(nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		err := uc.SetRequirements(ctx, company, 42, []domain.SkillRequirement{
			{SkillID: 2, MinimumLevel: domain.SkillLevelAdvanced, Weight: 30},
		})
		require.NoError(t, err)
	})

	t.Run("Rejected once the vacancy is open", func(t *testing.T) {
		mockRepo := new(MockVacancyRepo)
		v := validVacancy()
		v.ID = 42
		v.CompanyID = "comp-1"
		v.State = domain.VacancyStateOpen
		mockRepo.On("GetByID", mock.Anything, int64(42)).Return(v, nil)

		uc := usecase.NewVacancyUsecase(mockRepo, validator.New())
		err := uc.SetRequirements(ctx, company, 42, nil)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		mockRepo.AssertNotCalled(t, "ReplaceRequirements", mock.Anything, mock.Anything, mock.Anything)
	})
}
