package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-postulation-backend/internal/domain"
	"go-postulation-backend/internal/matching"
	"go-postulation-backend/internal/usecase"
	"go-postulation-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories

type MockPostulationRepo struct {
	mock.Mock
}

func (m *MockPostulationRepo) Create(ctx context.Context, p *domain.Postulation) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPostulationRepo) GetByID(ctx context.Context, id int64) (*domain.Postulation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Postulation), args.Error(1)
}

func (m *MockPostulationRepo) ListByVacancy(ctx context.Context, vacancyID int64) ([]domain.Postulation, error) {
	args := m.Called(ctx, vacancyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Postulation), args.Error(1)
}

func (m *MockPostulationRepo) ListRanked(ctx context.Context, vacancyID int64, f domain.PostulationFilter) ([]domain.Postulation, int64, error) {
	args := m.Called(ctx, vacancyID, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Postulation), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostulationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Postulation, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Postulation), args.Error(1)
}

func (m *MockPostulationRepo) ExistsActive(ctx context.Context, vacancyID int64, candidateID string) (bool, error) {
	args := m.Called(ctx, vacancyID, candidateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostulationRepo) UpdateState(ctx context.Context, id int64, from, to domain.PostulationState, note domain.AuditNote, change domain.StateChange) (bool, error) {
	args := m.Called(ctx, id, from, to, note, change)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostulationRepo) UpdateRanks(ctx context.Context, vacancyID int64, ranks map[int64]int) error {
	return m.Called(ctx, vacancyID, ranks).Error(0)
}

func (m *MockPostulationRepo) MarkViewed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockVacancyRepo struct {
	mock.Mock
}

func (m *MockVacancyRepo) Create(ctx context.Context, vacancy *domain.Vacancy) error {
	return m.Called(ctx, vacancy).Error(0)
}

func (m *MockVacancyRepo) GetByID(ctx context.Context, id int64) (*domain.Vacancy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vacancy), args.Error(1)
}

func (m *MockVacancyRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.Vacancy, int64, error) {
	args := m.Called(ctx, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Vacancy), args.Get(1).(int64), args.Error(2)
}

func (m *MockVacancyRepo) UpdateState(ctx context.Context, id int64, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockVacancyRepo) ReplaceRequirements(ctx context.Context, vacancyID int64, reqs []domain.SkillRequirement) error {
	return m.Called(ctx, vacancyID, reqs).Error(0)
}

type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) GetSnapshot(ctx context.Context, candidateID string) (*domain.CandidateSnapshot, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateSnapshot), args.Error(1)
}

func (m *MockCandidateRepo) UpdateProfile(ctx context.Context, snapshot *domain.CandidateSnapshot) error {
	return m.Called(ctx, snapshot).Error(0)
}

func (m *MockCandidateRepo) UpsertSkill(ctx context.Context, candidateID string, skill *domain.CandidateSkill) error {
	return m.Called(ctx, candidateID, skill).Error(0)
}

func (m *MockCandidateRepo) DeleteSkill(ctx context.Context, candidateID string, skillID int64) error {
	return m.Called(ctx, candidateID, skillID).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.PostulationEvent) {
	m.Called(ctx, event)
}

// Fixtures

func openVacancy() *domain.Vacancy {
	return &domain.Vacancy{
		ID:               42,
		CompanyID:        "comp-1",
		Title:            "Backend Engineer",
		MinimumEducation: domain.EducationBachelor,
		City:             "Bogota",
		Department:       "Cundinamarca",
		Modality:         domain.ModalityRemote,
		State:            domain.VacancyStateOpen,
		Requirements: []domain.SkillRequirement{
			{SkillID: 1, SkillName: "Go", MinimumLevel: domain.SkillLevelIntermediate, IsMandatory: true, Weight: 50},
		},
	}
}

func candidateSnapshot() *domain.CandidateSnapshot {
	return &domain.CandidateSnapshot{
		CandidateID:       "cand-1",
		FullName:          "Maria Lopez",
		YearsOfExperience: 4,
		HighestEducation:  domain.EducationBachelor,
		City:              "Bogota",
		Department:        "Cundinamarca",
		Skills: []domain.CandidateSkill{
			{SkillID: 1, SkillName: "Go", ProficiencyLevel: domain.SkillLevelAdvanced},
		},
	}
}

func newEngine(pRepo *MockPostulationRepo, vRepo *MockVacancyRepo, cRepo *MockCandidateRepo, pub *MockPublisher) domain.PostulationUsecase {
	return usecase.NewPostulationUsecase(pRepo, vRepo, cRepo, pub, matching.DefaultConfig())
}

// Tests

func TestSubmitPostulation(t *testing.T) {
	ctx := context.Background()
	candidate := domain.Actor{ID: "cand-1", Role: domain.RoleCandidate}

	t.Run("Should create, score and rerank on the happy path", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)
		cRepo := new(MockCandidateRepo)
		pub := new(MockPublisher)

		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("ExistsActive", mock.Anything, int64(42), "cand-1").Return(false, nil)
		cRepo.On("GetSnapshot", mock.Anything, "cand-1").Return(candidateSnapshot(), nil)
		pRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Postulation")).Return(nil)
		pRepo.On("ListByVacancy", mock.Anything, int64(42)).Return([]domain.Postulation{}, nil)
		pRepo.On("UpdateRanks", mock.Anything, int64(42), mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.PostulationEvent) bool {
			return e.Type == domain.EventPostulationCreated && e.ToState == domain.StateSubmitted
		})).Return()

		uc := newEngine(pRepo, vRepo, cRepo, pub)
		p, err := uc.SubmitPostulation(ctx, candidate, 42, "I would love to join")

		require.NoError(t, err)
		assert.Equal(t, domain.StateSubmitted, p.State)
		assert.Greater(t, p.Score, 0.0)
		assert.NotEmpty(t, p.Breakdown)
		pRepo.AssertCalled(t, "UpdateRanks", mock.Anything, int64(42), mock.Anything)
		pub.AssertExpectations(t)
	})

	t.Run("Should reject non-candidates", func(t *testing.T) {
		uc := newEngine(new(MockPostulationRepo), new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))

		_, err := uc.SubmitPostulation(ctx, domain.Actor{ID: "comp-1", Role: domain.RoleCompany}, 42, "")
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("Should fail with VacancyNotOpen for a paused vacancy", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)

		v := openVacancy()
		v.State = domain.VacancyStatePaused
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(v, nil)

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.SubmitPostulation(ctx, candidate, 42, "")
		assert.True(t, apperror.IsKind(err, apperror.KindVacancyNotOpen))
	})

	t.Run("Should fail with AlreadyApplied when an active postulation exists", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)

		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("ExistsActive", mock.Anything, int64(42), "cand-1").Return(true, nil)

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.SubmitPostulation(ctx, candidate, 42, "")
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyApplied))
	})

	t.Run("Should map a duplicate-key race to AlreadyApplied", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)
		cRepo := new(MockCandidateRepo)

		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("ExistsActive", mock.Anything, int64(42), "cand-1").Return(false, nil)
		cRepo.On("GetSnapshot", mock.Anything, "cand-1").Return(candidateSnapshot(), nil)
		pRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicate)

		uc := newEngine(pRepo, vRepo, cRepo, new(MockPublisher))
		_, err := uc.SubmitPostulation(ctx, candidate, 42, "")
		assert.True(t, apperror.IsKind(err, apperror.KindAlreadyApplied))
	})

	t.Run("Should fail with MalformedSnapshot instead of guessing a score", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)
		cRepo := new(MockCandidateRepo)

		broken := candidateSnapshot()
		broken.HighestEducation = "unknown-level"

		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("ExistsActive", mock.Anything, int64(42), "cand-1").Return(false, nil)
		cRepo.On("GetSnapshot", mock.Anything, "cand-1").Return(broken, nil)

		uc := newEngine(pRepo, vRepo, cRepo, new(MockPublisher))
		_, err := uc.SubmitPostulation(ctx, candidate, 42, "")
		assert.True(t, apperror.IsKind(err, apperror.KindMalformedSnapshot))
		pRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestApplyTransition(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}
	candidate := domain.Actor{ID: "cand-1", Role: domain.RoleCandidate}

	stored := func(state domain.PostulationState) *domain.Postulation {
		return &domain.Postulation{
			ID:          7,
			VacancyID:   42,
			CandidateID: "cand-1",
			State:       state,
			Score:       80,
			SubmittedAt: time.Now(),
		}
	}

	t.Run("Company drives the forward path", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)
		pub := new(MockPublisher)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil).Once()
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("UpdateState", mock.Anything, int64(7), domain.StateSubmitted, domain.StateReviewed,
			mock.AnythingOfType("domain.AuditNote"), mock.Anything).Return(true, nil)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e domain.PostulationEvent) bool {
			return e.Type == domain.EventPostulationStateChanged &&
				e.FromState == domain.StateSubmitted && e.ToState == domain.StateReviewed
		})).Return()
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateReviewed), nil).Once()

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), pub)
		updated, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateReviewed})

		require.NoError(t, err)
		assert.Equal(t, domain.StateReviewed, updated.State)
		// submitted -> reviewed does not change the active set: no rerank.
		pRepo.AssertNotCalled(t, "UpdateRanks", mock.Anything, mock.Anything, mock.Anything)
		pub.AssertExpectations(t)
	})

	t.Run("Rejection reranks the remaining active set", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)
		pub := new(MockPublisher)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateReviewed), nil).Once()
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("UpdateState", mock.Anything, int64(7), domain.StateReviewed, domain.StateRejected,
			mock.Anything, mock.Anything).Return(true, nil)
		pRepo.On("ListByVacancy", mock.Anything, int64(42)).Return([]domain.Postulation{}, nil)
		pRepo.On("UpdateRanks", mock.Anything, int64(42), mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return()
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateRejected), nil).Once()

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), pub)
		_, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateRejected})

		require.NoError(t, err)
		pRepo.AssertCalled(t, "UpdateRanks", mock.Anything, int64(42), mock.Anything)
	})

	t.Run("Invalid transition is rejected before any write", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil)

		uc := newEngine(pRepo, new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateHired})

		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
		pRepo.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Terminal states accept no transitions", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateHired), nil)

		uc := newEngine(pRepo, new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateReviewed})

		assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	})

	t.Run("Only the owning candidate can withdraw", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil)

		uc := newEngine(pRepo, new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))

		_, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateWithdrawn})
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

		stranger := domain.Actor{ID: "cand-2", Role: domain.RoleCandidate}
		_, err = uc.ApplyTransition(ctx, stranger, 7, domain.StateChange{Target: domain.StateWithdrawn})
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("Candidate cannot drive the forward path", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil)

		uc := newEngine(pRepo, new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.ApplyTransition(ctx, candidate, 7, domain.StateChange{Target: domain.StateReviewed})

		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("Company of another vacancy cannot transition", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil)
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
		intruder := domain.Actor{ID: "comp-2", Role: domain.RoleCompany}
		_, err := uc.ApplyTransition(ctx, intruder, 7, domain.StateChange{Target: domain.StateReviewed})

		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("Lost compare-and-swap surfaces as Conflict", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil)
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("UpdateState", mock.Anything, int64(7), domain.StateSubmitted, domain.StateReviewed,
			mock.Anything, mock.Anything).Return(false, nil)

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.ApplyTransition(ctx, company, 7, domain.StateChange{Target: domain.StateReviewed})

		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})

	t.Run("Withdrawal by the owning candidate succeeds and reranks", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		pub := new(MockPublisher)

		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateSubmitted), nil).Once()
		pRepo.On("UpdateState", mock.Anything, int64(7), domain.StateSubmitted, domain.StateWithdrawn,
			mock.Anything, mock.Anything).Return(true, nil)
		pRepo.On("ListByVacancy", mock.Anything, int64(42)).Return([]domain.Postulation{}, nil)
		pRepo.On("UpdateRanks", mock.Anything, int64(42), mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return()
		pRepo.On("GetByID", mock.Anything, int64(7)).Return(stored(domain.StateWithdrawn), nil).Once()

		uc := newEngine(pRepo, new(MockVacancyRepo), new(MockCandidateRepo), pub)
		updated, err := uc.ApplyTransition(ctx, candidate, 7, domain.StateChange{Target: domain.StateWithdrawn})

		require.NoError(t, err)
		assert.Equal(t, domain.StateWithdrawn, updated.State)
		pRepo.AssertCalled(t, "UpdateRanks", mock.Anything, int64(42), mock.Anything)
	})
}

func TestListRanked(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}

	t.Run("Owning company lists with pagination defaults", func(t *testing.T) {
		pRepo := new(MockPostulationRepo)
		vRepo := new(MockVacancyRepo)

		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
		pRepo.On("ListRanked", mock.Anything, int64(42), mock.MatchedBy(func(f domain.PostulationFilter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return([]domain.Postulation{{ID: 1}}, int64(1), nil)

		uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
		result, err := uc.ListRanked(ctx, company, 42, domain.PostulationFilter{})

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Total)
		assert.Equal(t, 1, result.TotalPages)
	})

	t.Run("Candidates cannot list a vacancy's postulations", func(t *testing.T) {
		uc := newEngine(new(MockPostulationRepo), new(MockVacancyRepo), new(MockCandidateRepo), new(MockPublisher))

		_, err := uc.ListRanked(ctx, domain.Actor{ID: "cand-1", Role: domain.RoleCandidate}, 42, domain.PostulationFilter{})
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("Non-owning company is rejected", func(t *testing.T) {
		vRepo := new(MockVacancyRepo)
		vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)

		uc := newEngine(new(MockPostulationRepo), vRepo, new(MockCandidateRepo), new(MockPublisher))
		_, err := uc.ListRanked(ctx, domain.Actor{ID: "comp-2", Role: domain.RoleCompany}, 42, domain.PostulationFilter{})
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})
}

func TestExportRanked(t *testing.T) {
	ctx := context.Background()
	company := domain.Actor{ID: "comp-1", Role: domain.RoleCompany}

	pRepo := new(MockPostulationRepo)
	vRepo := new(MockVacancyRepo)

	rank := 1
	name := "Maria Lopez"
	vRepo.On("GetByID", mock.Anything, int64(42)).Return(openVacancy(), nil)
	pRepo.On("ListRanked", mock.Anything, int64(42), mock.Anything).Return([]domain.Postulation{
		{ID: 1, Rank: &rank, CandidateName: &name, Score: 88.5, State: domain.StateShortlisted, SubmittedAt: time.Now(), ViewedByCompany: true},
	}, int64(1), nil)

	uc := newEngine(pRepo, vRepo, new(MockCandidateRepo), new(MockPublisher))
	data, filename, err := uc.ExportRanked(ctx, company, 42, domain.PostulationFilter{})

	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, "postulations_vacancy_42_")
	assert.Contains(t, filename, ".xlsx")
}
