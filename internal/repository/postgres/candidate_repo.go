package postgres

import (
	"context"
	"errors"
	"time"

	"go-postulation-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type candidateRepo struct {
	db *pgxpool.Pool
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

// GetSnapshot assembles the candidate read view the scoring engine consumes:
// the profile row plus every skill.
func (r *candidateRepo) GetSnapshot(ctx context.Context, candidateID string) (*domain.CandidateSnapshot, error) {
	query := `
		SELECT user_id, full_name, email, years_of_experience, highest_education, city, department, preferred_modality, languages
		FROM candidates
		WHERE user_id = $1`

	var s domain.CandidateSnapshot
	err := r.db.QueryRow(ctx, query, candidateID).Scan(
		&s.CandidateID, &s.FullName, &s.Email, &s.YearsOfExperience,
		&s.HighestEducation, &s.City, &s.Department, &s.PreferredModality,
		pq.Array(&s.Languages),
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	skillQuery := `
		SELECT cs.skill_id, s.name, cs.proficiency_level, cs.years_of_experience, cs.certified
		FROM candidate_skills cs
		LEFT JOIN skills s ON cs.skill_id = s.id
		WHERE cs.candidate_id = $1
		ORDER BY cs.skill_id`

	rows, err := r.db.Query(ctx, skillQuery, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var skill domain.CandidateSkill
		var name *string
		if err := rows.Scan(&skill.SkillID, &name, &skill.ProficiencyLevel, &skill.YearsOfExperience, &skill.Certified); err != nil {
			return nil, err
		}
		if name != nil {
			skill.SkillName = *name
		}
		s.Skills = append(s.Skills, skill)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateProfile upserts the candidate profile row
func (r *candidateRepo) UpdateProfile(ctx context.Context, snapshot *domain.CandidateSnapshot) error {
	query := `
		INSERT INTO candidates (user_id, full_name, email, years_of_experience, highest_education, city, department, preferred_modality, languages, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			years_of_experience = EXCLUDED.years_of_experience,
			highest_education = EXCLUDED.highest_education,
			city = EXCLUDED.city,
			department = EXCLUDED.department,
			preferred_modality = EXCLUDED.preferred_modality,
			languages = EXCLUDED.languages,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		snapshot.CandidateID,
		snapshot.FullName,
		snapshot.Email,
		snapshot.YearsOfExperience,
		snapshot.HighestEducation,
		snapshot.City,
		snapshot.Department,
		snapshot.PreferredModality,
		pq.Array(snapshot.Languages),
		time.Now(),
	)
	return err
}

// UpsertSkill creates or updates one candidate skill
func (r *candidateRepo) UpsertSkill(ctx context.Context, candidateID string, skill *domain.CandidateSkill) error {
	query := `
		INSERT INTO candidate_skills (candidate_id, skill_id, proficiency_level, years_of_experience, certified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (candidate_id, skill_id) DO UPDATE SET
			proficiency_level = EXCLUDED.proficiency_level,
			years_of_experience = EXCLUDED.years_of_experience,
			certified = EXCLUDED.certified`

	_, err := r.db.Exec(ctx, query,
		candidateID, skill.SkillID, skill.ProficiencyLevel, skill.YearsOfExperience, skill.Certified)
	return err
}

// DeleteSkill removes one candidate skill
func (r *candidateRepo) DeleteSkill(ctx context.Context, candidateID string, skillID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM candidate_skills WHERE candidate_id = $1 AND skill_id = $2`,
		candidateID, skillID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
