package postgres

import (
	"context"
	"errors"
	"time"

	"go-postulation-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vacancyRepo struct {
	db *pgxpool.Pool
}

// NewVacancyRepository creates a new vacancy repository
func NewVacancyRepository(db *pgxpool.Pool) domain.VacancyRepository {
	return &vacancyRepo{db: db}
}

// Create inserts the vacancy and its skill requirements in one transaction
func (r *vacancyRepo) Create(ctx context.Context, vacancy *domain.Vacancy) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO vacancies (company_id, title, description, required_experience_years, minimum_education, city, department, modality, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		vacancy.CompanyID,
		vacancy.Title,
		vacancy.Description,
		vacancy.RequiredExperienceYears,
		vacancy.MinimumEducation,
		vacancy.City,
		vacancy.Department,
		vacancy.Modality,
		vacancy.State,
		vacancy.CreatedAt,
		vacancy.UpdatedAt,
	).Scan(&vacancy.ID)
	if err != nil {
		return err
	}

	if err := insertRequirements(ctx, tx, vacancy.ID, vacancy.Requirements); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertRequirements(ctx context.Context, tx pgx.Tx, vacancyID int64, reqs []domain.SkillRequirement) error {
	if len(reqs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, req := range reqs {
		batch.Queue(`
			INSERT INTO vacancy_skill_requirements (vacancy_id, skill_id, minimum_level, is_mandatory, weight)
			VALUES ($1, $2, $3, $4, $5)`,
			vacancyID, req.SkillID, req.MinimumLevel, req.IsMandatory, req.Weight)
	}
	results := tx.SendBatch(ctx, batch)
	for range reqs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}

// GetByID loads the vacancy together with its skill requirements, forming
// the snapshot the scoring engine consumes.
func (r *vacancyRepo) GetByID(ctx context.Context, id int64) (*domain.Vacancy, error) {
	query := `
		SELECT id, company_id, title, description, required_experience_years, minimum_education, city, department, modality, state, created_at, updated_at
		FROM vacancies
		WHERE id = $1`

	var v domain.Vacancy
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.CompanyID, &v.Title, &v.Description, &v.RequiredExperienceYears,
		&v.MinimumEducation, &v.City, &v.Department, &v.Modality, &v.State,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	reqQuery := `
		SELECT r.skill_id, s.name, r.minimum_level, r.is_mandatory, r.weight
		FROM vacancy_skill_requirements r
		LEFT JOIN skills s ON r.skill_id = s.id
		WHERE r.vacancy_id = $1
		ORDER BY r.skill_id`

	rows, err := r.db.Query(ctx, reqQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var req domain.SkillRequirement
		var name *string
		if err := rows.Scan(&req.SkillID, &name, &req.MinimumLevel, &req.IsMandatory, &req.Weight); err != nil {
			return nil, err
		}
		if name != nil {
			req.SkillName = *name
		}
		v.Requirements = append(v.Requirements, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByCompany returns a page of the company's vacancies
func (r *vacancyRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.Vacancy, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vacancies WHERE company_id = $1`, companyID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, company_id, title, description, required_experience_years, minimum_education, city, department, modality, state, created_at, updated_at
		FROM vacancies
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vacancies []domain.Vacancy
	for rows.Next() {
		var v domain.Vacancy
		if err := rows.Scan(
			&v.ID, &v.CompanyID, &v.Title, &v.Description, &v.RequiredExperienceYears,
			&v.MinimumEducation, &v.City, &v.Department, &v.Modality, &v.State,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		vacancies = append(vacancies, v)
	}
	return vacancies, total, rows.Err()
}

// UpdateState applies the state change only when the stored state still
// matches from; returns false on a lost race.
func (r *vacancyRepo) UpdateState(ctx context.Context, id int64, from, to string) (bool, error) {
	query := `UPDATE vacancies SET state = $3, updated_at = $4 WHERE id = $1 AND state = $2`
	result, err := r.db.Exec(ctx, query, id, from, to, time.Now())
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// ReplaceRequirements swaps the full requirement set atomically
func (r *vacancyRepo) ReplaceRequirements(ctx context.Context, vacancyID int64, reqs []domain.SkillRequirement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM vacancy_skill_requirements WHERE vacancy_id = $1`, vacancyID); err != nil {
		return err
	}
	if err := insertRequirements(ctx, tx, vacancyID, reqs); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE vacancies SET updated_at = $2 WHERE id = $1`, vacancyID, time.Now()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
