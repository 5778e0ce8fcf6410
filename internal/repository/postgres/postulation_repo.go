package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-postulation-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type postulationRepo struct {
	db *pgxpool.Pool
}

// NewPostulationRepository creates a new postulation repository
func NewPostulationRepository(db *pgxpool.Pool) domain.PostulationRepository {
	return &postulationRepo{db: db}
}

// Create inserts a new postulation. The table carries a partial unique index
// on (vacancy_id, candidate_id) excluding withdrawn rows; a violation is
// surfaced as domain.ErrDuplicate.
func (r *postulationRepo) Create(ctx context.Context, p *domain.Postulation) error {
	breakdown, err := json.Marshal(p.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	now := time.Now()
	p.SubmittedAt = now
	p.LastUpdatedAt = now
	if p.State == "" {
		p.State = domain.StateSubmitted
	}

	query := `
		INSERT INTO postulations (vacancy_id, candidate_id, state, score, score_breakdown, cover_letter, viewed_by_company, audit_trail, submitted_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, '[]'::jsonb, $7, $8)
		RETURNING id`

	err = r.db.QueryRow(ctx, query,
		p.VacancyID,
		p.CandidateID,
		p.State,
		p.Score,
		breakdown,
		p.CoverLetter,
		p.SubmittedAt,
		p.LastUpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}

const postulationColumns = `
	p.id, p.vacancy_id, p.candidate_id, p.state, p.score, p.score_breakdown,
	p.rank, p.cover_letter, p.interview_date, p.outcome_notes,
	p.viewed_by_company, p.audit_trail, p.submitted_at, p.last_updated_at`

func scanPostulation(row pgx.Row) (*domain.Postulation, error) {
	var p domain.Postulation
	var breakdown, auditTrail []byte

	err := row.Scan(
		&p.ID, &p.VacancyID, &p.CandidateID, &p.State, &p.Score, &breakdown,
		&p.Rank, &p.CoverLetter, &p.InterviewDate, &p.OutcomeNotes,
		&p.ViewedByCompany, &auditTrail, &p.SubmittedAt, &p.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	if len(auditTrail) > 0 {
		if err := json.Unmarshal(auditTrail, &p.AuditTrail); err != nil {
			return nil, fmt.Errorf("unmarshal audit trail: %w", err)
		}
	}
	return &p, nil
}

// GetByID retrieves a postulation by ID
func (r *postulationRepo) GetByID(ctx context.Context, id int64) (*domain.Postulation, error) {
	query := `SELECT ` + postulationColumns + ` FROM postulations p WHERE p.id = $1`
	p, err := scanPostulation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListByVacancy returns every postulation of a vacancy, for reranking.
func (r *postulationRepo) ListByVacancy(ctx context.Context, vacancyID int64) ([]domain.Postulation, error) {
	query := `SELECT ` + postulationColumns + ` FROM postulations p WHERE p.vacancy_id = $1 ORDER BY p.id`

	rows, err := r.db.Query(ctx, query, vacancyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postulations []domain.Postulation
	for rows.Next() {
		p, err := scanPostulation(rows)
		if err != nil {
			return nil, err
		}
		postulations = append(postulations, *p)
	}
	return postulations, rows.Err()
}

// ListRanked returns a filtered page of a vacancy's postulations ordered by
// rank ascending, with the candidate name joined for list responses.
func (r *postulationRepo) ListRanked(ctx context.Context, vacancyID int64, f domain.PostulationFilter) ([]domain.Postulation, int64, error) {
	var sb strings.Builder
	args := []interface{}{vacancyID}
	sb.WriteString(` FROM postulations p
		LEFT JOIN candidates c ON p.candidate_id = c.user_id
		WHERE p.vacancy_id = $1`)

	if len(f.States) > 0 {
		args = append(args, pq.Array(f.States))
		fmt.Fprintf(&sb, " AND p.state = ANY($%d)", len(args))
	}
	if f.MinScore != nil {
		args = append(args, *f.MinScore)
		fmt.Fprintf(&sb, " AND p.score >= $%d", len(args))
	}
	if f.Unviewed {
		sb.WriteString(" AND p.viewed_by_company = false")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+sb.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sb.WriteString(" ORDER BY p.rank ASC NULLS LAST, p.score DESC, p.submitted_at ASC")
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	query := `SELECT ` + postulationColumns + `, c.full_name` + sb.String()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var postulations []domain.Postulation
	for rows.Next() {
		var p domain.Postulation
		var breakdown, auditTrail []byte
		if err := rows.Scan(
			&p.ID, &p.VacancyID, &p.CandidateID, &p.State, &p.Score, &breakdown,
			&p.Rank, &p.CoverLetter, &p.InterviewDate, &p.OutcomeNotes,
			&p.ViewedByCompany, &auditTrail, &p.SubmittedAt, &p.LastUpdatedAt,
			&p.CandidateName,
		); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
			return nil, 0, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		if len(auditTrail) > 0 {
			if err := json.Unmarshal(auditTrail, &p.AuditTrail); err != nil {
				return nil, 0, fmt.Errorf("unmarshal audit trail: %w", err)
			}
		}
		postulations = append(postulations, p)
	}
	return postulations, total, rows.Err()
}

// ListByCandidate returns all postulations of a candidate with vacancy titles
func (r *postulationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Postulation, error) {
	query := `SELECT ` + postulationColumns + `, v.title
		FROM postulations p
		LEFT JOIN vacancies v ON p.vacancy_id = v.id
		WHERE p.candidate_id = $1
		ORDER BY p.submitted_at DESC`

	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var postulations []domain.Postulation
	for rows.Next() {
		var p domain.Postulation
		var breakdown, auditTrail []byte
		if err := rows.Scan(
			&p.ID, &p.VacancyID, &p.CandidateID, &p.State, &p.Score, &breakdown,
			&p.Rank, &p.CoverLetter, &p.InterviewDate, &p.OutcomeNotes,
			&p.ViewedByCompany, &auditTrail, &p.SubmittedAt, &p.LastUpdatedAt,
			&p.VacancyTitle,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(breakdown, &p.Breakdown); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		if len(auditTrail) > 0 {
			if err := json.Unmarshal(auditTrail, &p.AuditTrail); err != nil {
				return nil, fmt.Errorf("unmarshal audit trail: %w", err)
			}
		}
		postulations = append(postulations, p)
	}
	return postulations, rows.Err()
}

// ExistsActive checks whether a non-withdrawn postulation already exists for
// the (vacancy, candidate) pair.
func (r *postulationRepo) ExistsActive(ctx context.Context, vacancyID int64, candidateID string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM postulations
		WHERE vacancy_id = $1 AND candidate_id = $2 AND state <> 'withdrawn')`
	var exists bool
	err := r.db.QueryRow(ctx, query, vacancyID, candidateID).Scan(&exists)
	return exists, err
}

// UpdateState commits a transition with a compare-and-swap on the current
// state and appends the audit note to the append-only trail. Returns false
// when the stored state no longer matches the expected one.
func (r *postulationRepo) UpdateState(ctx context.Context, id int64, from, to domain.PostulationState, note domain.AuditNote, change domain.StateChange) (bool, error) {
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return false, fmt.Errorf("marshal audit note: %w", err)
	}

	query := `
		UPDATE postulations
		SET state = $3,
		    audit_trail = audit_trail || $4::jsonb,
		    interview_date = COALESCE($5, interview_date),
		    outcome_notes = COALESCE($6, outcome_notes),
		    last_updated_at = $7
		WHERE id = $1 AND state = $2`

	result, err := r.db.Exec(ctx, query, id, from, to, noteJSON, change.InterviewDate, change.OutcomeNotes, time.Now())
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// UpdateRanks persists a full rank assignment for one vacancy in a single
// transaction. Postulations absent from the map keep their last rank as a
// historical artifact.
func (r *postulationRepo) UpdateRanks(ctx context.Context, vacancyID int64, ranks map[int64]int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for id, rank := range ranks {
		batch.Queue(`UPDATE postulations SET rank = $2 WHERE id = $1 AND vacancy_id = $3`, id, rank, vacancyID)
	}

	results := tx.SendBatch(ctx, batch)
	for range ranks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MarkViewed flags a postulation as opened by the company
func (r *postulationRepo) MarkViewed(ctx context.Context, id int64) error {
	query := `UPDATE postulations SET viewed_by_company = true, last_updated_at = $2 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
