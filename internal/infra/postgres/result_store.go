package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizshare/internal/domain"
)

// ResultStore persists submitted results; answers are kept as a JSONB array.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

const resultColumns = `id, quiz_id, user_name, answers, score, total_questions, time_elapsed, submitted_at`

func (s *ResultStore) CreateResult(ctx context.Context, result domain.Result) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_results (`+resultColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, result.QuizID, result.UserName, string(answers),
		result.Score, result.TotalQuestions, result.TimeElapsed, result.SubmittedAt)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) ListResults(ctx context.Context, quizID string) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM quiz_results WHERE quiz_id=$1 ORDER BY submitted_at, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collectResults(rows)
}

func (s *ResultStore) ListAllResults(ctx context.Context) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM quiz_results ORDER BY submitted_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return collectResults(rows)
}

func collectResults(rows pgx.Rows) ([]domain.Result, error) {
	defer rows.Close()
	var results []domain.Result
	for rows.Next() {
		var (
			r   domain.Result
			raw []byte
		)
		if err := rows.Scan(&r.ID, &r.QuizID, &r.UserName, &raw, &r.Score, &r.TotalQuestions, &r.TimeElapsed, &r.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(raw, &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		r.SubmittedAt = r.SubmittedAt.UTC()
		results = append(results, r)
	}
	return results, rows.Err()
}
