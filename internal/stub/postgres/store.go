// Package postgres backs the stub endpoint with Postgres so submissions
// survive restarts and integration tests can exercise the full path.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"exam-runner/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Store persists the question bank and submissions as JSONB rows.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Questions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM exam_questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) HasSubmission(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_submissions WHERE email=$1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return exists, nil
}

func (s *Store) SaveSubmission(ctx context.Context, participant domain.Participant, answers []domain.AnswerRecord) error {
	payload, err := json.Marshal(struct {
		StudentData domain.Participant    `json:"studentData"`
		Answers     []domain.AnswerRecord `json:"answers"`
	}{participant, answers})
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO exam_submissions (email, data, submitted_at)
		VALUES ($1, $2, now())
		ON CONFLICT (email) DO UPDATE SET data = EXCLUDED.data, submitted_at = now()`,
		participant.Email, payload)
	if err != nil {
		return fmt.Errorf("save submission: %w", err)
	}
	return nil
}

// SeedQuestions replaces the stored bank, used by tooling and tests.
func (s *Store) SeedQuestions(ctx context.Context, bank []domain.Question) error {
	for _, q := range bank {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO exam_questions (id, data)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
			q.ID, data)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
