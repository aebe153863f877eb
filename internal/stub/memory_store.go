package stub

import (
	"context"
	"sync"
	"time"

	"exam-runner/internal/domain"
)

// MemoryStore is the default backing store for the stub endpoint: a fixed
// question bank and submissions kept in a map (last submission per email wins).
type MemoryStore struct {
	mu          sync.RWMutex
	bank        []domain.Question
	submissions map[string]Submission
}

// Submission is one saved result set.
type Submission struct {
	Participant domain.Participant
	Answers     []domain.AnswerRecord
	SubmittedAt time.Time
}

func NewMemoryStore(bank []domain.Question) *MemoryStore {
	return &MemoryStore{
		bank:        bank,
		submissions: make(map[string]Submission),
	}
}

func (s *MemoryStore) Questions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.bank))
	copy(out, s.bank)
	return out, nil
}

func (s *MemoryStore) HasSubmission(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.submissions[email]
	return ok, nil
}

func (s *MemoryStore) SaveSubmission(_ context.Context, participant domain.Participant, answers []domain.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[participant.Email] = Submission{
		Participant: participant,
		Answers:     answers,
		SubmittedAt: time.Now(),
	}
	return nil
}

// Submission returns the stored submission for an email, for tests.
func (s *MemoryStore) Submission(email string) (Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[email]
	return sub, ok
}
