package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"exam-runner/internal/domain"
)

type countingSource struct {
	bank  []domain.Question
	err   error
	calls int
}

func (s *countingSource) FetchQuestions(_ context.Context) ([]domain.Question, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.bank, nil
}

func TestQuestionCacheHitsWithinTTL(t *testing.T) {
	source := &countingSource{bank: []domain.Question{{ID: "q1", Text: "t"}}}
	cache := NewQuestionCache(source, time.Minute)

	if _, err := cache.FetchQuestions(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := cache.FetchQuestions(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected one source call, got %d", source.calls)
	}
}

func TestQuestionCacheRefetchesAfterExpiry(t *testing.T) {
	source := &countingSource{bank: []domain.Question{{ID: "q1", Text: "t"}}}
	cache := NewQuestionCache(source, time.Minute)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	if _, err := cache.FetchQuestions(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	now = now.Add(2 * time.Minute) // past ttl plus max jitter
	if _, err := cache.FetchQuestions(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", source.calls)
	}
}

func TestQuestionCacheDoesNotCacheErrors(t *testing.T) {
	source := &countingSource{err: errors.New("down")}
	cache := NewQuestionCache(source, time.Minute)

	if _, err := cache.FetchQuestions(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	source.err = nil
	source.bank = []domain.Question{{ID: "q1", Text: "t"}}
	bank, err := cache.FetchQuestions(context.Background())
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(bank) != 1 {
		t.Fatalf("expected bank after recovery, got %v", bank)
	}
}

func TestLedgerUpsertAndDump(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ledger := NewLedgerWithClock(func() time.Time { return now })
	participant := domain.Participant{Name: "Alice", Email: "alice@example.com", Grade: "10"}

	ledger.Record(participant, "s1", domain.SessionResult{ValidCount: 3, CorrectCount: 1})
	ledger.Record(participant, "s2", domain.SessionResult{ValidCount: 3, CorrectCount: 3})

	if !ledger.HasCompleted("alice@example.com") {
		t.Fatalf("expected completion record")
	}
	records := ledger.Dump()
	if len(records) != 1 || records[0].Score != 3 {
		t.Fatalf("expected single latest record, got %+v", records)
	}

	ledger.Clear()
	if ledger.HasCompleted("alice@example.com") {
		t.Fatalf("expected empty ledger after clear")
	}
}
