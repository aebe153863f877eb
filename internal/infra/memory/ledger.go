package memory

import (
	"sort"
	"sync"
	"time"

	"exam-runner/internal/domain"
)

// Ledger is an in-memory completion history, useful for tests and for runs
// where no persistence was configured.
type Ledger struct {
	clock   func() time.Time
	mu      sync.RWMutex
	records map[string]domain.HistoryRecord
}

func NewLedger() *Ledger {
	return &Ledger{
		clock:   time.Now,
		records: make(map[string]domain.HistoryRecord),
	}
}

// NewLedgerWithClock is test-only for deterministic timestamps.
func NewLedgerWithClock(now func() time.Time) *Ledger {
	l := NewLedger()
	l.clock = now
	return l
}

// Record upserts the completion record for the participant's email.
func (l *Ledger) Record(participant domain.Participant, sessionID string, result domain.SessionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[participant.Email] = domain.HistoryRecord{
		Email:     participant.Email,
		Name:      participant.Name,
		Grade:     participant.Grade,
		SessionID: sessionID,
		Score:     result.CorrectCount,
		Total:     result.ValidCount,
		Date:      l.clock(),
	}
}

// HasCompleted reports whether this email already has a completion record.
func (l *Ledger) HasCompleted(email string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.records[email]
	return ok
}

// Clear erases all records.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]domain.HistoryRecord)
}

// Dump exports all records sorted by email for stable output.
func (l *Ledger) Dump() []domain.HistoryRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.HistoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
