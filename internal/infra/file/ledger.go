// Package file persists the completion history as one JSON document on disk,
// loaded lazily and rewritten wholesale on each upsert. Storage faults are
// logged and swallowed: the ledger is a best-effort cache, never a reason to
// block a sitting.
package file

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"exam-runner/internal/domain"
)

// Ledger is a file-backed completion history keyed by email.
type Ledger struct {
	path  string
	clock func() time.Time

	mu      sync.Mutex
	loaded  bool
	records map[string]domain.HistoryRecord
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path, clock: time.Now}
}

// NewLedgerWithClock is test-only for deterministic timestamps.
func NewLedgerWithClock(path string, now func() time.Time) *Ledger {
	l := NewLedger(path)
	l.clock = now
	return l
}

// Record upserts the completion record for the participant's email and
// rewrites the whole file.
func (l *Ledger) Record(participant domain.Participant, sessionID string, result domain.SessionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	l.records[participant.Email] = domain.HistoryRecord{
		Email:     participant.Email,
		Name:      participant.Name,
		Grade:     participant.Grade,
		SessionID: sessionID,
		Score:     result.CorrectCount,
		Total:     result.ValidCount,
		Date:      l.clock(),
	}
	l.persistLocked()
}

// HasCompleted reports whether this email already has a completion record.
// Read faults report false so a damaged file never blocks a participant.
func (l *Ledger) HasCompleted(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	_, ok := l.records[email]
	return ok
}

// Clear erases all records and removes the file.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = true
	l.records = make(map[string]domain.HistoryRecord)
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("history: clear %s: %v", l.path, err)
	}
}

// Dump exports all records sorted by email for stable output.
func (l *Ledger) Dump() []domain.HistoryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadLocked()
	out := make([]domain.HistoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func (l *Ledger) loadLocked() {
	if l.loaded {
		return
	}
	l.loaded = true
	l.records = make(map[string]domain.HistoryRecord)

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("history: read %s: %v", l.path, err)
		}
		return
	}
	var records []domain.HistoryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("history: %s is corrupt, starting empty: %v", l.path, err)
		return
	}
	for _, rec := range records {
		l.records[rec.Email] = rec
	}
}

func (l *Ledger) persistLocked() {
	records := make([]domain.HistoryRecord, 0, len(l.records))
	for _, rec := range l.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Email < records[j].Email })

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Printf("history: encode: %v", err)
		return
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("history: mkdir %s: %v", dir, err)
			return
		}
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		log.Printf("history: write %s: %v", l.path, err)
	}
}
