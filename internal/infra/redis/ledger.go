// Package redis keeps the completion history in a Redis hash so multiple exam
// stations can share one duplicate-guard. Same best-effort semantics as the
// file ledger: faults are logged and swallowed.
package redis

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"exam-runner/internal/domain"
	"github.com/redis/go-redis/v9"
)

const historyKey = "exam:history"

// Ledger stores one hash field per email under a single well-known key.
type Ledger struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

// NewLedger builds a redis-backed ledger. A zero ttl keeps records forever.
func NewLedger(client *redis.Client, ttl time.Duration) *Ledger {
	return &Ledger{client: client, ttl: ttl, clock: time.Now}
}

// NewLedgerWithClock is test-only for deterministic timestamps.
func NewLedgerWithClock(client *redis.Client, ttl time.Duration, now func() time.Time) *Ledger {
	l := NewLedger(client, ttl)
	l.clock = now
	return l
}

// Record upserts the completion record for the participant's email.
func (l *Ledger) Record(participant domain.Participant, sessionID string, result domain.SessionResult) {
	rec := domain.HistoryRecord{
		Email:     participant.Email,
		Name:      participant.Name,
		Grade:     participant.Grade,
		SessionID: sessionID,
		Score:     result.CorrectCount,
		Total:     result.ValidCount,
		Date:      l.clock(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("history: encode record for %s: %v", rec.Email, err)
		return
	}
	ctx := context.Background()
	if err := l.client.HSet(ctx, historyKey, rec.Email, data).Err(); err != nil {
		log.Printf("history: redis write for %s: %v", rec.Email, err)
		return
	}
	if l.ttl > 0 {
		if err := l.client.Expire(ctx, historyKey, l.ttl).Err(); err != nil {
			log.Printf("history: redis expire: %v", err)
		}
	}
}

// HasCompleted reports whether this email already has a completion record.
// Redis faults report false so an outage never blocks a participant.
func (l *Ledger) HasCompleted(email string) bool {
	ok, err := l.client.HExists(context.Background(), historyKey, email).Result()
	if err != nil {
		log.Printf("history: redis lookup for %s: %v", email, err)
		return false
	}
	return ok
}

// Clear erases all records.
func (l *Ledger) Clear() {
	if err := l.client.Del(context.Background(), historyKey).Err(); err != nil {
		log.Printf("history: redis clear: %v", err)
	}
}

// Dump exports all records sorted by email for stable output. Fields that no
// longer parse are skipped.
func (l *Ledger) Dump() []domain.HistoryRecord {
	fields, err := l.client.HGetAll(context.Background(), historyKey).Result()
	if err != nil {
		log.Printf("history: redis dump: %v", err)
		return nil
	}
	out := make([]domain.HistoryRecord, 0, len(fields))
	for email, raw := range fields {
		var rec domain.HistoryRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			log.Printf("history: corrupt record for %s: %v", email, err)
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}
