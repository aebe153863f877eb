package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"regexp"

	"exam-runner/internal/domain"
	"github.com/google/uuid"
)

// QuestionSource loads the question bank (the remote gateway, usually behind
// a cache).
type QuestionSource interface {
	FetchQuestions(ctx context.Context) ([]domain.Question, error)
}

// SubmissionGateway covers the scoring endpoint calls the coordinator makes.
type SubmissionGateway interface {
	CheckPriorSubmission(ctx context.Context, email string) (bool, error)
	SubmitResults(ctx context.Context, participant domain.Participant, answers []domain.AnswerRecord) error
}

// HistoryLedger is the local, best-effort completion history. Implementations
// swallow storage faults; none of these calls may fail the sitting.
type HistoryLedger interface {
	Record(participant domain.Participant, sessionID string, result domain.SessionResult)
	HasCompleted(email string) bool
	Clear()
	Dump() []domain.HistoryRecord
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Coordinator drives one complete sitting: registration and the duplicate
// gate, loading questions, the session itself, and the final submission with
// its local-history fallback.
type Coordinator struct {
	questions QuestionSource
	gateway   SubmissionGateway
	ledger    HistoryLedger
	session   *ExamSession

	participant domain.Participant
	sessionID   string
}

func NewCoordinator(questions QuestionSource, gateway SubmissionGateway, ledger HistoryLedger, rnd *rand.Rand) *Coordinator {
	return &Coordinator{
		questions: questions,
		gateway:   gateway,
		ledger:    ledger,
		session:   NewExamSession(rnd),
	}
}

// Register validates the participant and runs the duplicate gate: the local
// ledger first as a fast offline check, then the remote status check (which
// fails open). No submission is ever attempted for an invalid registration.
func (c *Coordinator) Register(ctx context.Context, participant domain.Participant) error {
	if participant.Name == "" || participant.Email == "" || participant.Grade == "" {
		return domain.ErrMissingParticipantFields
	}
	if !emailPattern.MatchString(participant.Email) {
		return domain.ErrInvalidEmail
	}
	if c.ledger.HasCompleted(participant.Email) {
		return domain.ErrAlreadyCompleted
	}
	taken, err := c.gateway.CheckPriorSubmission(ctx, participant.Email)
	if err != nil {
		// The gateway contract is fail-open, so this is unexpected; allow
		// the participant regardless.
		log.Printf("coordinator: prior-submission check: %v", err)
	}
	if taken {
		return domain.ErrAlreadyCompleted
	}
	c.participant = participant
	c.sessionID = uuid.NewString()
	return nil
}

// Begin fetches the question bank and starts the session with it.
func (c *Coordinator) Begin(ctx context.Context) error {
	bank, err := c.questions.FetchQuestions(ctx)
	if err != nil {
		return err
	}
	return c.session.Start(bank)
}

// Session exposes the state machine for the presentation layer to drive.
func (c *Coordinator) Session() *ExamSession { return c.session }

// Participant returns the registered participant for this sitting.
func (c *Coordinator) Participant() domain.Participant { return c.participant }

// SessionID returns the identifier attached to this sitting's records.
func (c *Coordinator) SessionID() string { return c.sessionID }

// Finish closes the session, submits the results, and records local history.
// When the submission fails on connectivity alone, the result is still
// returned and history still recorded: the participant seeing their score
// outranks guaranteed server persistence. An explicit endpoint rejection is
// surfaced as an error instead.
func (c *Coordinator) Finish(ctx context.Context) (domain.SessionResult, bool, error) {
	result, err := c.session.Finish()
	if err != nil {
		return domain.SessionResult{}, false, err
	}

	submitErr := c.gateway.SubmitResults(ctx, c.participant, c.session.Answers())
	if submitErr == nil {
		c.ledger.Record(c.participant, c.sessionID, result)
		return result, true, nil
	}
	if errors.Is(submitErr, domain.ErrEndpointRejected) {
		return result, false, submitErr
	}
	log.Printf("coordinator: submission failed on connectivity, keeping results locally: %v", submitErr)
	c.ledger.Record(c.participant, c.sessionID, result)
	return result, false, nil
}
