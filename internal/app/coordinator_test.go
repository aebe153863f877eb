package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"exam-runner/internal/app"
	"exam-runner/internal/domain"
	"exam-runner/internal/infra/memory"
)

type fakeGateway struct {
	bank        []domain.Question
	fetchErr    error
	priorResult bool
	submitErr   error

	submitted       []domain.AnswerRecord
	submittedBy     domain.Participant
	submitCalls     int
	priorCheckCalls int
}

func (g *fakeGateway) FetchQuestions(_ context.Context) ([]domain.Question, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return g.bank, nil
}

func (g *fakeGateway) CheckPriorSubmission(_ context.Context, _ string) (bool, error) {
	g.priorCheckCalls++
	return g.priorResult, nil
}

func (g *fakeGateway) SubmitResults(_ context.Context, participant domain.Participant, answers []domain.AnswerRecord) error {
	g.submitCalls++
	if g.submitErr != nil {
		return g.submitErr
	}
	g.submittedBy = participant
	g.submitted = answers
	return nil
}

func testParticipant() domain.Participant {
	return domain.Participant{Name: "Alice", Email: "alice@example.com", Grade: "10"}
}

func TestRegisterValidation(t *testing.T) {
	gw := &fakeGateway{bank: testBank(3)}
	c := app.NewCoordinator(gw, gw, memory.NewLedger(), rand.New(rand.NewSource(1)))

	if err := c.Register(context.Background(), domain.Participant{Name: "Alice"}); !errors.Is(err, domain.ErrMissingParticipantFields) {
		t.Fatalf("expected ErrMissingParticipantFields, got %v", err)
	}
	bad := testParticipant()
	bad.Email = "not an email"
	if err := c.Register(context.Background(), bad); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if gw.priorCheckCalls != 0 {
		t.Fatalf("invalid registration must not reach the gateway")
	}
}

func TestRegisterLedgerGateRunsBeforeGateway(t *testing.T) {
	gw := &fakeGateway{bank: testBank(3)}
	ledger := memory.NewLedger()
	ledger.Record(testParticipant(), "s1", domain.SessionResult{ValidCount: 3, CorrectCount: 2})

	c := app.NewCoordinator(gw, gw, ledger, rand.New(rand.NewSource(1)))
	if err := c.Register(context.Background(), testParticipant()); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if gw.priorCheckCalls != 0 {
		t.Fatalf("local gate must short-circuit the remote check")
	}
}

func TestRegisterRemoteGate(t *testing.T) {
	gw := &fakeGateway{bank: testBank(3), priorResult: true}
	c := app.NewCoordinator(gw, gw, memory.NewLedger(), rand.New(rand.NewSource(1)))

	if err := c.Register(context.Background(), testParticipant()); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestFullSittingSubmitsValidAnswers(t *testing.T) {
	gw := &fakeGateway{bank: testBank(3)}
	ledger := memory.NewLedger()
	c := app.NewCoordinator(gw, gw, ledger, rand.New(rand.NewSource(1)))

	if err := c.Register(context.Background(), testParticipant()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if c.SessionID() == "" {
		t.Fatalf("expected a session id after registration")
	}
	if err := c.Begin(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}

	session := c.Session()
	for i := 0; i < session.Length(); i++ {
		q, err := session.CurrentQuestion()
		if err != nil {
			t.Fatalf("current question: %v", err)
		}
		if err := session.SelectAnswer(session.Position(), q.Correct); err != nil {
			t.Fatalf("select: %v", err)
		}
		if i < session.Length()-1 {
			if err := session.Advance(); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
	}

	result, submitted, err := c.Finish(context.Background())
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !submitted {
		t.Fatalf("expected successful submission")
	}
	if result.CorrectCount != 3 || result.Percentage != 100 {
		t.Fatalf("expected perfect score, got %+v", result)
	}
	if len(gw.submitted) != 3 {
		t.Fatalf("expected 3 submitted answers, got %d", len(gw.submitted))
	}
	if gw.submittedBy.Email != "alice@example.com" {
		t.Fatalf("wrong participant submitted: %+v", gw.submittedBy)
	}
	if !ledger.HasCompleted("alice@example.com") {
		t.Fatalf("expected history record after submission")
	}
}

func TestFinishKeepsResultOnConnectivityFailure(t *testing.T) {
	gw := &fakeGateway{
		bank:      testBank(1),
		submitErr: &domain.RemoteError{Op: "saveResults", Attempts: []error{errors.New("dial tcp: connection refused")}},
	}
	ledger := memory.NewLedger()
	c := app.NewCoordinator(gw, gw, ledger, rand.New(rand.NewSource(1)))

	mustRunSitting(t, c)

	result, submitted, err := c.Finish(context.Background())
	if err != nil {
		t.Fatalf("connectivity failure must not surface an error, got %v", err)
	}
	if submitted {
		t.Fatalf("expected submitted=false")
	}
	if result.ValidCount != 1 {
		t.Fatalf("expected computed result despite failure, got %+v", result)
	}
	if !ledger.HasCompleted("alice@example.com") {
		t.Fatalf("expected local history despite failed submission")
	}
}

func TestFinishSurfacesEndpointRejection(t *testing.T) {
	gw := &fakeGateway{
		bank: testBank(1),
		submitErr: &domain.RemoteError{Op: "saveResults", Attempts: []error{
			fmt.Errorf("%w: duplicate email", domain.ErrEndpointRejected),
		}},
	}
	ledger := memory.NewLedger()
	c := app.NewCoordinator(gw, gw, ledger, rand.New(rand.NewSource(1)))

	mustRunSitting(t, c)

	_, submitted, err := c.Finish(context.Background())
	if !errors.Is(err, domain.ErrEndpointRejected) {
		t.Fatalf("expected rejection to surface, got %v", err)
	}
	if submitted {
		t.Fatalf("expected submitted=false")
	}
	if ledger.HasCompleted("alice@example.com") {
		t.Fatalf("rejection must not be recorded as a completion")
	}
}

func TestBeginPropagatesFetchFailure(t *testing.T) {
	gw := &fakeGateway{fetchErr: &domain.RemoteError{Op: "getQuestions", Attempts: []error{errors.New("boom")}}}
	c := app.NewCoordinator(gw, gw, memory.NewLedger(), rand.New(rand.NewSource(1)))

	if err := c.Register(context.Background(), testParticipant()); err != nil {
		t.Fatalf("register: %v", err)
	}
	var remoteErr *domain.RemoteError
	if err := c.Begin(context.Background()); !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
}

// mustRunSitting registers, begins, and answers every question with option A.
func mustRunSitting(t *testing.T, c *app.Coordinator) {
	t.Helper()
	if err := c.Register(context.Background(), testParticipant()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Begin(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	session := c.Session()
	for i := 0; i < session.Length(); i++ {
		if err := session.SelectAnswer(session.Position(), domain.OptionA); err != nil {
			t.Fatalf("select: %v", err)
		}
		if i < session.Length()-1 {
			if err := session.Advance(); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
	}
}
