// Package gateway is the client of the remote scoring endpoint. Every
// operation runs down an ordered transport chain (JSON POST first, query GET
// as fallback); the first parsed, successful response wins and errors are
// aggregated when the whole chain fails.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"exam-runner/internal/domain"
)

const defaultAttemptTimeout = 15 * time.Second

// Gateway issues getQuestions, checkStudentStatus, and saveResults calls.
type Gateway struct {
	endpoint       string
	transports     []Transport
	attemptTimeout time.Duration
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithAttemptTimeout bounds each transport attempt so the fallback can engage.
func WithAttemptTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.attemptTimeout = d
		}
	}
}

// WithTransports replaces the transport chain; tests use this to simulate
// transport failures.
func WithTransports(transports ...Transport) Option {
	return func(g *Gateway) { g.transports = transports }
}

// New validates the endpoint shape (no live probe) and builds the default
// POST-then-GET transport chain.
func New(endpoint string, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q does not look like an http(s) URL", endpoint)
	}

	client := &http.Client{}
	g := &Gateway{
		endpoint: endpoint,
		transports: []Transport{
			&jsonTransport{client: client},
			&queryTransport{client: client, now: time.Now},
		},
		attemptTimeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// FetchQuestions loads the question bank. Transport failures and
// application-level failures both fall through to the next transport; a
// response whose usable question list is empty is an error as well.
func (g *Gateway) FetchQuestions(ctx context.Context) ([]domain.Question, error) {
	resp, err := g.do(ctx, request{Action: actionGetQuestions})
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(resp.Questions))
	for _, wq := range resp.Questions {
		q := domain.Question{
			ID:      wq.stringID(),
			Text:    wq.Text,
			OptionA: wq.OptionA,
			OptionB: wq.OptionB,
			OptionC: wq.OptionC,
			OptionD: wq.OptionD,
			Correct: wq.Correct,
		}
		if !usableQuestion(q) {
			log.Printf("gateway: dropping malformed question %q", q.ID)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, &domain.RemoteError{Op: actionGetQuestions, Attempts: []error{errors.New("no usable questions in response")}}
	}
	return questions, nil
}

// CheckPriorSubmission asks whether this email already completed an exam.
// Fail open: any transport, parse, or application failure reports false so a
// transient error never wrongly blocks a participant.
func (g *Gateway) CheckPriorSubmission(ctx context.Context, email string) (bool, error) {
	resp, err := g.do(ctx, request{Action: actionCheckStatus, Email: email})
	if err != nil {
		log.Printf("gateway: prior-submission check failed, allowing participant: %v", err)
		return false, nil
	}
	return resp.HasTakenExam, nil
}

// SubmitResults sends the valid answers for scoring. It fails only after both
// transports were attempted and neither produced a successful response.
func (g *Gateway) SubmitResults(ctx context.Context, participant domain.Participant, answers []domain.AnswerRecord) error {
	valid := domain.FilterValid(answers)
	if len(valid) == 0 {
		return &domain.RemoteError{Op: actionSaveResults, Attempts: []error{errors.New("no valid answers to submit")}}
	}
	_, err := g.do(ctx, request{Action: actionSaveResults, StudentData: &participant, Answers: valid})
	return err
}

func (g *Gateway) do(ctx context.Context, req request) (*response, error) {
	attempts := make([]error, 0, len(g.transports))
	for _, transport := range g.transports {
		resp, err := g.attempt(ctx, transport, req)
		if err != nil {
			log.Printf("gateway: %s via %s failed: %v", req.Action, transport.Name(), err)
			attempts = append(attempts, fmt.Errorf("%s: %w", transport.Name(), err))
			continue
		}
		return resp, nil
	}
	return nil, &domain.RemoteError{Op: req.Action, Attempts: attempts}
}

func (g *Gateway) attempt(ctx context.Context, transport Transport, req request) (*response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	resp, err := transport.Do(attemptCtx, g.endpoint, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrEndpointRejected, resp.Error)
		}
		return nil, domain.ErrEndpointRejected
	}
	return resp, nil
}

func usableQuestion(q domain.Question) bool {
	return q.Text != "" &&
		q.OptionA != "" && q.OptionB != "" && q.OptionC != "" && q.OptionD != "" &&
		domain.ValidOption(q.Correct)
}
