package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyQuestionBank is returned when a session is started with no questions.
	ErrEmptyQuestionBank = errors.New("question bank is empty")
	// ErrMustAnswerFirst guards advance/finish: the current question has no answer yet.
	// It is a recoverable condition to surface as a warning, not a hard failure.
	ErrMustAnswerFirst = errors.New("current question must be answered first")
	// ErrSessionNotStarted is returned when a session operation runs before Start.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionCompleted is returned when a mutating operation runs after Finish.
	ErrSessionCompleted = errors.New("session already completed")
	// ErrInvalidPosition is returned for an answer position outside the question set.
	ErrInvalidPosition = errors.New("question position out of range")
	// ErrInvalidOption is returned for an option label outside A-D.
	ErrInvalidOption = errors.New("option label must be one of A-D")
	// ErrMissingParticipantFields is returned when name, email, or grade is absent.
	ErrMissingParticipantFields = errors.New("name, email, and grade are required")
	// ErrInvalidEmail is returned when the participant email does not look like an address.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrAlreadyCompleted indicates the participant already submitted an exam.
	ErrAlreadyCompleted = errors.New("participant has already completed the exam")
	// ErrEndpointRejected marks an application-level failure: the endpoint
	// answered but reported success=false. Transport-level failures never
	// wrap this, which lets callers tell connectivity loss apart from an
	// explicit rejection.
	ErrEndpointRejected = errors.New("endpoint rejected the request")
)

// RemoteError reports a remote operation that failed on every transport.
// Attempts holds the per-transport errors in the order they were tried.
type RemoteError struct {
	Op       string
	Attempts []error
}

func (e *RemoteError) Error() string {
	msgs := make([]string, 0, len(e.Attempts))
	for _, err := range e.Attempts {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: all transports failed: %s", e.Op, strings.Join(msgs, "; "))
}

// Unwrap exposes the attempt errors to errors.Is/As.
func (e *RemoteError) Unwrap() []error { return e.Attempts }
