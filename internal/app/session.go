package app

import (
	"math/rand"

	"exam-runner/internal/domain"
	"exam-runner/internal/shuffle"
)

// State is the lifecycle of a single sitting.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in-progress"
	case StateCompleted:
		return "completed"
	}
	return "not-started"
}

// DisplayOption pairs a stable option label with its text, in display order.
type DisplayOption struct {
	Label string
	Text  string
}

// ExamSession owns the ordered, non-repeating question sequence for one
// sitting: current position, recorded answers, and the answer-before-advance
// rule. It is driven by a single goroutine (one user-interaction loop per
// sitting) and holds no locks.
type ExamSession struct {
	rnd       *rand.Rand
	state     State
	questions []domain.Question
	position  int
	answers   []domain.AnswerRecord
	answered  []bool
	result    domain.SessionResult
}

// NewExamSession builds an idle session. A nil rnd gets a time-seeded source;
// tests inject a fixed seed for reproducible permutations.
func NewExamSession(rnd *rand.Rand) *ExamSession {
	if rnd == nil {
		rnd = shuffle.New()
	}
	return &ExamSession{rnd: rnd}
}

// Start shuffles the full bank once into this sitting's question set and
// resets position and answers. Calling Start on a live or finished session
// resets it, which is how a new sitting reuses the same instance.
func (s *ExamSession) Start(bank []domain.Question) error {
	if len(bank) == 0 {
		return domain.ErrEmptyQuestionBank
	}
	s.questions = shuffle.Slice(s.rnd, bank)
	s.position = 0
	s.answers = make([]domain.AnswerRecord, len(s.questions))
	s.answered = make([]bool, len(s.questions))
	s.result = domain.SessionResult{}
	s.state = StateInProgress
	return nil
}

// SelectAnswer records the chosen option for a position, overwriting any
// earlier choice at that position. Correctness is derived at selection time
// from the stable option labels.
func (s *ExamSession) SelectAnswer(position int, label string) error {
	if err := s.inProgress(); err != nil {
		return err
	}
	if position < 0 || position >= len(s.questions) {
		return domain.ErrInvalidPosition
	}
	if !domain.ValidOption(label) {
		return domain.ErrInvalidOption
	}
	q := s.questions[position]
	s.answers[position] = domain.AnswerRecord{
		QuestionID:     q.ID,
		Question:       q.Text,
		SelectedOption: label,
		CorrectOption:  q.Correct,
		IsCorrect:      label == q.Correct,
	}
	s.answered[position] = true
	return nil
}

// Advance moves to the next question. It requires an answer at the current
// position and is a no-op at the last position; finishing is an explicit
// action, never a side effect of walking off the end.
func (s *ExamSession) Advance() error {
	if err := s.inProgress(); err != nil {
		return err
	}
	if !s.answered[s.position] {
		return domain.ErrMustAnswerFirst
	}
	if s.position < len(s.questions)-1 {
		s.position++
	}
	return nil
}

// Finish closes the sitting and returns the score over the valid answers.
// The same answer guard applies as for Advance.
func (s *ExamSession) Finish() (domain.SessionResult, error) {
	if err := s.inProgress(); err != nil {
		return domain.SessionResult{}, err
	}
	if !s.answered[s.position] {
		return domain.SessionResult{}, domain.ErrMustAnswerFirst
	}
	s.result = domain.ScoreAnswers(s.Answers())
	s.state = StateCompleted
	return s.result, nil
}

// State reports the session lifecycle state.
func (s *ExamSession) State() State { return s.state }

// Position is the 0-based index of the question currently presented.
func (s *ExamSession) Position() int { return s.position }

// Length is the size of this sitting's question set.
func (s *ExamSession) Length() int { return len(s.questions) }

// CurrentQuestion returns the question at the current position.
func (s *ExamSession) CurrentQuestion() (domain.Question, error) {
	if err := s.inProgress(); err != nil {
		return domain.Question{}, err
	}
	return s.questions[s.position], nil
}

// Answered reports whether the current question has a recorded answer.
func (s *ExamSession) Answered() bool {
	return s.state == StateInProgress && s.answered[s.position]
}

// DisplayOptions returns the current question's options freshly shuffled for
// display. Reshuffling per display is purely presentational: labels stay
// attached to their text, so recorded answers are unaffected.
func (s *ExamSession) DisplayOptions() ([]DisplayOption, error) {
	q, err := s.CurrentQuestion()
	if err != nil {
		return nil, err
	}
	options := []DisplayOption{
		{Label: domain.OptionA, Text: q.OptionA},
		{Label: domain.OptionB, Text: q.OptionB},
		{Label: domain.OptionC, Text: q.OptionC},
		{Label: domain.OptionD, Text: q.OptionD},
	}
	return shuffle.Slice(s.rnd, options), nil
}

// Answers returns the recorded answers in question order, answered positions
// only.
func (s *ExamSession) Answers() []domain.AnswerRecord {
	out := make([]domain.AnswerRecord, 0, len(s.answers))
	for i, rec := range s.answers {
		if s.answered[i] {
			out = append(out, rec)
		}
	}
	return out
}

// Result returns the final score snapshot once the session has completed.
func (s *ExamSession) Result() (domain.SessionResult, bool) {
	if s.state != StateCompleted {
		return domain.SessionResult{}, false
	}
	return s.result, true
}

func (s *ExamSession) inProgress() error {
	switch s.state {
	case StateNotStarted:
		return domain.ErrSessionNotStarted
	case StateCompleted:
		return domain.ErrSessionCompleted
	}
	return nil
}
