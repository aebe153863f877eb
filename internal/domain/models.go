package domain

import "time"

// Option labels are stable identifiers for the four choices of a question.
// Correctness is always computed against labels, never display order.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// ValidOption reports whether label is one of A-D.
func ValidOption(label string) bool {
	switch label {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is a single multiple-choice question with four options.
// The ID is preserved verbatim from the question source so answers can be
// correlated server-side.
type Question struct {
	ID      string `json:"id"`
	Text    string `json:"question"`
	OptionA string `json:"optionA"`
	OptionB string `json:"optionB"`
	OptionC string `json:"optionC"`
	OptionD string `json:"optionD"`
	Correct string `json:"correct"` // one of A-D
}

// OptionText returns the text for an option label, or "" for an unknown label.
func (q Question) OptionText(label string) string {
	switch label {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// Participant identifies the person sitting the exam. Email is the uniqueness
// key against prior submissions. Captured once per session, immutable after.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   string `json:"age,omitempty"`
	Grade string `json:"grade"`
}

// AnswerRecord captures one answered position. The question text is
// denormalized for audit even though the ID is authoritative.
type AnswerRecord struct {
	QuestionID     string `json:"questionId"`
	Question       string `json:"question"`
	SelectedOption string `json:"selectedOption"`
	CorrectOption  string `json:"correctOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

// Valid reports whether the record is complete enough to count toward the
// score and to be submitted upstream. Malformed upstream data degrades to an
// excluded record rather than a silently defaulted answer.
func (a AnswerRecord) Valid() bool {
	return a.Question != "" && a.SelectedOption != "" && a.CorrectOption != ""
}

// FilterValid returns only the valid records from answers, preserving order.
func FilterValid(answers []AnswerRecord) []AnswerRecord {
	valid := make([]AnswerRecord, 0, len(answers))
	for _, a := range answers {
		if a.Valid() {
			valid = append(valid, a)
		}
	}
	return valid
}

// SessionResult is the derived score snapshot for a finished sitting.
type SessionResult struct {
	ValidCount     int `json:"totalQuestions"`
	CorrectCount   int `json:"correctCount"`
	IncorrectCount int `json:"incorrectCount"`
	Percentage     int `json:"percentage"`
}

// ScoreAnswers computes a SessionResult over the valid subset of answers.
func ScoreAnswers(answers []AnswerRecord) SessionResult {
	valid := FilterValid(answers)
	correct := 0
	for _, a := range valid {
		if a.IsCorrect {
			correct++
		}
	}
	result := SessionResult{
		ValidCount:     len(valid),
		CorrectCount:   correct,
		IncorrectCount: len(valid) - correct,
	}
	if result.ValidCount > 0 {
		result.Percentage = int(float64(correct)/float64(result.ValidCount)*100 + 0.5)
	}
	return result
}

// HistoryRecord is the per-email completion record kept by the local ledger.
// A later sitting with the same email overwrites the earlier record.
type HistoryRecord struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Grade     string    `json:"grade"`
	SessionID string    `json:"sessionId"`
	Score     int       `json:"score"`
	Total     int       `json:"totalQuestions"`
	Date      time.Time `json:"date"`
}
