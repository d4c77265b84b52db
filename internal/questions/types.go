// Package questions holds the canonical question model and the CSV ingestion
// pipeline that produces it.
package questions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Kind is how the learner answers a question.
type Kind string

const (
	KindMultipleChoice Kind = "multiple-choice"
	KindShortAnswer    Kind = "short-answer"
	KindLongAnswer     Kind = "long-answer"
	KindEssay          Kind = "essay"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindMultipleChoice, KindShortAnswer, KindLongAnswer, KindEssay}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// FreeForm reports whether answers of this kind are open text with no
// stored reference answer.
func (k Kind) FreeForm() bool { return k == KindEssay || k == KindLongAnswer }

// Difficulty is the coarse difficulty band of a question.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists every supported difficulty, easiest first.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Valid reports whether d is a supported difficulty.
func (d Difficulty) Valid() bool { return slices.Contains(Difficulties, d) }

// DefaultTopic is used when a source row carries no topic.
const DefaultTopic = "General"

// Question is the canonical, validated representation of a practice item.
type Question struct {
	// ID is stable for imported questions: it is derived from the subject,
	// the source name and the row number.
	ID string `json:"id"`

	// Text is the prompt shown to the learner. Never empty.
	Text string `json:"question"`

	Kind Kind `json:"type"`

	// Options is populated only for multiple-choice questions.
	Options []string `json:"options"`

	// CorrectAnswer is an option index for multiple-choice, optional text
	// for short-answer, and absent for free-form kinds.
	CorrectAnswer Answer `json:"correctAnswer"`

	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic"`
	SubjectID   string     `json:"subjectId"`
}

// InvalidQuestionError describes why a question breaks the canonical invariant.
type InvalidQuestionError struct {
	Field   string
	Message string
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("invalid question %s: %s", e.Field, e.Message)
}

// Validate checks the canonical invariant. Multiple-choice questions need at
// least two options and a correct index within range.
func (q *Question) Validate() error {
	if q.Text == "" {
		return &InvalidQuestionError{Field: "question", Message: "text is empty"}
	}
	if !q.Kind.Valid() {
		return &InvalidQuestionError{Field: "type", Message: fmt.Sprintf("unknown type %q", q.Kind)}
	}
	if !q.Difficulty.Valid() {
		return &InvalidQuestionError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", q.Difficulty)}
	}
	if q.Kind != KindMultipleChoice {
		if len(q.Options) > 0 {
			return &InvalidQuestionError{Field: "options", Message: "only multiple-choice questions carry options"}
		}
		return nil
	}
	if len(q.Options) < 2 {
		return &InvalidQuestionError{Field: "options", Message: fmt.Sprintf("need at least 2 options, got %d", len(q.Options))}
	}
	if q.CorrectAnswer.Index == nil {
		return &InvalidQuestionError{Field: "correctAnswer", Message: "missing option index"}
	}
	if i := *q.CorrectAnswer.Index; i < 0 || i >= len(q.Options) {
		return &InvalidQuestionError{Field: "correctAnswer", Message: fmt.Sprintf("index %d out of range [0,%d)", i, len(q.Options))}
	}
	return nil
}

// CorrectText returns the correct answer as display text: the option text for
// multiple-choice, the reference text for short-answer, "" otherwise.
func (q *Question) CorrectText() string {
	switch {
	case q.CorrectAnswer.Index != nil:
		if i := *q.CorrectAnswer.Index; i >= 0 && i < len(q.Options) {
			return q.Options[i]
		}
		return ""
	case q.CorrectAnswer.Text != nil:
		return *q.CorrectAnswer.Text
	}
	return ""
}

// Answer is a correct answer: an option index, a reference text, or nothing.
// It encodes to JSON as a number, a string or null.
type Answer struct {
	Index *int
	Text  *string
}

// IndexAnswer returns an option-index answer.
func IndexAnswer(i int) Answer { return Answer{Index: &i} }

// TextAnswer returns a reference-text answer.
func TextAnswer(s string) Answer { return Answer{Text: &s} }

// IsZero reports whether no answer is set.
func (a Answer) IsZero() bool { return a.Index == nil && a.Text == nil }

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.Index != nil:
		return json.Marshal(*a.Index)
	case a.Text != nil:
		return json.Marshal(*a.Text)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = Answer{}
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Text = &s
		return nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("correct answer must be an integer, string or null: %w", err)
	}
	a.Index = &i
	return nil
}
