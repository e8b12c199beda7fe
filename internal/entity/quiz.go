package entity

import "slices"

// QuestionType enumerates the question shapes the generator produces.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
)

// QuizQuestion is immutable input produced by the quiz generator.
type QuizQuestion struct {
	ID            string       `json:"id" yaml:"id"`
	Question      string       `json:"question" yaml:"question"`
	Options       []string     `json:"options" yaml:"options"`
	CorrectAnswer string       `json:"correctAnswer" yaml:"correctAnswer"`
	Type          QuestionType `json:"type" yaml:"type"`
}

// HasOption reports whether option is one of the question's choices.
func (q QuizQuestion) HasOption(option string) bool {
	return slices.Contains(q.Options, option)
}

// Answerable reports whether the question can be graded: every option is
// non-empty and the correct answer is one of them.
func (q QuizQuestion) Answerable() bool {
	if len(q.Options) == 0 || slices.Contains(q.Options, "") {
		return false
	}
	return q.HasOption(q.CorrectAnswer)
}

// QuizSession is the checkpoint persisted while a quiz is in progress.
type QuizSession struct {
	Questions      []QuizQuestion `json:"questions"`
	CurrentIndex   int            `json:"currentIndex"`
	Score          int            `json:"score"`
	SummaryContext string         `json:"summaryContext,omitempty"`
	Identity       string         `json:"identity,omitempty"`
}

// Validate checks that the checkpoint can be resumed.
func (s *QuizSession) Validate() error {
	if s == nil || len(s.Questions) == 0 {
		return ErrInvalidQuizSession
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return ErrInvalidQuizSession
	}
	if s.Score < 0 || s.Score > len(s.Questions) {
		return ErrInvalidQuizSession
	}
	return nil
}
