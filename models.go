package timedquiz

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
)

// Question represents a single multiple choice question from the bank.
// Answer holds the text of the correct option.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"min=2,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"answerDesc,omitempty"`
}

// IsCorrect reports whether option is the question's correct answer
func (q Question) IsCorrect(option string) bool {
	return option == q.Answer
}

// Result is one submitted attempt. Results are append-only and there is at
// most one per AttemptID.
type Result struct {
	ID        string    `json:"id"`
	AttemptID string    `json:"attempt_id"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// FinishReason records how a session reached the finished state
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishTimedOut  FinishReason = "timed_out"
)

// Review is the per-question breakdown shown once a session has finished
type Review struct {
	Number        int    `json:"number"`
	QuestionID    string `json:"question_id"`
	Question      string `json:"question"`
	Answer        string `json:"answer,omitempty"`
	Answered      bool   `json:"answered"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

var (
	ErrEmptyBank         = errors.New("question bank is empty")
	ErrFinished          = errors.New("quiz session already finished")
	ErrUnanswered        = errors.New("current question has not been answered")
	ErrNoSession         = errors.New("no saved quiz session")
	ErrDescriptorInvalid = errors.New("saved quiz session does not match the question bank")
	ErrInvalidQuestion   = errors.New("invalid question")
)

var validate = validator.New()

// ValidateQuestion checks the struct tags and that the answer is one of the options
func ValidateQuestion(q *Question) error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	if !slices.Contains(q.Options, q.Answer) {
		return fmt.Errorf("%w: answer %q is not one of the options", ErrInvalidQuestion, q.Answer)
	}
	return nil
}
