package timedquiz

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options shapes an attempt session
type Options struct {
	QuestionCount int
	Duration      time.Duration
	PassRatio     float64
	// RequireAnswer refuses Next while the current question is unanswered.
	RequireAnswer bool
	SubmitTimeout time.Duration
	TickInterval  time.Duration

	Rand *rand.Rand
	Now  func() time.Time
}

// DefaultOptions returns 24 questions, 45 minutes and a 0.75 pass ratio
func DefaultOptions() Options {
	return DefaultConfig().Quiz.Options()
}

func (o Options) withDefaults() Options {
	def := DefaultConfig().Quiz
	if o.QuestionCount <= 0 {
		o.QuestionCount = def.QuestionCount
	}
	if o.Duration <= 0 {
		o.Duration = def.Duration
	}
	if o.PassRatio <= 0 {
		o.PassRatio = def.PassRatio
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = def.SubmitTimeout
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(o.Now().UnixNano()))
	}
	return o
}

// Session is one test-taker's attempt. All methods are safe for concurrent use,
// so the timer may run on its own goroutine.
type Session struct {
	mu          sync.Mutex
	opts        Options
	results     ResultStore
	descriptors DescriptorStore

	attemptID string
	selected  []Question
	index     int
	answers   map[string]string
	startTime time.Time
	resumed   bool

	finished   bool
	reason     FinishReason
	finishedAt time.Time

	// submitted is set before the result store is called and never reset,
	// whatever triggers the finish. Other Session values rebuilt from the same
	// descriptor are covered by the store's one-result-per-attempt rule.
	submitted bool
	result    *Result
	submitErr error
	pending   []PendingResult
}

// Start loads the question bank and resumes the saved session when it still
// matches the bank, or creates a new one. Results left over from earlier failed
// submissions are sent first.
func Start(ctx context.Context, opts Options, questions QuestionStore, results ResultStore, descriptors DescriptorStore) (*Session, error) {
	opts = opts.withDefaults()

	bank, err := questions.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, ErrEmptyBank
	}

	s := &Session{
		opts:        opts,
		results:     results,
		descriptors: descriptors,
		answers:     make(map[string]string),
	}

	saved, err := descriptors.Load()
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSession):
		saved = nil
	default:
		sessionLog("discarding unreadable saved session: %v", err)
		saved = nil
	}

	if saved != nil {
		s.pending = s.flushPending(ctx, saved.PendingResults)
	}

	if saved.HasSession() {
		selected, err := saved.Resolve(bank)
		if err == nil {
			s.attemptID = saved.AttemptID
			s.selected = selected
			s.index = saved.CurrentIndex
			if saved.Answers != nil {
				s.answers = maps.Clone(saved.Answers)
			}
			s.startTime = saved.StartTime
			s.resumed = true
			sessionLog("resumed session with %d questions at question %d", len(selected), s.index+1)
		} else {
			sessionLog("discarding saved session: %v", err)
		}
	}

	if !s.resumed {
		s.attemptID = uuid.NewString()
		s.selected = SampleQuestions(bank, opts.QuestionCount, opts.Rand)
		s.startTime = opts.Now()
		sessionLog("created session with %d of %d questions", len(s.selected), len(bank))
	}

	s.mu.Lock()
	err = s.persistLocked()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// A session saved before the deadline may have expired while away.
	s.Tick()
	return s, nil
}

func (s *Session) flushPending(ctx context.Context, pending []PendingResult) []PendingResult {
	var left []PendingResult
	for _, p := range pending {
		if p.AttemptID == "" {
			p.AttemptID = uuid.NewString()
		}
		result, err := s.results.CreateResult(ctx, p.AttemptID, p.Score, p.Total)
		if err != nil {
			sessionLog("retry of result %d/%d failed: %v", p.Score, p.Total, err)
			left = append(left, p)
			continue
		}
		sessionLog("submitted queued result %s (%d/%d)", result.ID, p.Score, p.Total)
	}
	return left
}

func (s *Session) descriptorLocked() *Descriptor {
	d := &Descriptor{
		Version:        DescriptorVersion,
		PendingResults: slices.Clone(s.pending),
	}
	if !s.finished {
		d.AttemptID = s.attemptID
		d.SelectedQuestionIDs = make([]string, len(s.selected))
		for i, q := range s.selected {
			d.SelectedQuestionIDs[i] = q.ID
		}
		d.CurrentIndex = s.index
		d.Answers = maps.Clone(s.answers)
		d.StartTime = s.startTime
	}
	return d
}

func (s *Session) persistLocked() error {
	if err := s.descriptors.Save(s.descriptorLocked()); err != nil {
		return fmt.Errorf("failed to save quiz progress: %w", err)
	}
	VerboseLog("saved quiz progress: question %d, %d answered", s.index+1, len(s.answers))
	return nil
}

// SelectAnswer records option for the current question, replacing any earlier
// choice. The option is stored as given.
func (s *Session) SelectAnswer(option string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrFinished
	}
	s.answers[s.selected[s.index].ID] = option
	return s.persistLocked()
}

// Next moves to the following question, or finishes the session when called on
// the last one.
func (s *Session) Next() error {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return ErrFinished
	}
	if s.opts.RequireAnswer {
		if _, ok := s.answers[s.selected[s.index].ID]; !ok {
			s.mu.Unlock()
			return ErrUnanswered
		}
	}
	if s.index < len(s.selected)-1 {
		s.index++
		err := s.persistLocked()
		s.mu.Unlock()
		return err
	}

	submit := s.finishLocked(FinishCompleted)
	s.mu.Unlock()
	if submit {
		s.submit()
	}
	return nil
}

// Previous moves back one question. It is a no-op on the first question.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return ErrFinished
	}
	if s.index == 0 {
		return nil
	}
	s.index--
	return s.persistLocked()
}

// Tick checks the deadline and finishes the session once time is up.
// It reports whether the session is finished.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return true
	}
	if s.remainingAt(s.opts.Now()) > 0 {
		s.mu.Unlock()
		return false
	}

	submit := s.finishLocked(FinishTimedOut)
	s.mu.Unlock()
	if submit {
		s.submit()
	}
	return true
}

// RunTimer ticks until the session finishes or ctx is cancelled
func (s *Session) RunTimer(ctx context.Context) {
	if s.Tick() {
		return
	}

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Tick() {
				return
			}
		}
	}
}

// finishLocked reports whether the caller has to submit the result
func (s *Session) finishLocked(reason FinishReason) bool {
	if s.finished {
		return false
	}
	s.finished = true
	s.reason = reason
	s.finishedAt = s.opts.Now()
	sessionLog("session finished (%s): %d/%d", reason, s.scoreLocked(), len(s.selected))

	if s.submitted {
		return false
	}
	s.submitted = true
	return true
}

// submit sends the result and drops the session part of the descriptor. A failed
// submission is queued in the descriptor and retried by the next Start.
func (s *Session) submit() {
	s.mu.Lock()
	attemptID, score, total, finishedAt := s.attemptID, s.scoreLocked(), len(s.selected), s.finishedAt
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SubmitTimeout)
	defer cancel()
	result, err := s.results.CreateResult(ctx, attemptID, score, total)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.submitErr = err
		s.pending = append(s.pending, PendingResult{AttemptID: attemptID, Score: score, Total: total, FinishedAt: finishedAt})
		sessionLog("failed to submit result %d/%d, queued for retry: %v", score, total, err)
	} else {
		s.result = result
		sessionLog("submitted result %s (%d/%d)", result.ID, score, total)
	}

	if len(s.pending) == 0 {
		err = s.descriptors.Clear()
	} else {
		err = s.descriptors.Save(s.descriptorLocked())
	}
	if err != nil {
		sessionLog("failed to clear quiz progress: %v", err)
	}
}

func (s *Session) remainingAt(t time.Time) time.Duration {
	elapsed := t.Sub(s.startTime).Truncate(time.Second)
	remaining := s.opts.Duration - elapsed
	if remaining < 0 {
		return 0
	}
	if remaining > s.opts.Duration {
		return s.opts.Duration
	}
	return remaining
}

func (s *Session) scoreLocked() int {
	score := 0
	for _, q := range s.selected {
		if answer, ok := s.answers[q.ID]; ok && q.IsCorrect(answer) {
			score++
		}
	}
	return score
}

// AttemptID identifies this session's result in the result store
func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

// CurrentQuestion returns the question at the current index
func (s *Session) CurrentQuestion() Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[s.index]
}

// CurrentIndex returns the zero-based position of the current question
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Total returns the number of selected questions
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selected)
}

// Questions returns a copy of the selected questions in order
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// Answer returns the stored answer for a question
func (s *Session) Answer(questionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[questionID]
	return answer, ok
}

// Answers returns a copy of all stored answers keyed by question id
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.answers)
}

// StartTime returns when the session was created
func (s *Session) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// Resumed reports whether the session was restored from a saved descriptor
func (s *Session) Resumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumed
}

// Remaining returns the time left, frozen once the session has finished
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		if s.reason == FinishTimedOut {
			return 0
		}
		return s.remainingAt(s.finishedAt)
	}
	return s.remainingAt(s.opts.Now())
}

// Finished reports whether the session reached its terminal state
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// FinishReason tells whether the session was completed or timed out
func (s *Session) FinishReason() FinishReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Score counts the selected questions answered correctly
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

// PassMark is the score needed to pass this session
func (s *Session) PassMark() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return passMark(s.opts.PassRatio, len(s.selected))
}

// Passed reports whether the score reaches the pass mark
func (s *Session) Passed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked() >= passMark(s.opts.PassRatio, len(s.selected))
}

// Review returns the per-question breakdown in session order
func (s *Session) Review() []Review {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := make([]Review, len(s.selected))
	for i, q := range s.selected {
		answer, answered := s.answers[q.ID]
		reviews[i] = Review{
			Number:        i + 1,
			QuestionID:    q.ID,
			Question:      q.Text,
			Answer:        answer,
			Answered:      answered,
			Correct:       answered && q.IsCorrect(answer),
			CorrectAnswer: q.Answer,
			Explanation:   q.Explanation,
		}
	}
	return reviews
}

// Result returns the stored result once submission succeeded
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SubmissionErr returns the error of a failed submission. The result is then
// queued for retry.
func (s *Session) SubmissionErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitErr
}

// PendingResults returns results still waiting to reach the result store
func (s *Session) PendingResults() []PendingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pending)
}

// Snapshot returns the descriptor that would be saved for the current state
func (s *Session) Snapshot() *Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.descriptorLocked()
}

func passMark(ratio float64, total int) int {
	return int(math.Ceil(ratio*float64(total) - 1e-9))
}

// FormatRemaining renders a duration as m:ss
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
