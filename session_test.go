package timedquiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"testing"
	"time"
)

type bankStore struct {
	questions []Question
}

func (b *bankStore) ListQuestions(ctx context.Context) ([]Question, error) {
	return slices.Clone(b.questions), nil
}

func (b *bankStore) CreateQuestion(ctx context.Context, q *Question) error {
	if q.ID == "" {
		q.ID = fmt.Sprintf("gen-%d", len(b.questions))
	}
	b.questions = append(b.questions, *q)
	return nil
}

type resultRecorder struct {
	mu      sync.Mutex
	results []Result
	fail    error
}

func (r *resultRecorder) CreateResult(ctx context.Context, attemptID string, score, total int) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	for _, existing := range r.results {
		if existing.AttemptID == attemptID {
			return &existing, nil
		}
	}
	result := Result{ID: fmt.Sprintf("r%d", len(r.results)), AttemptID: attemptID, Score: score, Total: total, CreatedAt: time.Now()}
	r.results = append(r.results, result)
	return &result, nil
}

func (r *resultRecorder) ListResults(ctx context.Context) ([]Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := slices.Clone(r.results)
	slices.Reverse(out)
	return out, nil
}

func (r *resultRecorder) all() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.results)
}

func (r *resultRecorder) setFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	bank        *bankStore
	results     *resultRecorder
	descriptors *MemoryDescriptorStore
	clock       *testClock
	opts        Options
}

func newFixture(bankSize int) *fixture {
	clock := newTestClock()
	return &fixture{
		bank:        &bankStore{questions: testBank(bankSize)},
		results:     &resultRecorder{},
		descriptors: NewMemoryDescriptorStore(),
		clock:       clock,
		opts: Options{
			QuestionCount: 24,
			Duration:      45 * time.Minute,
			PassRatio:     0.75,
			RequireAnswer: true,
			Rand:          rand.New(rand.NewSource(1)),
			Now:           clock.Now,
		},
	}
}

func (f *fixture) start(t *testing.T) *Session {
	t.Helper()
	s, err := Start(context.Background(), f.opts, f.bank, f.results, f.descriptors)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func wrongOption(q Question) string {
	for _, o := range q.Options {
		if o != q.Answer {
			return o
		}
	}
	return "nope"
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestStartCreatesSession(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)

	if s.Total() != 24 {
		t.Fatalf("Total = %d, want 24", s.Total())
	}
	if s.CurrentIndex() != 0 || s.Finished() || s.Resumed() {
		t.Fatalf("unexpected initial state: index %d finished %v resumed %v", s.CurrentIndex(), s.Finished(), s.Resumed())
	}
	if !s.StartTime().Equal(f.clock.Now()) {
		t.Fatalf("StartTime = %v, want %v", s.StartTime(), f.clock.Now())
	}

	seen := make(map[string]bool)
	for _, q := range s.Questions() {
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}

	d, err := f.descriptors.Load()
	if err != nil {
		t.Fatalf("descriptor not saved: %v", err)
	}
	if len(d.SelectedQuestionIDs) != 24 || d.Version != DescriptorVersion {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
}

func TestStartSmallBank(t *testing.T) {
	f := newFixture(7)
	s := f.start(t)
	if s.Total() != 7 {
		t.Fatalf("Total = %d, want 7", s.Total())
	}
	if s.PassMark() != 6 {
		t.Fatalf("PassMark = %d, want 6", s.PassMark())
	}
}

func TestStartEmptyBank(t *testing.T) {
	f := newFixture(0)
	_, err := Start(context.Background(), f.opts, f.bank, f.results, f.descriptors)
	if !errors.Is(err, ErrEmptyBank) {
		t.Fatalf("err = %v, want ErrEmptyBank", err)
	}
}

func TestResumeRestoresState(t *testing.T) {
	f := newFixture(30)
	s1 := f.start(t)

	mustDo(t, s1.SelectAnswer(s1.CurrentQuestion().Answer))
	mustDo(t, s1.Next())
	mustDo(t, s1.SelectAnswer(wrongOption(s1.CurrentQuestion())))
	mustDo(t, s1.Next())
	mustDo(t, s1.SelectAnswer("anything"))

	f.clock.Advance(5 * time.Minute)
	f.opts.Rand = rand.New(rand.NewSource(99))
	s2 := f.start(t)

	if !s2.Resumed() {
		t.Fatal("expected resumed session")
	}
	if !slices.Equal(questionIDs(s1.Questions()), questionIDs(s2.Questions())) {
		t.Fatal("question order changed on resume")
	}
	if s2.CurrentIndex() != 2 {
		t.Fatalf("CurrentIndex = %d, want 2", s2.CurrentIndex())
	}
	if !mapsEqual(s1.Answers(), s2.Answers()) {
		t.Fatalf("answers differ: %v vs %v", s1.Answers(), s2.Answers())
	}
	if !s2.StartTime().Equal(s1.StartTime()) {
		t.Fatal("start time reset on resume")
	}
	if s1.AttemptID() == "" || s2.AttemptID() != s1.AttemptID() {
		t.Fatalf("attempt id %q, want %q", s2.AttemptID(), s1.AttemptID())
	}
	if s2.Remaining() != 40*time.Minute {
		t.Fatalf("Remaining = %v, want 40m", s2.Remaining())
	}
	if len(f.results.all()) != 0 {
		t.Fatal("resume must not submit a result")
	}
}

func TestResumeDiscardsUnknownQuestions(t *testing.T) {
	f := newFixture(30)
	s1 := f.start(t)
	mustDo(t, s1.SelectAnswer(s1.CurrentQuestion().Answer))

	// Drop one of the selected questions from the bank.
	gone := s1.Questions()[3].ID
	f.bank.questions = slices.DeleteFunc(f.bank.questions, func(q Question) bool { return q.ID == gone })
	f.clock.Advance(time.Minute)

	s2 := f.start(t)
	if s2.Resumed() {
		t.Fatal("descriptor with unknown question should be discarded")
	}
	if s2.AttemptID() == s1.AttemptID() {
		t.Fatal("fresh session reused the discarded attempt id")
	}
	if !s2.StartTime().Equal(f.clock.Now()) {
		t.Fatal("fresh session should start now")
	}
	if len(s2.Answers()) != 0 || s2.CurrentIndex() != 0 {
		t.Fatal("fresh session should have no progress")
	}
	for _, q := range s2.Questions() {
		if q.ID == gone {
			t.Fatal("fresh session selected a removed question")
		}
	}
}

func TestResumeDiscardsOtherVersion(t *testing.T) {
	f := newFixture(30)
	s1 := f.start(t)

	d := s1.Snapshot()
	d.Version = DescriptorVersion + 1
	mustDo(t, f.descriptors.Save(d))

	if f.start(t).Resumed() {
		t.Fatal("descriptor with another version should be discarded")
	}
}

func TestSelectAnswerOverwritesOnlyCurrent(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)

	first := s.CurrentQuestion()
	mustDo(t, s.SelectAnswer(first.Answer))
	mustDo(t, s.SelectAnswer(first.Answer))
	if got, _ := s.Answer(first.ID); got != first.Answer || len(s.Answers()) != 1 {
		t.Fatalf("repeat select changed state: %v", s.Answers())
	}

	mustDo(t, s.SelectAnswer(wrongOption(first)))
	if got, _ := s.Answer(first.ID); got != wrongOption(first) {
		t.Fatalf("answer = %q, want overwrite", got)
	}

	mustDo(t, s.Next())
	second := s.CurrentQuestion()
	mustDo(t, s.SelectAnswer("not even an option"))

	answers := s.Answers()
	if len(answers) != 2 || answers[first.ID] != wrongOption(first) || answers[second.ID] != "not even an option" {
		t.Fatalf("unexpected answers: %v", answers)
	}
}

func TestEveryMutationIsSaved(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)
	saves := f.descriptors.Saves()

	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	mustDo(t, s.Previous())

	if got := f.descriptors.Saves() - saves; got != 3 {
		t.Fatalf("saved %d times, want 3", got)
	}
	d, _ := f.descriptors.Load()
	if d.CurrentIndex != 0 || len(d.Answers) != 1 {
		t.Fatalf("descriptor out of date: %+v", d)
	}
}

func TestNextRequiresAnswer(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)

	if err := s.Next(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("err = %v, want ErrUnanswered", err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatal("index moved without an answer")
	}

	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	if s.CurrentIndex() != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", s.CurrentIndex())
	}
}

func TestNextWithoutAnswerWhenAllowed(t *testing.T) {
	f := newFixture(30)
	f.opts.RequireAnswer = false
	s := f.start(t)

	mustDo(t, s.Next())
	if s.CurrentIndex() != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", s.CurrentIndex())
	}
}

func TestPreviousAtStartIsNoop(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)
	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	before := s.Snapshot()

	mustDo(t, s.Previous())
	after := s.Snapshot()
	if after.CurrentIndex != 0 || !mapsEqual(before.Answers, after.Answers) {
		t.Fatalf("state changed: %+v", after)
	}
}

func TestPreviousKeepsAnswers(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)
	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Previous())

	if s.CurrentIndex() != 0 || len(s.Answers()) != 2 {
		t.Fatalf("index %d answers %v", s.CurrentIndex(), s.Answers())
	}
}

func TestNextOnLastQuestionFinishes(t *testing.T) {
	f := newFixture(3)
	s := f.start(t)

	for i := 0; i < 3; i++ {
		mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
		mustDo(t, s.Next())
	}

	if !s.Finished() || s.FinishReason() != FinishCompleted {
		t.Fatalf("finished %v reason %q", s.Finished(), s.FinishReason())
	}
	if s.CurrentIndex() != 2 {
		t.Fatalf("CurrentIndex = %d, want 2", s.CurrentIndex())
	}
	if results := f.results.all(); len(results) != 1 || results[0].Score != 3 || results[0].Total != 3 {
		t.Fatalf("results = %+v", results)
	}
}

func TestCompletedAttempt(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)

	for i := 0; i < 24; i++ {
		q := s.CurrentQuestion()
		if i < 20 {
			mustDo(t, s.SelectAnswer(q.Answer))
		} else {
			mustDo(t, s.SelectAnswer(wrongOption(q)))
		}
		mustDo(t, s.Next())
	}

	if !s.Finished() {
		t.Fatal("expected finished session")
	}
	if s.Score() != 20 || s.Total() != 24 || !s.Passed() {
		t.Fatalf("score %d/%d passed %v", s.Score(), s.Total(), s.Passed())
	}

	results := f.results.all()
	if len(results) != 1 || results[0].Score != 20 || results[0].Total != 24 {
		t.Fatalf("results = %+v", results)
	}
	if s.Result() == nil || s.Result().ID != results[0].ID {
		t.Fatal("session does not report the stored result")
	}
	if _, err := f.descriptors.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("descriptor should be cleared, got %v", err)
	}

	review := s.Review()
	if len(review) != 24 {
		t.Fatalf("review has %d entries", len(review))
	}
	correct := 0
	for i, r := range review {
		if r.Number != i+1 || !r.Answered || r.CorrectAnswer == "" || r.Explanation == "" {
			t.Fatalf("bad review entry %+v", r)
		}
		if r.Correct {
			correct++
		}
	}
	if correct != 20 {
		t.Fatalf("review marks %d correct, want 20", correct)
	}
}

func TestFailingScore(t *testing.T) {
	f := newFixture(30)
	s := f.start(t)

	for i := 0; i < 24; i++ {
		q := s.CurrentQuestion()
		if i < 17 {
			mustDo(t, s.SelectAnswer(q.Answer))
		} else {
			mustDo(t, s.SelectAnswer(wrongOption(q)))
		}
		mustDo(t, s.Next())
	}
	if s.Score() != 17 || s.Passed() {
		t.Fatalf("score %d passed %v", s.Score(), s.Passed())
	}
}

func TestTimeoutFinishesSession(t *testing.T) {
	f := newFixture(30)
	f.opts.RequireAnswer = false
	s := f.start(t)

	for i := 0; i < 10; i++ {
		q := s.CurrentQuestion()
		switch {
		case i < 3:
			mustDo(t, s.SelectAnswer(q.Answer))
		case i < 5:
			mustDo(t, s.SelectAnswer(wrongOption(q)))
		}
		mustDo(t, s.Next())
	}
	if s.CurrentIndex() != 10 || len(s.Answers()) != 5 {
		t.Fatalf("index %d answers %d", s.CurrentIndex(), len(s.Answers()))
	}

	f.clock.Advance(44*time.Minute + 59*time.Second)
	if s.Tick() {
		t.Fatal("finished a second early")
	}
	if s.Remaining() != time.Second {
		t.Fatalf("Remaining = %v, want 1s", s.Remaining())
	}

	f.clock.Advance(time.Second)
	if !s.Tick() {
		t.Fatal("expected finish at the deadline")
	}
	if s.FinishReason() != FinishTimedOut || s.Remaining() != 0 || FormatRemaining(s.Remaining()) != "0:00" {
		t.Fatalf("reason %q remaining %v", s.FinishReason(), s.Remaining())
	}
	if s.Score() != 3 || s.Total() != 24 {
		t.Fatalf("score %d/%d, want 3/24", s.Score(), s.Total())
	}

	s.Tick()
	f.clock.Advance(time.Minute)
	s.Tick()
	if results := f.results.all(); len(results) != 1 || results[0].Score != 3 || results[0].Total != 24 {
		t.Fatalf("results = %+v", results)
	}
}

func TestFinishedSessionIsFrozen(t *testing.T) {
	f := newFixture(2)
	s := f.start(t)
	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())

	answers := s.Answers()
	for name, op := range map[string]func() error{
		"select":   func() error { return s.SelectAnswer("x") },
		"next":     s.Next,
		"previous": s.Previous,
	} {
		if err := op(); !errors.Is(err, ErrFinished) {
			t.Errorf("%s: err = %v, want ErrFinished", name, err)
		}
	}
	f.clock.Advance(time.Hour)
	s.Tick()

	if !mapsEqual(answers, s.Answers()) {
		t.Fatal("answers changed after finish")
	}
	if len(f.results.all()) != 1 {
		t.Fatalf("submitted %d results, want 1", len(f.results.all()))
	}
}

func TestRemainingFrozenAfterCompletion(t *testing.T) {
	f := newFixture(1)
	s := f.start(t)

	f.clock.Advance(90 * time.Second)
	if got := FormatRemaining(s.Remaining()); got != "43:30" {
		t.Fatalf("remaining = %s, want 43:30", got)
	}

	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	f.clock.Advance(10 * time.Minute)
	if s.Remaining() != 43*time.Minute+30*time.Second {
		t.Fatalf("Remaining = %v after finish", s.Remaining())
	}
}

func TestExpiredSavedSessionFinishesOnStart(t *testing.T) {
	f := newFixture(30)
	s1 := f.start(t)
	mustDo(t, s1.SelectAnswer(s1.CurrentQuestion().Answer))

	f.clock.Advance(time.Hour)
	s2 := f.start(t)

	if !s2.Resumed() || !s2.Finished() || s2.FinishReason() != FinishTimedOut {
		t.Fatalf("resumed %v finished %v reason %q", s2.Resumed(), s2.Finished(), s2.FinishReason())
	}
	if results := f.results.all(); len(results) != 1 || results[0].Score != 1 {
		t.Fatalf("results = %+v", results)
	}
}

func TestSubmissionFailureIsRetried(t *testing.T) {
	f := newFixture(2)
	f.results.setFail(errors.New("database is down"))
	s := f.start(t)

	mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
	mustDo(t, s.Next())
	mustDo(t, s.SelectAnswer(wrongOption(s.CurrentQuestion())))
	mustDo(t, s.Next())

	if !s.Finished() || s.SubmissionErr() == nil || s.Result() != nil {
		t.Fatalf("finished %v err %v", s.Finished(), s.SubmissionErr())
	}
	d, err := f.descriptors.Load()
	if err != nil {
		t.Fatalf("pending result not saved: %v", err)
	}
	if d.HasSession() || len(d.PendingResults) != 1 || d.PendingResults[0].Score != 1 || d.PendingResults[0].Total != 2 || d.PendingResults[0].AttemptID != s.AttemptID() {
		t.Fatalf("unexpected descriptor: %+v", d)
	}

	// Still failing: the result stays queued behind the new session.
	s2 := f.start(t)
	if s2.Resumed() || len(s2.PendingResults()) != 1 {
		t.Fatalf("resumed %v pending %v", s2.Resumed(), s2.PendingResults())
	}

	f.results.setFail(nil)
	s3 := f.start(t)
	if !s3.Resumed() {
		t.Fatal("in-progress session should survive the flush")
	}
	if len(s3.PendingResults()) != 0 {
		t.Fatal("pending result should be flushed")
	}
	if results := f.results.all(); len(results) != 1 || results[0].Score != 1 || results[0].Total != 2 {
		t.Fatalf("results = %+v", results)
	}
	d, _ = f.descriptors.Load()
	if len(d.PendingResults) != 0 {
		t.Fatal("flushed result still in descriptor")
	}
}

func TestRunTimerFinishesSession(t *testing.T) {
	f := newFixture(30)
	f.opts.TickInterval = time.Millisecond
	s := f.start(t)

	done := make(chan struct{})
	go func() {
		s.RunTimer(context.Background())
		close(done)
	}()

	f.clock.Advance(45 * time.Minute)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer did not stop after the deadline")
	}
	if !s.Finished() || len(f.results.all()) != 1 {
		t.Fatalf("finished %v results %d", s.Finished(), len(f.results.all()))
	}
}

func TestRunTimerStopsOnCancel(t *testing.T) {
	f := newFixture(30)
	f.opts.TickInterval = time.Millisecond
	s := f.start(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunTimer(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timer ignored cancellation")
	}
	if s.Finished() {
		t.Fatal("cancelled timer must not finish the session")
	}
}

func TestTimerAndNextRaceSubmitOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(1)
		s := f.start(t)
		mustDo(t, s.SelectAnswer(s.CurrentQuestion().Answer))
		f.clock.Advance(45 * time.Minute)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.Tick() }()
		go func() { defer wg.Done(); s.Next() }()
		wg.Wait()

		if n := len(f.results.all()); n != 1 {
			t.Fatalf("submitted %d results, want 1", n)
		}
	}
}

// Each HTTP request rebuilds its own Session from the saved descriptor, so two
// of them can finish the same attempt.
func TestRebuiltSessionsStoreOneResult(t *testing.T) {
	f := newFixture(1)
	db := newTestDB(t)
	ctx := context.Background()

	first, err := Start(ctx, f.opts, f.bank, db, f.descriptors)
	mustDo(t, err)
	mustDo(t, first.SelectAnswer(first.CurrentQuestion().Answer))
	second, err := Start(ctx, f.opts, f.bank, db, f.descriptors)
	mustDo(t, err)
	if !second.Resumed() {
		t.Fatal("second session should resume the first")
	}

	var wg sync.WaitGroup
	for _, s := range []*Session{first, second} {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if err := s.Next(); err != nil && !errors.Is(err, ErrFinished) {
				t.Error(err)
			}
		}(s)
	}
	wg.Wait()

	results, err := db.ListResults(ctx)
	mustDo(t, err)
	if len(results) != 1 || results[0].AttemptID != first.AttemptID() || results[0].Score != 1 {
		t.Fatalf("results = %+v", results)
	}
	if first.Result() == nil || second.Result() == nil || first.Result().ID != second.Result().ID {
		t.Fatal("both sessions should report the stored result")
	}
}

func TestPendingResultIsFlushedOnce(t *testing.T) {
	f := newFixture(3)
	db := newTestDB(t)
	pending := []PendingResult{
		{AttemptID: "attempt-1", Score: 2, Total: 3},
		{Score: 1, Total: 3},
	}
	mustDo(t, f.descriptors.Save(&Descriptor{Version: DescriptorVersion, PendingResults: pending}))

	// A stale copy of the same descriptor is flushed again by a second visit.
	for i := 0; i < 2; i++ {
		s, err := Start(context.Background(), f.opts, f.bank, db, f.descriptors)
		mustDo(t, err)
		if len(s.PendingResults()) != 0 {
			t.Fatalf("pending = %+v", s.PendingResults())
		}
		mustDo(t, f.descriptors.Save(&Descriptor{Version: DescriptorVersion, PendingResults: pending[:1]}))
	}

	results, err := db.ListResults(context.Background())
	mustDo(t, err)
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
}

func TestPassMark(t *testing.T) {
	tests := []struct {
		ratio float64
		total int
		want  int
	}{
		{0.75, 24, 18},
		{0.75, 12, 9},
		{0.75, 10, 8},
		{0.75, 1, 1},
		{0.5, 7, 4},
		{1, 5, 5},
	}
	for _, tt := range tests {
		if got := passMark(tt.ratio, tt.total); got != tt.want {
			t.Errorf("passMark(%v, %d) = %d, want %d", tt.ratio, tt.total, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := map[time.Duration]string{
		45 * time.Minute:              "45:00",
		9*time.Minute + 5*time.Second: "9:05",
		59 * time.Second:              "0:59",
		-time.Second:                  "0:00",
	}
	for d, want := range tests {
		if got := FormatRemaining(d); got != want {
			t.Errorf("FormatRemaining(%v) = %s, want %s", d, got, want)
		}
	}
}

func questionIDs(qs []Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
