package timedquiz

import "sync"

// QuestionPool is a FIFO queue of candidates waiting for review
type QuestionPool struct {
	mu    sync.Mutex
	queue []*Candidate
}

// NewQuestionPool creates an empty pool
func NewQuestionPool() *QuestionPool {
	return &QuestionPool{}
}

// Add queues a candidate. New and revised candidates keep their status;
// anything else is reset to tentative.
func (qp *QuestionPool) Add(c *Candidate) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if c.Status != StatusRevised {
		c.Status = StatusTentative
	}
	qp.queue = append(qp.queue, c)
}

// Get removes and returns the oldest candidate, or nil when empty
func (qp *QuestionPool) Get() *Candidate {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if len(qp.queue) == 0 {
		return nil
	}
	c := qp.queue[0]
	qp.queue = qp.queue[1:]
	return c
}

// Size returns the number of queued candidates
func (qp *QuestionPool) Size() int {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	return len(qp.queue)
}

// IsEmpty returns true if the pool is empty
func (qp *QuestionPool) IsEmpty() bool {
	return qp.Size() == 0
}
