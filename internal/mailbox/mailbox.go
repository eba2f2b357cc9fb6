package mailbox

import "sync"

// Mailbox hands jobs from producers to a single consumer in arrival order.
// Put never blocks; jobs wait in the mailbox until Take picks them up.
type Mailbox[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	jobs   []T
	closed bool
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	m := &Mailbox[T]{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Put appends a job. Jobs put after Close are dropped and Put reports false.
func (m *Mailbox[T]) Put(j T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.jobs = append(m.jobs, j)
	m.mu.Unlock()
	m.cond.Signal() // wake up worker if waiting
	return true
}

// Take blocks until a job is available and returns the oldest one.
// After Close it still hands out every waiting job, then returns false.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.jobs) == 0 && !m.closed {
		m.cond.Wait()
	}

	var zero T
	if len(m.jobs) == 0 {
		return zero, false
	}

	j := m.jobs[0]
	m.jobs[0] = zero
	m.jobs = m.jobs[1:]
	return j, true
}

// Close wakes any blocked Take and rejects further Puts.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

// Len reports how many jobs are waiting.
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
