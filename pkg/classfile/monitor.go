package classfile

import "sync"

// ThreadID identifies a monitor owner. pkg/interp.Thread implements this by
// returning its own UUID's string form; neither classfile nor heap has any
// reason to import pkg/interp just to know what a thread is. Monitor lives
// here, rather than in pkg/heap, so that classfile.Class (for static
// synchronized methods) and heap.Object/Array (for instance/array
// monitors) can both embed it without a cycle between those two packages.
type ThreadID = string

// Monitor is a recursive lock with ownership tracking: acquire/release on
// any object, with recursive ownership by a single thread at a time. It
// is intentionally simple — no fairness guarantees beyond what
// sync.Mutex gives, since thread-scheduling fairness is out of scope.
type Monitor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	owner   ThreadID
	depth   int
}

// Acquire blocks until the calling thread holds the monitor, incrementing
// the recursion depth if it already does. Acquisition count on entry
// must equal release count on every exit path.
func (m *Monitor) Acquire(thread ThreadID) {
	m.mu.Lock()
	if m.cond == nil {
		m.cond = sync.NewCond(&m.mu)
	}
	for m.owner != "" && m.owner != thread {
		m.cond.Wait()
	}
	m.owner = thread
	m.depth++
	m.mu.Unlock()
}

// Release decrements the recursion depth, waking a waiter once it reaches
// zero. Releasing a monitor not held by thread is a fatal internal error:
// it indicates a pushFrame/popFrame or monitorenter/monitorexit bug, not
// a language-visible condition.
func (m *Monitor) Release(thread ThreadID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner != thread {
		panic("heap: release of monitor not held by calling thread")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = ""
		if m.cond != nil {
			m.cond.Signal()
		}
	}
}

// HeldBy reports whether thread currently owns the monitor (used by tests
// to assert the §8 acquire/release-count invariant).
func (m *Monitor) HeldBy(thread ThreadID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner == thread && m.depth > 0
}

// Depth returns the current recursion depth (0 if unheld).
func (m *Monitor) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth
}
