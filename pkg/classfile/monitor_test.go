package classfile

import "testing"

func TestMonitorRecursiveAcquireRelease(t *testing.T) {
	var m Monitor
	const thread ThreadID = "t1"

	m.Acquire(thread)
	m.Acquire(thread)
	if depth := m.Depth(); depth != 2 {
		t.Fatalf("Depth = %d, want 2 after two recursive acquires", depth)
	}
	if !m.HeldBy(thread) {
		t.Fatal("expected monitor to be held by thread")
	}

	m.Release(thread)
	if !m.HeldBy(thread) {
		t.Fatal("monitor should still be held after releasing only one of two acquires")
	}

	m.Release(thread)
	if m.HeldBy(thread) {
		t.Fatal("monitor should be unheld after matching releases")
	}
	if depth := m.Depth(); depth != 0 {
		t.Fatalf("Depth = %d, want 0 once fully released", depth)
	}
}

func TestMonitorReleaseWithoutOwnershipPanics(t *testing.T) {
	var m Monitor
	m.Acquire("owner")

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic releasing a monitor held by a different thread")
		}
	}()
	m.Release("someone-else")
}

func TestMonitorHandsOffToWaiter(t *testing.T) {
	var m Monitor
	m.Acquire("first")

	acquired := make(chan struct{})
	go func() {
		m.Acquire("second")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second thread should not acquire while first holds the monitor")
	default:
	}

	m.Release("first")
	<-acquired
	if !m.HeldBy("second") {
		t.Fatal("expected second thread to hold the monitor after hand-off")
	}
	m.Release("second")
}
