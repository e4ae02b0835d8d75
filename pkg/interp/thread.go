package interp

import (
	"sync"

	"github.com/google/uuid"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// RunState is a thread's cooperation state with the collector. There is
// no collector driving ExclusiveState in this port (GC policy is a
// non-goal), but the transitions themselves are real: a thread parked in
// IdleState never
// touches Go-managed memory on the interpreter's behalf, which is the
// property an exclusive collector pass would rely on.
type RunState int

const (
	ActiveState RunState = iota
	IdleState
	ExclusiveState
	ZombieState
)

// frameRec is one invocation record. Rather than packing base/method/ip/
// next into the word-tagged operand stack the way the source does (a
// layout whose only purpose is letting C code treat frame metadata and
// operands as one undifferentiated array), frames live in their own
// slice: same O(1) push/pop, no need to smuggle a *classfile.Method
// through a stack slot meant for int/long/object values.
type frameRec struct {
	Base   int
	Method *classfile.Method
	IP     int
	Next   int // index into Thread.frames, or -1
}

// Thread is the per-thread mutable execution state the dispatch loop
// operates on directly: a single function with state held in local
// mutable variables.
type Thread struct {
	ID uuid.UUID

	vm *Machine

	Stack []Slot
	SP    int

	frames []frameRec
	Frame  int // index into frames of the current frame, -1 if none
	Base   int // cached frames[Frame].Base, kept in sync by pushFrame/popFrame

	IP   int
	Code *classfile.Code

	Exception *heap.Object

	// handles pins object references crossing the native-call boundary:
	// a native function receives a *heap.Object by uint64 handle rather
	// than a raw stack index, so the reference stays valid even after
	// popFrame moves sp.
	handles []*heap.Object

	mu    sync.Mutex
	state RunState
}

// Pin records o and returns a handle a native function can pass back
// through its uint64 result to return an object reference.
func (t *Thread) Pin(o *heap.Object) uint64 {
	t.handles = append(t.handles, o)
	return uint64(len(t.handles) - 1)
}

// Handle resolves a handle returned by Pin. The handle table is cleared
// at the end of every native call (invokeNative), so handles do not
// outlive the call that produced them.
func (t *Thread) Handle(h uint64) *heap.Object { return t.handles[h] }

func newThread(vm *Machine, stackSlots int) *Thread {
	return &Thread{
		ID:     uuid.New(),
		vm:     vm,
		Stack:  make([]Slot, stackSlots),
		Frame:  -1,
		frames: make([]frameRec, 0, 64),
	}
}

// ThreadID satisfies classfile.Monitor's owner-identity contract.
func (t *Thread) ThreadID() classfile.ThreadID { return t.ID.String() }

// State returns the thread's current run state.
func (t *Thread) State() RunState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// EnterState transitions the thread's cooperation state: before a
// foreign native call and after it, the thread transitions to IdleState
// and back to ActiveState. Entering IdleState never blocks; entering
// ActiveState blocks while another thread holds
// ExclusiveState, so a stop-the-world collector pass (were one wired in)
// could run uninterrupted.
func (t *Thread) EnterState(s RunState) {
	vm := t.vm
	vm.gcMu.Lock()
	defer vm.gcMu.Unlock()

	switch s {
	case ActiveState:
		for vm.exclusiveHeld {
			vm.gcCond.Wait()
		}
		vm.activeCount++
	case IdleState, ZombieState:
		if t.state == ActiveState {
			vm.activeCount--
			if vm.activeCount == 0 {
				vm.gcCond.Broadcast()
			}
		}
	}
	t.state = s
}

func (m *Machine) gcInit() {
	if m.gcCond == nil {
		m.gcCond = sync.NewCond(&m.gcMu)
	}
}
