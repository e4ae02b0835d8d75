package heap

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/chazu/classrun/pkg/classfile"
)

// Heap is the allocation surface pkg/interp drives: new instances, new
// arrays, and the weak-reference registry that WeakReferenceFlag classes
// feed into.
type Heap interface {
	NewInstance(class *classfile.Class) (*Object, error)
	NewObjectArray(elemClass *classfile.Class, length int) (*Array, error)
	NewPrimitiveArray(kind ArrayKind, length int) (*Array, error)
	WeakReferences() []*Object
}

// ArenaHeap is the one concrete Heap: every cell it hands out lives until
// the process exits. Grounded on run.cpp's make() (pad the fixed size,
// zero the field area, chain through registerWeakReference when flagged)
// with no collection pass, since a GC policy is explicitly out of scope.
//
// budget, if non-zero, caps total bytes handed out across every
// allocation; exceeding it is this port's one reachable source of
// OutOfMemoryError, since an unbounded arena that never collects
// otherwise never fails an allocation the way a real bounded heap would.
type ArenaHeap struct {
	weak   weakRefs
	budget int64
	used   int64
}

// NewArenaHeap returns a heap with no allocation budget: allocations
// never fail for size reasons, matching a process that simply grows
// until the OS kills it.
func NewArenaHeap() *ArenaHeap {
	return &ArenaHeap{}
}

// NewArenaHeapWithBudget returns a heap that raises OutOfMemoryError once
// more than maxBytes total have been allocated through it.
func NewArenaHeapWithBudget(maxBytes int64) *ArenaHeap {
	return &ArenaHeap{budget: maxBytes}
}

// OutOfMemoryError is raised for an allocation that would exceed a
// bounded heap's budget.
type OutOfMemoryError struct {
	Requested int64
	Used      int64
	Budget    int64
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("out of memory: requested %d bytes, %d/%d already used", e.Requested, e.Used, e.Budget)
}

// reserve charges n bytes against the budget, returning an
// *OutOfMemoryError (without charging anything) if that would exceed it.
// A zero budget means unbounded.
func (h *ArenaHeap) reserve(n int64) error {
	if h.budget == 0 {
		return nil
	}
	used := atomic.AddInt64(&h.used, n)
	if used > h.budget {
		atomic.AddInt64(&h.used, -n)
		return &OutOfMemoryError{Requested: n, Used: used - n, Budget: h.budget}
	}
	return nil
}

// NewInstance allocates a zeroed instance of class, registering it in the
// weak-reference chain if the class carries WeakReferenceFlag.
func (h *ArenaHeap) NewInstance(class *classfile.Class) (*Object, error) {
	if class == nil {
		return nil, fmt.Errorf("heap: NewInstance of nil class")
	}
	if class.FixedSize < 0 {
		return nil, fmt.Errorf("heap: class %s has negative fixed size", class.Name)
	}
	if err := h.reserve(int64(class.FixedSize)); err != nil {
		return nil, err
	}
	o := &Object{
		ID:     uuid.New(),
		Class:  class,
		fields: make([]byte, class.FixedSize),
	}
	if class.VMFlags&classfile.WeakReferenceFlag != 0 {
		h.weak.register(o)
	}
	return o, nil
}

// NewObjectArray allocates a fixed-length array of object references,
// all initially nil (the anewarray allocation path).
func (h *ArenaHeap) NewObjectArray(elemClass *classfile.Class, length int) (*Array, error) {
	if length < 0 {
		return nil, negativeArraySizeError(length)
	}
	if err := h.reserve(int64(length) * 8); err != nil {
		return nil, err
	}
	return &Array{
		ID:        uuid.New(),
		Kind:      ArrayObject,
		ElemClass: elemClass,
		Length:    length,
		refs:      make([]*Object, length),
	}, nil
}

// NewPrimitiveArray allocates a fixed-length packed-byte array of the
// given primitive kind (the newarray allocation path).
func (h *ArenaHeap) NewPrimitiveArray(kind ArrayKind, length int) (*Array, error) {
	if length < 0 {
		return nil, negativeArraySizeError(length)
	}
	size := elemSize(kind)
	if size == 0 {
		return nil, fmt.Errorf("heap: NewPrimitiveArray: not a primitive kind: %v", kind)
	}
	if err := h.reserve(int64(length) * int64(size)); err != nil {
		return nil, err
	}
	return &Array{
		ID:     uuid.New(),
		Kind:   kind,
		Length: length,
		bytes:  make([]byte, length*size),
	}, nil
}

// WeakReferences returns a snapshot of the heap's weak-reference chain.
func (h *ArenaHeap) WeakReferences() []*Object {
	return h.weak.snapshot()
}

// NegativeArraySizeError is raised for a negative array-length operand
// to newarray/anewarray/multianewarray.
type NegativeArraySizeError struct {
	Length int
}

func (e *NegativeArraySizeError) Error() string {
	return strconv.Itoa(e.Length)
}

func negativeArraySizeError(length int) error {
	return &NegativeArraySizeError{Length: length}
}
