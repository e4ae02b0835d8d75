package interp

import (
	"fmt"
	"sync"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/classfinder"
	"github.com/chazu/classrun/pkg/heap"
)

// CrashSink is the contract pkg/crashlog implements: persist an uncaught
// exception's head class/message and rendered trace.
type CrashSink interface {
	RecordUncaught(className, message, trace string) error
}

// ProfileSink is the contract pkg/profile implements: count opcode
// dispatches. Never on pkg/interp's hot-path when nil.
type ProfileSink interface {
	Observe(opcode byte)
}

// Machine is the VM-wide shared state every thread operates against: the
// heap, the class finder, the dynamic-library chain and built-in table
// for native binding, and optional crash/profile sinks — global mutable
// VM state held as explicit fields of a Machine value threaded through
// all operations, rather than package-level globals.
type Machine struct {
	Heap    heap.Heap
	Finder  classfinder.ClassFinder
	Natives NativeTable

	Crash    CrashSink
	Profile  ProfileSink
	Trace    bool
	ResCache *classfile.ResolutionCache

	mu      sync.Mutex
	threads []*Thread

	gcMu          sync.Mutex
	gcCond        *sync.Cond
	exclusiveHeld bool
	activeCount   int

	excMu        sync.Mutex
	excMetas     map[*heap.Object]*excMeta
	synthClasses map[string]*classfile.Class
}

// NativeTable resolves a native method's symbol to a bound function and
// reports whether the hit came from the built-in table, matching
// run.cpp's resolveNativeMethodData: its library chain is tried first,
// and only a miss across every library falls back to the built-in map.
// LibraryChain is the concrete implementation that walks a Library chain
// before falling back to a builtin NativeTable (pkg/natives.Table, by
// default); a bare *natives.Table with no libraries in front of it also
// satisfies this contract directly, for configurations with nothing to
// dynamically load.
type NativeTable interface {
	// Resolve returns the bound function for symbol and whether it is a
	// builtin (true: do not leave ActiveState for the call).
	Resolve(symbol string) (fn classfile.NativeFunc, builtin bool, ok bool)
}

// NewMachine wires a heap and class finder into a fresh machine. natives
// may be nil, in which case no native method ever resolves.
func NewMachine(h heap.Heap, finder classfinder.ClassFinder, natives NativeTable) *Machine {
	m := &Machine{Heap: h, Finder: finder, Natives: natives}
	m.gcInit()
	return m
}

// NewThread creates a root thread attached to this machine with a
// StackSizeInWords/2-slot operand/locals stack (the other half of the
// word budget is reserved for checkStack's own accounting).
func (vm *Machine) NewThread(stackSlots int) *Thread {
	t := newThread(vm, stackSlots)
	vm.mu.Lock()
	vm.threads = append(vm.threads, t)
	vm.mu.Unlock()
	return t
}

// resolveClassByName asks the finder for a class, wrapping a nil finder
// as a hard configuration error rather than a nil-pointer panic.
func (vm *Machine) resolveClassByName(name string) (*classfile.Class, error) {
	if vm.Finder == nil {
		return nil, fmt.Errorf("interp: no class finder configured, cannot resolve %s", name)
	}
	return vm.Finder.FindClass(name)
}
