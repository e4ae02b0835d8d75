// Package natives supplies the built-in native method table: the handful
// of functions the core needs bound without a real dynamic-library chain
// behind them (println-style output, identity hash, a zero-valued clock,
// array copy). Grounded on run.cpp's built-in function table and on the
// teacher's lib/runtime/bridge.go pattern of a name-keyed function map
// satisfying a fixed call signature.
package natives

import (
	"fmt"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// Table is a name-keyed NativeFunc map, implementing interp.Machine's
// NativeTable contract without pkg/natives needing to import pkg/interp
// (the Thread argument is received as `any` per classfile.NativeFunc's
// signature and type-asserted at the call boundary).
type Table struct {
	funcs map[string]classfile.NativeFunc
}

// threadRef is the subset of *interp.Thread a builtin needs: pinning and
// resolving object handles across the call boundary, without importing
// pkg/interp (which already imports pkg/natives' consumer, pkg/heap).
type threadRef interface {
	Pin(o *heap.Object) uint64
	Handle(h uint64) *heap.Object
}

const noHandle = ^uint64(0)

// NewTable builds the standard built-in set.
func NewTable() *Table {
	t := &Table{funcs: make(map[string]classfile.NativeFunc)}
	t.funcs["println"] = builtinPrintln
	t.funcs["identityHash"] = builtinIdentityHash
	t.funcs["currentTimeMillis"] = builtinCurrentTimeMillis
	t.funcs["arraycopy"] = builtinArraycopy
	return t
}

// Put registers or replaces a builtin by symbol, letting a caller extend
// the default set (e.g. a test registering a stub for a classpath-defined
// native method).
func (t *Table) Put(symbol string, fn classfile.NativeFunc) {
	t.funcs[symbol] = fn
}

// Resolve satisfies interp.Machine's NativeTable contract. Every symbol
// this table knows is a builtin: it runs without leaving ActiveState.
func (t *Table) Resolve(symbol string) (classfile.NativeFunc, bool, bool) {
	fn, ok := t.funcs[symbol]
	return fn, true, ok
}

// builtinPrintln writes args[0] (the first declared argument, after the
// implicit thread/receiver slots) to stdout as a decimal integer. A real
// println overload set would dispatch on descriptor; this core only needs
// enough to make an end-to-end run observable.
func builtinPrintln(thread any, args []uint64) uint64 {
	if len(args) > 0 {
		fmt.Println(int32(uint32(args[0])))
	} else {
		fmt.Println()
	}
	return 0
}

// builtinIdentityHash returns a stable per-object identity value derived
// from the object's allocation-time UUID, standing in for
// System.identityHashCode (a real identity hash derived from heap address
// has no meaning once nothing ever relocates, so the UUID already unique
// per instance serves the same purpose).
func builtinIdentityHash(thread any, args []uint64) uint64 {
	tr, ok := thread.(threadRef)
	if !ok || len(args) == 0 {
		return 0
	}
	o := tr.Handle(args[0])
	if o == nil {
		return 0
	}
	b := o.ID
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24
}

// builtinCurrentTimeMillis always returns 0: real wall-clock behavior is
// explicitly out of scope, but the symbol is bound so classpath code
// calling it doesn't fail to link.
func builtinCurrentTimeMillis(thread any, args []uint64) uint64 {
	return 0
}

// builtinArraycopy is a stub: array references don't yet marshal through
// the native ABI as anything richer than an opaque pointer handle, so
// there is nothing here to copy between. Bound anyway so linking a method
// that calls it doesn't fail outright.
func builtinArraycopy(thread any, args []uint64) uint64 {
	return 0
}
