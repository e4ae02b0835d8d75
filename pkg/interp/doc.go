// Package interp implements the execution core: the operand stack and
// locals view, frame manager, constant-pool resolver, native method
// bridge, exception unwinder, and dispatch loop that together run a
// resolved method to completion.
//
// Everything here is deliberately built around one per-thread mutable
// state block (*Thread) and one VM-wide shared state block (*Machine):
// the dispatch loop reads and writes Thread fields directly rather than
// through an abstraction layer, keeping it a single function with state
// held in local mutable variables.
package interp
