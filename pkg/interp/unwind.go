package interp

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// NullPointerException, ArrayIndexOutOfBoundsException, NegativeArraySizeException,
// ClassCastException and ArithmeticException are the language-visible
// traps the dispatch loop raises directly. They carry a Go error for
// internal propagation; Throwable carries the user-visible object form
// once boxed (see box.go).
type NullPointerException struct{}

func (e *NullPointerException) Error() string { return "null pointer" }

type ArrayIndexOutOfBoundsException struct{ Index, Length int }

func (e *ArrayIndexOutOfBoundsException) Error() string {
	return fmt.Sprintf("%d not in [0,%d]", e.Index, e.Length)
}

type ClassCastException struct{ Actual, Target string }

func (e *ClassCastException) Error() string {
	return fmt.Sprintf("%s as %s", e.Actual, e.Target)
}

type ArithmeticException struct{ Message string }

func (e *ArithmeticException) Error() string { return e.Message }

// unwind walks the frame chain from the current frame to the root looking
// for a handler that covers the faulting pc and matches exc's class. On
// a match it truncates the stack, sets ip to the handler, pushes exc,
// clears t.Exception, and returns true so the dispatch loop can fall
// back into fetch-decode. On no match across every frame it prints the
// uncaught-exception trace and returns false.
func (t *Thread) unwind() bool {
	if t.Frame >= 0 {
		t.frames[t.Frame].IP = t.IP
	}

	exc := t.Exception

	for f := t.Frame; f >= 0; f = t.frames[f].Next {
		method := t.frames[f].Method
		if method.IsNative() {
			t.releaseFrameMonitor(t.frames[f])
			return false
		}

		code := method.Code
		faultPc := t.frames[f].IP - 1
		for _, eh := range code.Handlers {
			if faultPc < eh.StartPc || faultPc >= eh.EndPc {
				continue
			}

			var catchType *classfile.Class
			if eh.CatchType != 0 {
				var err error
				catchType, err = t.vm.resolveClass(code.Pool, eh.CatchType-1)
				if err != nil {
					t.Exception = t.box(err)
					return t.unwind()
				}
			}

			if catchType == nil || instanceOf(catchType, exc) {
				t.Frame = f
				t.SP = t.frames[f].Base + FrameFootprint
				t.IP = eh.HandlerPc
				t.Code = code
				t.Base = t.frames[f].Base
				t.PushObject(exc)
				t.Exception = nil
				return true
			}
		}

		// f doesn't catch: it is being left via an exceptional exit, which
		// releases its monitor the same as a normal return would.
		t.releaseFrameMonitor(t.frames[f])
	}

	t.printUncaught(exc)
	return false
}

// printUncaught renders the cause chain to stderr and, if the machine has
// a crash sink wired, persists it.
func (t *Thread) printUncaught(exc *heap.Object) {
	var b strings.Builder
	for i, e := 0, exc; e != nil; i, e = i+1, causeOf(e) {
		if i > 0 {
			fmt.Fprint(&b, "caused by: ")
		}
		fmt.Fprint(&b, e.Class.Name)
		if msg := messageOf(e); msg != "" {
			fmt.Fprintf(&b, ": %s\n", msg)
		} else {
			fmt.Fprint(&b, "\n")
		}
		for _, te := range traceOf(e) {
			fmt.Fprintf(&b, "  at %s.%s ", te.Method.Class.Name, te.Method.Name)
			switch line := te.Method.Code.LineNumber(te.IP); line {
			case classfile.NativeLine:
				fmt.Fprint(&b, "(native)\n")
			case classfile.UnknownLine:
				fmt.Fprint(&b, "(unknown line)\n")
			default:
				fmt.Fprintf(&b, "(line %d)\n", line)
			}
		}
	}

	fmt.Fprint(os.Stderr, b.String())

	if t.vm.Crash != nil {
		msg := messageOf(exc)
		_ = t.vm.Crash.RecordUncaught(exc.Class.Name, msg, b.String())
	}
}

// TraceElement is one frame of a captured stack trace.
type TraceElement struct {
	Method *classfile.Method
	IP     int
}

// snapshotTrace captures the current frame chain as a trace, taken at
// throw time the way athrow/the allocator captures Throwable.trace.
func (t *Thread) snapshotTrace() []TraceElement {
	trace := make([]TraceElement, 0, len(t.frames))
	for f := t.Frame; f >= 0; f = t.frames[f].Next {
		ip := t.frames[f].IP
		if f == t.Frame {
			ip = t.IP
		}
		trace = append(trace, TraceElement{Method: t.frames[f].Method, IP: ip})
	}
	return trace
}
