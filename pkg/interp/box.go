package interp

import (
	"fmt"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// excMeta carries the fields a real Throwable layout would hold (message,
// cause, captured trace) without requiring a compiled java/lang/Throwable
// class on the classpath just to run the core. Keyed by object identity
// and guarded by its own lock since exceptions can be boxed from any
// thread's unwind.
type excMeta struct {
	Message string
	Cause   *heap.Object
	Trace   []TraceElement
}

func (vm *Machine) excMetaFor(o *heap.Object) *excMeta {
	vm.excMu.Lock()
	defer vm.excMu.Unlock()
	if vm.excMetas == nil {
		vm.excMetas = make(map[*heap.Object]*excMeta)
	}
	m := vm.excMetas[o]
	if m == nil {
		m = &excMeta{}
		vm.excMetas[o] = m
	}
	return m
}

func messageOf(o *heap.Object) string {
	if o == nil || o.Meta == nil {
		return ""
	}
	return o.Meta.(*excMeta).Message
}

func causeOf(o *heap.Object) *heap.Object {
	if o == nil || o.Meta == nil {
		return nil
	}
	return o.Meta.(*excMeta).Cause
}

func traceOf(o *heap.Object) []TraceElement {
	if o == nil || o.Meta == nil {
		return nil
	}
	return o.Meta.(*excMeta).Trace
}

// exceptionClassName maps this port's internal Go error types to their
// java/lang exception class names.
func exceptionClassName(err error) string {
	switch err.(type) {
	case *NullPointerException:
		return "java/lang/NullPointerException"
	case *ArrayIndexOutOfBoundsException:
		return "java/lang/ArrayIndexOutOfBoundsException"
	case *heap.NegativeArraySizeError:
		return "java/lang/NegativeArraySizeException"
	case *heap.OutOfMemoryError:
		return "java/lang/OutOfMemoryError"
	case *ClassCastException:
		return "java/lang/ClassCastException"
	case *ArithmeticException:
		return "java/lang/ArithmeticException"
	case *StackOverflowError:
		return "java/lang/StackOverflowError"
	case *NoSuchFieldError:
		return "java/lang/NoSuchFieldError"
	case *NoSuchMethodError:
		return "java/lang/NoSuchMethodError"
	case *UnsatisfiedLinkError:
		return "java/lang/UnsatisfiedLinkError"
	default:
		return "java/lang/Error"
	}
}

// box allocates (or synthesizes, if the classpath carries no real
// java/lang/* hierarchy) a Throwable instance for a Go-side error raised
// by the interpreter itself, and attaches the current trace. User-thrown
// exceptions (athrow) are already *heap.Object and never pass through
// box.
func (t *Thread) box(err error) *heap.Object {
	name := exceptionClassName(err)
	class, e := t.vm.resolveClassByName(name)
	if e != nil || class == nil {
		class = t.vm.syntheticExceptionClass(name)
	}
	o, allocErr := t.vm.Heap.NewInstance(class)
	if allocErr != nil {
		panic(fmt.Sprintf("interp: failed to box %s: %v", name, allocErr))
	}
	meta := t.vm.excMetaFor(o)
	meta.Message = err.Error()
	meta.Trace = t.snapshotTrace()
	o.Meta = meta
	return o
}

// syntheticExceptionClass returns (creating and caching on first use) a
// minimal zero-field class standing in for a java/lang/* exception type
// the classpath doesn't define. This lets the core run standalone tests
// without a full java.lang bootstrap, while a real classpath's own
// Throwable subclasses take priority whenever the finder resolves them.
func (vm *Machine) syntheticExceptionClass(name string) *classfile.Class {
	vm.excMu.Lock()
	defer vm.excMu.Unlock()
	if vm.synthClasses == nil {
		vm.synthClasses = make(map[string]*classfile.Class)
	}
	if c, ok := vm.synthClasses[name]; ok {
		return c
	}
	c := &classfile.Class{Name: name}
	vm.synthClasses[name] = c
	return c
}
