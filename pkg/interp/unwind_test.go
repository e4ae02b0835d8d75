package interp

import (
	"testing"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/classfinder"
	"github.com/chazu/classrun/pkg/heap"
)

// A frame with a handler whose CatchType resolves to a real superclass of
// the thrown exception's class should match, even though the handler
// names a less specific type than what was thrown.
func TestUnwindMatchesByInstanceOfNotExactType(t *testing.T) {
	base := &classfile.Class{Name: "MyException"}
	derived := &classfile.Class{Name: "MySubException", Super: base}

	pool := classfile.NewConstantPool(1)
	pool.SetClassName(0, "MyException")

	code := &classfile.Code{
		Bytes: []byte{0x01, 0xbe, 0xac, 0x57, 0x10, 0x2a, 0xac},
		Handlers: []classfile.ExceptionHandler{
			{StartPc: 0, EndPc: 3, HandlerPc: 3, CatchType: 1},
		},
		Pool: pool,
	}
	method := &classfile.Method{Name: "m", Spec: "()I", Flags: classfile.AccStatic, Code: code}
	class := &classfile.Class{Name: "Owner", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(base, derived, class), nil)
	th := vm.NewThread(64)

	th.pushFrame(method)
	th.IP = 2 // simulate having just executed arraylength at pc=1, fault observed at pc=1
	th.frames[0].IP = th.IP

	exc, err := vm.Heap.NewInstance(derived)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	th.Exception = exc

	if !th.unwind() {
		t.Fatal("expected unwind to find the catch-MyException handler for a thrown MySubException")
	}
	if th.Exception != nil {
		t.Fatal("unwind should clear the exception once a handler matches")
	}
	if th.IP != 3 {
		t.Fatalf("IP = %d, want 3 (the handler pc)", th.IP)
	}
}

// A handler range that doesn't cover the faulting pc must not match, even
// though the exception type would otherwise be compatible.
func TestUnwindIgnoresHandlerOutsideRange(t *testing.T) {
	code := &classfile.Code{
		Bytes: []byte{0x01, 0xbe, 0xac, 0x57, 0x10, 0x2a, 0xac},
		Handlers: []classfile.ExceptionHandler{
			{StartPc: 10, EndPc: 20, HandlerPc: 3, CatchType: 0},
		},
	}
	method := &classfile.Method{Name: "m", Spec: "()I", Flags: classfile.AccStatic, Code: code}

	vm := NewMachine(heap.NewArenaHeap(), nil, nil)
	th := vm.NewThread(64)
	th.pushFrame(method)
	th.IP = 2
	th.frames[0].IP = th.IP
	th.Exception = th.box(&NullPointerException{})

	if th.unwind() {
		t.Fatal("a handler outside the faulting pc's range must not match")
	}
	if th.Exception == nil {
		t.Fatal("exception should remain set once no frame catches it")
	}
}

// Two nested synchronized frames, fault in the inner one, no handler
// anywhere: both monitors must be released as unwind walks past them.
func TestUnwindReleasesEveryUnmatchedSynchronizedFrame(t *testing.T) {
	outerClass := &classfile.Class{Name: "Outer"}
	innerClass := &classfile.Class{Name: "Inner"}

	outerCode := &classfile.Code{Bytes: []byte{0x00}}
	outer := &classfile.Method{Name: "outer", Spec: "()V", Flags: classfile.AccStatic | classfile.AccSynchronized, Code: outerCode, Class: outerClass}

	innerCode := &classfile.Code{Bytes: []byte{0x01, 0xbe, 0xac}}
	inner := &classfile.Method{Name: "inner", Spec: "()I", Flags: classfile.AccStatic | classfile.AccSynchronized, Code: innerCode, Class: innerClass}

	vm := NewMachine(heap.NewArenaHeap(), nil, nil)
	th := vm.NewThread(64)

	th.pushFrame(outer)
	th.pushFrame(inner)
	th.IP = 2
	th.frames[th.Frame].IP = th.IP
	th.Exception = th.box(&NullPointerException{})

	if th.unwind() {
		t.Fatal("expected no handler anywhere in the chain")
	}
	if outerClass.Monitor().HeldBy(th.ThreadID()) {
		t.Fatal("outer frame's monitor should be released once unwind walks past it")
	}
	if innerClass.Monitor().HeldBy(th.ThreadID()) {
		t.Fatal("inner frame's monitor should be released once unwind walks past it")
	}
}

func TestUnwindStopsAtNativeFrameWithoutCatching(t *testing.T) {
	nativeMethod := &classfile.Method{Name: "n", Spec: "()V", Flags: classfile.AccStatic | classfile.AccNative}

	vm := NewMachine(heap.NewArenaHeap(), nil, nil)
	th := vm.NewThread(64)
	th.frames = append(th.frames, frameRec{Base: 0, Method: nativeMethod, IP: 0, Next: -1})
	th.Frame = 0
	th.Exception = th.box(&NullPointerException{})

	if th.unwind() {
		t.Fatal("a native frame can never catch, so unwind must report no match")
	}
}
