package interp

import (
	"testing"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/classfinder"
	"github.com/chazu/classrun/pkg/heap"
)

func TestRunMethodMissingClassReturnsError(t *testing.T) {
	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(), nil)
	th := vm.NewThread(32)

	_, err := vm.RunMethod(th, "DoesNotExist", "main", "([Ljava/lang/String;)V", nil, nil)
	if err == nil {
		t.Fatal("expected an error resolving a class the finder doesn't have")
	}
}

func TestRunMethodMissingMethodReturnsNoSuchMethodError(t *testing.T) {
	class := &classfile.Class{Name: "Empty"}
	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)
	th := vm.NewThread(32)

	_, err := vm.RunMethod(th, "Empty", "missing", "()V", nil, nil)
	if _, ok := err.(*NoSuchMethodError); !ok {
		t.Fatalf("expected *NoSuchMethodError, got %v", err)
	}
}

func TestRunMainReturnsZeroOnNormalReturn(t *testing.T) {
	code := &classfile.Code{Bytes: []byte{0xb1}, MaxLocals: 1, MaxStack: 0} // return
	method := &classfile.Method{Name: "main", Spec: "([Ljava/lang/String;)V", Flags: classfile.AccStatic, Code: code, ParamFootprint: 1}
	class := &classfile.Class{Name: "Hello", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)

	if rc := vm.RunMain("Hello", 32, []string{"a", "b"}); rc != 0 {
		t.Fatalf("RunMain = %d, want 0 for a clean return", rc)
	}
}

func TestRunMainReturnsNegativeOneOnUncaughtException(t *testing.T) {
	// aconst_null; arraylength -> NPE, no handler, main never reaches return
	code := &classfile.Code{Bytes: []byte{0x01, 0xbe}, MaxLocals: 1, MaxStack: 1}
	method := &classfile.Method{Name: "main", Spec: "([Ljava/lang/String;)V", Flags: classfile.AccStatic, Code: code, ParamFootprint: 1}
	class := &classfile.Class{Name: "Boom", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)

	if rc := vm.RunMain("Boom", 32, nil); rc != -1 {
		t.Fatalf("RunMain = %d, want -1 for an uncaught exception", rc)
	}
}

func TestRunMainNWithOneThreadMatchesRunMain(t *testing.T) {
	code := &classfile.Code{Bytes: []byte{0xb1}, MaxLocals: 1, MaxStack: 0} // return
	method := &classfile.Method{Name: "main", Spec: "([Ljava/lang/String;)V", Flags: classfile.AccStatic, Code: code, ParamFootprint: 1}
	class := &classfile.Class{Name: "Hello", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)

	if rc := vm.RunMainN("Hello", 32, nil, 1); rc != 0 {
		t.Fatalf("RunMainN(threads=1) = %d, want 0", rc)
	}
}

func TestRunMainNRunsEveryThreadToCompletion(t *testing.T) {
	code := &classfile.Code{Bytes: []byte{0xb1}, MaxLocals: 1, MaxStack: 0} // return
	method := &classfile.Method{Name: "main", Spec: "([Ljava/lang/String;)V", Flags: classfile.AccStatic, Code: code, ParamFootprint: 1}
	class := &classfile.Class{Name: "Hello", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)

	if rc := vm.RunMainN("Hello", 32, []string{"a"}, 8); rc != 0 {
		t.Fatalf("RunMainN(threads=8) = %d, want 0 when every thread returns cleanly", rc)
	}
}

func TestRunMainNReturnsNegativeOneIfAnyThreadThrowsUncaught(t *testing.T) {
	// aconst_null; arraylength -> NPE, no handler, main never reaches return
	code := &classfile.Code{Bytes: []byte{0x01, 0xbe}, MaxLocals: 1, MaxStack: 1}
	method := &classfile.Method{Name: "main", Spec: "([Ljava/lang/String;)V", Flags: classfile.AccStatic, Code: code, ParamFootprint: 1}
	class := &classfile.Class{Name: "Boom", Methods: []*classfile.Method{method}}
	method.Class = class

	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(class), nil)

	if rc := vm.RunMainN("Boom", 32, nil, 4); rc != -1 {
		t.Fatalf("RunMainN(threads=4) = %d, want -1 when every thread throws uncaught", rc)
	}
}

func TestBuildArgvWithStringClassRegistered(t *testing.T) {
	stringClass := &classfile.Class{Name: "java/lang/String"}
	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(stringClass), nil)

	argv := vm.buildArgv([]string{"x", "y", "z"})
	if argv == nil {
		t.Fatal("buildArgv should never return nil when NewObjectArray succeeds")
	}
	if argv.Length != 3 {
		t.Fatalf("argv.Length = %d, want 3", argv.Length)
	}
	for i := 0; i < 3; i++ {
		if argv.GetObject(i) == nil {
			t.Fatalf("argv[%d] should be a non-nil allocated String instance", i)
		}
	}
}

func TestBuildArgvWithoutStringClassFallsBackToNullSlots(t *testing.T) {
	vm := NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(), nil)

	argv := vm.buildArgv([]string{"x", "y"})
	if argv == nil {
		t.Fatal("buildArgv should fall back to a classless array rather than returning nil")
	}
	if argv.Length != 2 {
		t.Fatalf("argv.Length = %d, want 2", argv.Length)
	}
	for i := 0; i < 2; i++ {
		if argv.GetObject(i) != nil {
			t.Fatalf("argv[%d] should be null when java/lang/String isn't on the classpath", i)
		}
	}
}
