package interp

import (
	"testing"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/classfinder"
	"github.com/chazu/classrun/pkg/heap"
)

func newResolveMachine(classes ...*classfile.Class) *Machine {
	return NewMachine(heap.NewArenaHeap(), classfinder.NewMapFinder(classes...), nil)
}

func TestResolveClassPublishesOnFirstUse(t *testing.T) {
	obj := &classfile.Class{Name: "java/lang/Object"}
	vm := newResolveMachine(obj)

	pool := classfile.NewConstantPool(1)
	pool.SetClassName(0, "java/lang/Object")

	c, err := vm.resolveClass(pool, 0)
	if err != nil {
		t.Fatalf("resolveClass: %v", err)
	}
	if c != obj {
		t.Fatal("resolveClass should return the class the finder resolved")
	}
	if pool.ResolvedClass(0) != obj {
		t.Fatal("resolveClass should publish the resolution back into the pool slot")
	}

	// A second resolution is a no-op returning the same handle, without
	// consulting the finder again.
	c2, err := vm.resolveClass(pool, 0)
	if err != nil || c2 != obj {
		t.Fatalf("second resolveClass = (%v, %v), want (%v, nil)", c2, err, obj)
	}
}

func TestResolveClassPropagatesFinderError(t *testing.T) {
	vm := newResolveMachine()
	pool := classfile.NewConstantPool(1)
	pool.SetClassName(0, "Missing")

	if _, err := vm.resolveClass(pool, 0); err == nil {
		t.Fatal("expected an error resolving a class the finder doesn't have")
	}
}

func TestResolveFieldWalksSuperclassChain(t *testing.T) {
	base := &classfile.Class{Name: "Base", Fields: []*classfile.Field{
		{Name: "x", Spec: "I", Code: classfile.IntField},
	}}
	derived := &classfile.Class{Name: "Derived", Super: base}
	vm := newResolveMachine(base, derived)

	pool := classfile.NewConstantPool(1)
	pool.SetFieldRef(0, classfile.SymbolicRef{ClassName: "Derived", Name: "x", Spec: "I"})

	f, err := vm.resolveField(pool, 0)
	if err != nil {
		t.Fatalf("resolveField: %v", err)
	}
	if f != base.Fields[0] {
		t.Fatal("resolveField should find x declared on the superclass")
	}
}

func TestResolveFieldNoSuchField(t *testing.T) {
	class := &classfile.Class{Name: "Empty"}
	vm := newResolveMachine(class)

	pool := classfile.NewConstantPool(1)
	pool.SetFieldRef(0, classfile.SymbolicRef{ClassName: "Empty", Name: "missing", Spec: "I"})

	_, err := vm.resolveField(pool, 0)
	if _, ok := err.(*NoSuchFieldError); !ok {
		t.Fatalf("expected *NoSuchFieldError, got %v", err)
	}
}

func TestResolveMethodNoSuchMethod(t *testing.T) {
	class := &classfile.Class{Name: "Empty"}
	vm := newResolveMachine(class)

	pool := classfile.NewConstantPool(1)
	pool.SetMethodRef(0, classfile.SymbolicRef{ClassName: "Empty", Name: "missing", Spec: "()V"})

	_, err := vm.resolveMethod(pool, 0)
	if _, ok := err.(*NoSuchMethodError); !ok {
		t.Fatalf("expected *NoSuchMethodError, got %v", err)
	}
}

func TestResolveFieldRecordsOwnerInResolutionCache(t *testing.T) {
	base := &classfile.Class{Name: "Base", Fields: []*classfile.Field{
		{Name: "x", Spec: "I", Code: classfile.IntField},
	}}
	derived := &classfile.Class{Name: "Derived", Super: base}
	vm := newResolveMachine(base, derived)
	vm.ResCache = &classfile.ResolutionCache{}

	pool := classfile.NewConstantPool(1)
	pool.SetFieldRef(0, classfile.SymbolicRef{ClassName: "Derived", Name: "x", Spec: "I"})

	if _, err := vm.resolveField(pool, 0); err != nil {
		t.Fatalf("resolveField: %v", err)
	}

	owner, ok := vm.ResCache.Lookup("Derived", 0)
	if !ok || owner != "Base" {
		t.Fatalf("ResCache.Lookup(Derived, 0) = (%q, %v), want (Base, true)", owner, ok)
	}
}

func TestResolveFieldUsesCacheHintAsStartingPoint(t *testing.T) {
	base := &classfile.Class{Name: "Base", Fields: []*classfile.Field{
		{Name: "x", Spec: "I", Code: classfile.IntField},
	}}
	derived := &classfile.Class{Name: "Derived", Super: base}
	vm := newResolveMachine(base, derived)
	vm.ResCache = &classfile.ResolutionCache{}
	vm.ResCache.Record("Derived", 0, "Base")

	pool := classfile.NewConstantPool(1)
	pool.SetFieldRef(0, classfile.SymbolicRef{ClassName: "Derived", Name: "x", Spec: "I"})

	f, err := vm.resolveField(pool, 0)
	if err != nil {
		t.Fatalf("resolveField: %v", err)
	}
	if f != base.Fields[0] {
		t.Fatal("resolveField should still return the real field even when primed by a cache hint")
	}
}

func TestResolveFieldFallsBackWhenCacheHintIsStale(t *testing.T) {
	base := &classfile.Class{Name: "Base", Fields: []*classfile.Field{
		{Name: "x", Spec: "I", Code: classfile.IntField},
	}}
	derived := &classfile.Class{Name: "Derived", Super: base}
	vm := newResolveMachine(base, derived)
	vm.ResCache = &classfile.ResolutionCache{}
	// A forged/stale hint naming a class that doesn't actually declare x.
	vm.ResCache.Record("Derived", 0, "Derived")

	pool := classfile.NewConstantPool(1)
	pool.SetFieldRef(0, classfile.SymbolicRef{ClassName: "Derived", Name: "x", Spec: "I"})

	f, err := vm.resolveField(pool, 0)
	if err != nil {
		t.Fatalf("resolveField: %v", err)
	}
	if f != base.Fields[0] {
		t.Fatal("a stale cache hint should cost a wasted lookup, never a wrong resolution")
	}
}

func TestResolveMethodRecordsOwnerInResolutionCache(t *testing.T) {
	base := &classfile.Class{Name: "Base", Methods: []*classfile.Method{
		{Name: "greet", Spec: "()V"},
	}}
	derived := &classfile.Class{Name: "Derived", Super: base}
	vm := newResolveMachine(base, derived)
	vm.ResCache = &classfile.ResolutionCache{}

	pool := classfile.NewConstantPool(1)
	pool.SetMethodRef(0, classfile.SymbolicRef{ClassName: "Derived", Name: "greet", Spec: "()V"})

	if _, err := vm.resolveMethod(pool, 0); err != nil {
		t.Fatalf("resolveMethod: %v", err)
	}

	owner, ok := vm.ResCache.Lookup("Derived", 0)
	if !ok || owner != "Base" {
		t.Fatalf("ResCache.Lookup(Derived, 0) = (%q, %v), want (Base, true)", owner, ok)
	}
}

func TestFindMethodUsesVTableOffset(t *testing.T) {
	declared := &classfile.Method{Name: "m", Spec: "()V", VTableOffset: 2}
	override := &classfile.Method{Name: "m", Spec: "()V", VTableOffset: 2}
	class := &classfile.Class{Name: "C", VTable: []*classfile.Method{nil, nil, override}}

	if got := findMethod(declared, class); got != override {
		t.Fatal("findMethod should index the receiver's vtable by the declared method's offset")
	}
}

func TestFindInterfaceMethodLooksUpByInterfaceIdentity(t *testing.T) {
	iface := &classfile.Class{Name: "IFoo"}
	declared := &classfile.Method{Name: "bar", Spec: "()V", VTableOffset: 0, Class: iface}
	impl := &classfile.Method{Name: "bar", Spec: "()V"}
	implClass := &classfile.Class{
		Name:       "Impl",
		Interfaces: []classfile.InterfaceTableEntry{{Interface: iface, Dispatch: []*classfile.Method{impl}}},
	}

	h := heap.NewArenaHeap()
	o, err := h.NewInstance(implClass)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}

	if got := findInterfaceMethod(declared, o); got != impl {
		t.Fatal("findInterfaceMethod should return the implementing class's dispatch entry")
	}
}

func TestFindInterfaceMethodPanicsWhenInterfaceTableMissesEntry(t *testing.T) {
	iface := &classfile.Class{Name: "IFoo"}
	declared := &classfile.Method{Name: "bar", Spec: "()V", VTableOffset: 0, Class: iface}
	implClass := &classfile.Class{Name: "Impl"} // no Interfaces entries at all

	h := heap.NewArenaHeap()
	o, _ := h.NewInstance(implClass)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when the interface table has no entry for the declared interface")
		}
	}()
	findInterfaceMethod(declared, o)
}

func TestIsSpecialMethodForSuperCall(t *testing.T) {
	base := &classfile.Class{Name: "Base"}
	derived := &classfile.Class{Name: "Derived", Super: base, Flags: classfile.AccSuper}
	method := &classfile.Method{Name: "greet", Spec: "()V", Class: base}

	if !isSpecialMethod(method, derived) {
		t.Fatal("expected a super-flagged subclass calling a non-<init> superclass method to be special")
	}
}

func TestIsSpecialMethodFalseForInit(t *testing.T) {
	base := &classfile.Class{Name: "Base"}
	derived := &classfile.Class{Name: "Derived", Super: base, Flags: classfile.AccSuper}
	ctor := &classfile.Method{Name: "<init>", Spec: "()V", Class: base}

	if isSpecialMethod(ctor, derived) {
		t.Fatal("a constructor call should never resolve as a special super dispatch")
	}
}

func TestInstanceOfNullIsAlwaysFalse(t *testing.T) {
	class := &classfile.Class{Name: "C"}
	if instanceOf(class, nil) {
		t.Fatal("instanceOf(C, null) must be false for every C")
	}
}

func TestInstanceOfWalksSuperclassChain(t *testing.T) {
	base := &classfile.Class{Name: "Base"}
	derived := &classfile.Class{Name: "Derived", Super: base}

	h := heap.NewArenaHeap()
	o, _ := h.NewInstance(derived)

	if !instanceOf(base, o) {
		t.Fatal("a Derived instance should be instanceOf Base")
	}
	if instanceOf(&classfile.Class{Name: "Unrelated"}, o) {
		t.Fatal("a Derived instance should not be instanceOf an unrelated class")
	}
}

func TestInstanceOfInterfaceChecksImplementedSet(t *testing.T) {
	iface := &classfile.Class{Name: "IFoo", Flags: classfile.AccInterface}
	class := &classfile.Class{Name: "Impl", Interfaces: []classfile.InterfaceTableEntry{{Interface: iface}}}

	h := heap.NewArenaHeap()
	o, _ := h.NewInstance(class)

	if !instanceOf(iface, o) {
		t.Fatal("Impl implements IFoo, so instanceOf should report true")
	}
}
