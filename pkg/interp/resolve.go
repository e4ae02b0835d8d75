package interp

import (
	"fmt"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// NoSuchFieldError and NoSuchMethodError are link errors raised by the
// resolver.
type NoSuchFieldError struct{ Message string }

func (e *NoSuchFieldError) Error() string { return e.Message }

type NoSuchMethodError struct{ Message string }

func (e *NoSuchMethodError) Error() string { return e.Message }

// resolveClass resolves pool[index] to a *classfile.Class, asking the
// machine's class finder on first use and publishing the result so a
// second resolution of the same slot is a no-op returning the same handle.
func (vm *Machine) resolveClass(pool *classfile.ConstantPool, index int) (*classfile.Class, error) {
	if c := pool.ResolvedClass(index); c != nil {
		return c, nil
	}
	name := pool.ClassName(index)
	c, err := vm.resolveClassByName(name)
	if err != nil {
		return nil, err
	}
	return pool.PublishClass(index, c), nil
}

// resolveField resolves pool[index] to a *classfile.Field, walking the
// target class's ancestor chain for a byte-exact {name, spec} match. If
// the machine has a resolution cache loaded from a prior run and it
// names the ancestor that previously satisfied this exact slot, that
// ancestor is tried first; either way the field found is re-verified and
// re-recorded, so a stale or forged cache entry can only cost a wasted
// lookup, never a wrong resolution.
func (vm *Machine) resolveField(pool *classfile.ConstantPool, index int) (*classfile.Field, error) {
	if f := pool.ResolvedField(index); f != nil {
		return f, nil
	}
	ref := pool.SymbolicRef(index)
	class, err := vm.resolveClassByName(ref.ClassName)
	if err != nil {
		return nil, err
	}

	if vm.ResCache != nil {
		if owner, ok := vm.ResCache.Lookup(ref.ClassName, index); ok {
			if c, err := vm.resolveClassByName(owner); err == nil {
				if f := findFieldOn(c, ref); f != nil {
					return pool.PublishField(index, f), nil
				}
			}
		}
	}

	for c := class; c != nil; c = c.Super {
		if f := findFieldOn(c, ref); f != nil {
			if vm.ResCache != nil {
				vm.ResCache.Record(ref.ClassName, index, c.Name)
			}
			return pool.PublishField(index, f), nil
		}
	}
	return nil, &NoSuchFieldError{Message: fmt.Sprintf("%s %s not found in %s", ref.Name, ref.Spec, ref.ClassName)}
}

func findFieldOn(c *classfile.Class, ref classfile.SymbolicRef) *classfile.Field {
	for _, f := range c.Fields {
		if f.Name == ref.Name && f.Spec == ref.Spec {
			return f
		}
	}
	return nil
}

// resolveMethod resolves pool[index] to a *classfile.Method, consulting
// and refreshing the machine's resolution cache the same way
// resolveField does.
func (vm *Machine) resolveMethod(pool *classfile.ConstantPool, index int) (*classfile.Method, error) {
	if m := pool.ResolvedMethod(index); m != nil {
		return m, nil
	}
	ref := pool.SymbolicRef(index)
	class, err := vm.resolveClassByName(ref.ClassName)
	if err != nil {
		return nil, err
	}

	if vm.ResCache != nil {
		if owner, ok := vm.ResCache.Lookup(ref.ClassName, index); ok {
			if c, err := vm.resolveClassByName(owner); err == nil {
				if m := findMethodOn(c, ref); m != nil {
					return pool.PublishMethod(index, m), nil
				}
			}
		}
	}

	for c := class; c != nil; c = c.Super {
		if m := findMethodOn(c, ref); m != nil {
			if vm.ResCache != nil {
				vm.ResCache.Record(ref.ClassName, index, c.Name)
			}
			return pool.PublishMethod(index, m), nil
		}
	}
	return nil, &NoSuchMethodError{Message: fmt.Sprintf("%s %s not found in %s", ref.Name, ref.Spec, ref.ClassName)}
}

func findMethodOn(c *classfile.Class, ref classfile.SymbolicRef) *classfile.Method {
	for _, m := range c.Methods {
		if m.Name == ref.Name && m.Spec == ref.Spec {
			return m
		}
	}
	return nil
}

// findMethod performs virtual dispatch by vtable offset.
func findMethod(method *classfile.Method, class *classfile.Class) *classfile.Method {
	return class.VTable[method.VTableOffset]
}

// findInterfaceMethod scans o's class's interface table for the entry
// keyed by method's declaring interface, then indexes its dispatch array
// by the method's vtable offset. A miss is a fatal internal error: the
// class loader guarantees every implemented interface has an
// interface-table entry.
func findInterfaceMethod(method *classfile.Method, o *heap.Object) *classfile.Method {
	iface := method.Class
	for _, entry := range o.Class.Interfaces {
		if entry.Interface == iface {
			return entry.Dispatch[method.VTableOffset]
		}
	}
	panic(fmt.Sprintf("interp: interface %s not found in %s's interface table", iface.Name, o.Class.Name))
}

// isSpecialMethod reports whether invokespecial should fold its target to
// a super-class dispatch rather than the statically named method.
func isSpecialMethod(method *classfile.Method, class *classfile.Class) bool {
	return class.IsSuperFlagged() &&
		method.Name != "<init>" &&
		method.Class.IsSuperclassOf(class)
}

// instanceOf reports whether o is an instance of class, per the usual
// Java instanceof semantics for both interfaces and regular classes.
// instanceOf(C, nil) is false for every C.
func instanceOf(class *classfile.Class, o *heap.Object) bool {
	if o == nil {
		return false
	}
	if class.IsInterface() {
		for oc := o.Class; oc != nil; oc = oc.Super {
			for _, entry := range oc.Interfaces {
				if entry.Interface == class {
					return true
				}
			}
		}
		return false
	}
	for oc := o.Class; oc != nil; oc = oc.Super {
		if oc == class {
			return true
		}
	}
	return false
}
