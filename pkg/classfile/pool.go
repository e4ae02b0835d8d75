package classfile

import "sync/atomic"

// ValueKind tags a literal or reference Value: primitives vs. objects
// need to be told apart by something other than their bit pattern.
type ValueKind byte

const (
	KindInt ValueKind = iota
	KindLong
	KindFloat  // IEEE-754 bit pattern stored in I32
	KindDouble // IEEE-754 bit pattern stored in I64
	KindString
	KindObject
)

// Value is a tagged literal or object reference, used for the constant pool
// and for a class's static table. Obj holds whatever concrete reference
// type the heap implementation uses (pkg/heap does not need to be imported
// here to avoid a cycle; pkg/interp and pkg/heap agree on the concrete type
// at the Obj site).
type Value struct {
	Kind ValueKind
	I32  int32
	I64  int64
	Str  string
	Obj  any
}

// PoolKind tags what a ConstantPool slot currently holds.
type PoolKind byte

const (
	// Symbolic forms, rewritten in place on first resolution.
	PoolClassName   PoolKind = iota // byte-array class name, not yet resolved
	PoolFieldRef                    // {ClassName, Name, Spec} triple, not yet resolved
	PoolMethodRef                   // {ClassName, Name, Spec} triple, not yet resolved

	// Resolved forms.
	PoolClass
	PoolFieldEntry
	PoolMethodEntry

	// Literals, never rewritten.
	PoolLiteral
)

// SymbolicRef is an unresolved {class, name, spec} reference triple.
type SymbolicRef struct {
	ClassName string
	Name      string
	Spec      string
}

// poolSlot is the immutable payload behind one atomic.Pointer publication.
// A resolved slot's Kind is PoolClass/PoolFieldEntry/PoolMethodEntry; the
// pointer itself never reverts to a symbolic form once published.
type poolSlot struct {
	Kind    PoolKind
	Name    string // class name, for PoolClassName
	Ref     SymbolicRef
	Literal Value
	Class   *Class
	Field   *Field
	Method  *Method
}

// ConstantPool is a per-class array of literals and symbolic/resolved
// references. Slots publish via CAS so concurrent resolvers agree on a
// single winner.
type ConstantPool struct {
	slots []atomic.Pointer[poolSlot]
}

// NewConstantPool allocates a pool with n slots, all initially unset.
func NewConstantPool(n int) *ConstantPool {
	return &ConstantPool{slots: make([]atomic.Pointer[poolSlot], n)}
}

// Len returns the number of slots.
func (p *ConstantPool) Len() int { return len(p.slots) }

// SetClassName installs a not-yet-resolved class-name slot at index.
func (p *ConstantPool) SetClassName(index int, name string) {
	p.slots[index].Store(&poolSlot{Kind: PoolClassName, Name: name})
}

// SetFieldRef installs a not-yet-resolved field-reference slot.
func (p *ConstantPool) SetFieldRef(index int, ref SymbolicRef) {
	p.slots[index].Store(&poolSlot{Kind: PoolFieldRef, Ref: ref})
}

// SetMethodRef installs a not-yet-resolved method-reference slot.
func (p *ConstantPool) SetMethodRef(index int, ref SymbolicRef) {
	p.slots[index].Store(&poolSlot{Kind: PoolMethodRef, Ref: ref})
}

// SetLiteral installs a literal (Int/Long/Float/Double/String) slot.
func (p *ConstantPool) SetLiteral(index int, v Value) {
	p.slots[index].Store(&poolSlot{Kind: PoolLiteral, Literal: v})
}

// Kind returns the slot's current tag.
func (p *ConstantPool) Kind(index int) PoolKind {
	s := p.slots[index].Load()
	if s == nil {
		return PoolClassName
	}
	return s.Kind
}

// ClassName returns the symbolic class name at index (valid only when
// Kind(index) == PoolClassName).
func (p *ConstantPool) ClassName(index int) string {
	return p.slots[index].Load().Name
}

// SymbolicRef returns the unresolved reference triple at index (valid only
// when Kind(index) is PoolFieldRef or PoolMethodRef).
func (p *ConstantPool) SymbolicRef(index int) SymbolicRef {
	return p.slots[index].Load().Ref
}

// Literal returns the literal value at index (valid only when Kind(index)
// == PoolLiteral).
func (p *ConstantPool) Literal(index int) Value {
	return p.slots[index].Load().Literal
}

// ResolvedClass returns the resolved class at index, or nil if not yet
// resolved to PoolClass.
func (p *ConstantPool) ResolvedClass(index int) *Class {
	s := p.slots[index].Load()
	if s == nil || s.Kind != PoolClass {
		return nil
	}
	return s.Class
}

// ResolvedField returns the resolved field at index, or nil.
func (p *ConstantPool) ResolvedField(index int) *Field {
	s := p.slots[index].Load()
	if s == nil || s.Kind != PoolFieldEntry {
		return nil
	}
	return s.Field
}

// ResolvedMethod returns the resolved method at index, or nil.
func (p *ConstantPool) ResolvedMethod(index int) *Method {
	s := p.slots[index].Load()
	if s == nil || s.Kind != PoolMethodEntry {
		return nil
	}
	return s.Method
}

// PublishClass atomically rewrites a PoolClassName slot to its resolved
// form. If another goroutine already published a resolution, that
// resolution wins and is returned (first-publisher-wins).
func (p *ConstantPool) PublishClass(index int, resolved *Class) *Class {
	old := p.slots[index].Load()
	if old != nil && old.Kind == PoolClass {
		return old.Class
	}
	next := &poolSlot{Kind: PoolClass, Class: resolved}
	if p.slots[index].CompareAndSwap(old, next) {
		return resolved
	}
	return p.slots[index].Load().Class
}

// PublishField atomically rewrites a PoolFieldRef slot to its resolved
// form, or returns the winning resolution if raced.
func (p *ConstantPool) PublishField(index int, resolved *Field) *Field {
	old := p.slots[index].Load()
	if old != nil && old.Kind == PoolFieldEntry {
		return old.Field
	}
	next := &poolSlot{Kind: PoolFieldEntry, Field: resolved}
	if p.slots[index].CompareAndSwap(old, next) {
		return resolved
	}
	return p.slots[index].Load().Field
}

// PublishMethod atomically rewrites a PoolMethodRef slot to its resolved
// form, or returns the winning resolution if raced.
func (p *ConstantPool) PublishMethod(index int, resolved *Method) *Method {
	old := p.slots[index].Load()
	if old != nil && old.Kind == PoolMethodEntry {
		return old.Method
	}
	next := &poolSlot{Kind: PoolMethodEntry, Method: resolved}
	if p.slots[index].CompareAndSwap(old, next) {
		return resolved
	}
	return p.slots[index].Load().Method
}
