package classfile

import "sync/atomic"

// AccessFlags mirrors the classfile ACC_* bit flags relevant to the core.
type AccessFlags uint16

const (
	AccPublic       AccessFlags = 0x0001
	AccStatic       AccessFlags = 0x0008
	AccSynchronized AccessFlags = 0x0020
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccSuper        AccessFlags = 0x0020 // shared bit with ACC_SYNCHRONIZED, distinguished by target (class vs method)
)

// VMFlags carries VM-internal per-class bits that have no classfile bit
// of their own.
type VMFlags uint16

const (
	// WeakReferenceFlag marks instances of this class for registration in
	// the heap's weak-reference chain at allocation time.
	WeakReferenceFlag VMFlags = 0x0001
)

// FieldCode identifies a field or array element's primitive/object kind,
// matching the classfile descriptor letters.
type FieldCode byte

const (
	ByteField    FieldCode = 'B'
	CharField    FieldCode = 'C'
	DoubleField  FieldCode = 'D'
	FloatField   FieldCode = 'F'
	IntField     FieldCode = 'I'
	LongField    FieldCode = 'J'
	ShortField   FieldCode = 'S'
	BooleanField FieldCode = 'Z'
	ObjectField  FieldCode = 'L'
	ArrayField   FieldCode = '['
	VoidField    FieldCode = 'V'
)

// Field is immutable once the owning class has finished loading.
type Field struct {
	Class  *Class
	Name   string
	Spec   string // descriptor, e.g. "I" or "Ljava/lang/String;"
	Code   FieldCode
	Offset int  // byte offset in an instance, or index into the static table
	Static bool
}

// Method describes a single method slot.
type Method struct {
	Class             *Class
	Name              string
	Spec              string // e.g. "(II)I"
	Flags             AccessFlags
	ParamCount        int
	ParamFootprint    int // stack words consumed by declared arguments
	VTableOffset      int // offset within virtual/interface dispatch table
	Code              *Code
	nativeName        string      // byte-array-name placeholder before binding
	nativeData        atomic.Pointer[NativeMethodData]
}

// IsNative reports whether the method was declared native.
func (m *Method) IsNative() bool { return m.Flags&AccNative != 0 }

// IsStatic reports whether the method is static.
func (m *Method) IsStatic() bool { return m.Flags&AccStatic != 0 }

// IsSynchronized reports whether the method is declared synchronized.
func (m *Method) IsSynchronized() bool { return m.Flags&AccSynchronized != 0 }

// NativeName returns the unbound native symbol name (empty once bound).
func (m *Method) NativeName() string { return m.nativeName }

// SetNativeName sets the symbol name a native method binds against. Used
// only by the class loader while constructing the method.
func (m *Method) SetNativeName(name string) { m.nativeName = name }

// NativeData returns the memoized native-method binding, or nil if the
// method hasn't been bound yet.
func (m *Method) NativeData() *NativeMethodData { return m.nativeData.Load() }

// BindNative publishes the native binding. Safe to race: the first
// successful CAS wins and later callers observe the same
// *NativeMethodData.
func (m *Method) BindNative(data *NativeMethodData) *NativeMethodData {
	if m.nativeData.CompareAndSwap(nil, data) {
		return data
	}
	return m.nativeData.Load()
}

// Code is the attribute set of a non-native method.
type Code struct {
	Bytes      []byte
	MaxLocals  int
	MaxStack   int
	Pool       *ConstantPool
	Handlers   []ExceptionHandler
	LineTable  []LineEntry
}

// ExceptionHandler is one row of a method's exception-handler table.
// StartPc/EndPc form a half-open range; HandlerPc is the catch-block
// entry point. CatchType is a 1-based constant-pool index, 0 meaning
// "catch any" (a finally block).
type ExceptionHandler struct {
	StartPc   int
	EndPc     int
	HandlerPc int
	CatchType int
}

// LineEntry maps a bytecode offset to a source line, used for stack traces.
type LineEntry struct {
	Pc   int
	Line int
}

// NativeLine / UnknownLine are the sentinel results of LineNumber, used
// when formatting an uncaught-exception trace element.
const (
	NativeLine  = -2
	UnknownLine = -1
)

// LineNumber returns the source line active at pc, or UnknownLine if the
// code has no line table entry covering it.
func (c *Code) LineNumber(pc int) int {
	if c == nil {
		return NativeLine
	}
	line := UnknownLine
	for _, e := range c.LineTable {
		if e.Pc <= pc {
			line = e.Line
		} else {
			break
		}
	}
	return line
}

// InterfaceTableEntry pairs an implemented interface with the class's
// dispatch array for that interface, consulted by findInterfaceMethod.
type InterfaceTableEntry struct {
	Interface *Class
	Dispatch  []*Method
}

// Class is immutable after loading except for Initializer, which is
// cleared (set to nil) the first time <clinit> is run.
type Class struct {
	Name        string
	Flags       AccessFlags
	VMFlags     VMFlags
	Super       *Class
	Fields      []*Field
	Methods     []*Method
	VTable      []*Method
	Interfaces  []InterfaceTableEntry
	StaticTable []Value
	FixedSize   int // instance size in bytes
	Mon         Monitor // class-level monitor, for static synchronized methods

	initializer atomic.Pointer[Method]
}

// Monitor returns the class's static monitor.
func (c *Class) Monitor() *Monitor { return &c.Mon }

// SetInitializer installs the class's <clinit>, callable once.
func (c *Class) SetInitializer(m *Method) { c.initializer.Store(m) }

// Initializer returns the pending static initializer, or nil if it has
// already run (or the class has none).
func (c *Class) Initializer() *Method { return c.initializer.Load() }

// ClearInitializer atomically clears the initializer and reports whether
// this call was the one that cleared it. The initializer must be set to
// nil before the clinit body runs, so a reentrant resolution of the same
// class during its own <clinit> can't re-trigger it.
func (c *Class) ClearInitializer(expect *Method) bool {
	return c.initializer.CompareAndSwap(expect, nil)
}

// IsInterface reports whether the class is a classfile interface.
func (c *Class) IsInterface() bool { return c.Flags&AccInterface != 0 }

// IsSuperFlagged reports the ACC_SUPER bit, consulted by isSpecialMethod.
func (c *Class) IsSuperFlagged() bool { return c.Flags&AccSuper != 0 }

// IsSuperclassOf reports whether c is a proper ancestor of base, walking
// the super chain.
func (c *Class) IsSuperclassOf(base *Class) bool {
	for oc := base.Super; oc != nil; oc = oc.Super {
		if oc == c {
			return true
		}
	}
	return false
}
