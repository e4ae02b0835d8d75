package heap

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
	"github.com/chazu/classrun/pkg/classfile"
)

// Object is an instance of a class: a byte-addressable field area plus
// the class that describes its layout (Class.FixedSize and Field.Offset)
// and a recursive monitor for monitorenter/monitorexit.
type Object struct {
	ID     uuid.UUID
	Class  *classfile.Class
	fields []byte
	refs   map[int]*Object
	mon    classfile.Monitor

	// Meta is an opaque slot the interpreter uses to attach interpreter-
	// level bookkeeping (currently: boxed-exception message/cause/trace)
	// to an instance without the heap package needing to know the shape.
	Meta any
}

// GetInt reads a 32-bit field at a byte offset (ByteField/BooleanField
// widen via explicit int8/int16 reads; callers pick the right width).
func (o *Object) GetInt(offset int) int32 {
	return int32(binary.BigEndian.Uint32(o.fields[offset:]))
}

// SetInt writes a 32-bit field.
func (o *Object) SetInt(offset int, v int32) {
	binary.BigEndian.PutUint32(o.fields[offset:], uint32(v))
}

// GetByte reads an 8-bit field, sign-extended.
func (o *Object) GetByte(offset int) int32 { return int32(int8(o.fields[offset])) }

// SetByte writes an 8-bit field.
func (o *Object) SetByte(offset int, v int32) { o.fields[offset] = byte(v) }

// GetShort reads a 16-bit field, sign-extended.
func (o *Object) GetShort(offset int) int32 {
	return int32(int16(binary.BigEndian.Uint16(o.fields[offset:])))
}

// SetShort writes a 16-bit field.
func (o *Object) SetShort(offset int, v int32) {
	binary.BigEndian.PutUint16(o.fields[offset:], uint16(v))
}

// GetChar reads a 16-bit field, zero-extended.
func (o *Object) GetChar(offset int) int32 {
	return int32(binary.BigEndian.Uint16(o.fields[offset:]))
}

// SetChar writes a 16-bit field (same storage as GetShort/SetShort).
func (o *Object) SetChar(offset int, v int32) { o.SetShort(offset, v) }

// GetLong reads a 64-bit field.
func (o *Object) GetLong(offset int) int64 {
	return int64(binary.BigEndian.Uint64(o.fields[offset:]))
}

// SetLong writes a 64-bit field.
func (o *Object) SetLong(offset int, v int64) {
	binary.BigEndian.PutUint64(o.fields[offset:], uint64(v))
}

// GetFloat reads a 32-bit field as an IEEE-754 float (a width-preserving
// bit-move, not a numeric conversion).
func (o *Object) GetFloat(offset int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(o.fields[offset:]))
}

// SetFloat writes a 32-bit float field.
func (o *Object) SetFloat(offset int, v float32) {
	binary.BigEndian.PutUint32(o.fields[offset:], math.Float32bits(v))
}

// GetDouble reads a 64-bit field as an IEEE-754 double.
func (o *Object) GetDouble(offset int) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(o.fields[offset:]))
}

// SetDouble writes a 64-bit double field.
func (o *Object) SetDouble(offset int, v float64) {
	binary.BigEndian.PutUint64(o.fields[offset:], math.Float64bits(v))
}

// GetObject reads an object-reference field. References are stored
// out-of-line in refs, keyed by offset, so the byte area never needs to
// hold a real pointer (keeps Object GC-safe under a real collector: a
// scan only has to walk refs, not guess at pointer-shaped byte patterns).
func (o *Object) GetObject(offset int) *Object {
	if o.refs == nil {
		return nil
	}
	return o.refs[offset]
}

// SetObject writes an object-reference field.
func (o *Object) SetObject(offset int, v *Object) {
	if o.refs == nil {
		o.refs = make(map[int]*Object)
	}
	if v == nil {
		delete(o.refs, offset)
		return
	}
	o.refs[offset] = v
}

// Monitor returns the object's recursive monitor.
func (o *Object) Monitor() *classfile.Monitor { return &o.mon }

// ArrayKind tags what an Array holds.
type ArrayKind byte

const (
	ArrayByte ArrayKind = iota
	ArrayChar
	ArrayShort
	ArrayInt
	ArrayLong
	ArrayFloat
	ArrayDouble
	ArrayBoolean
	ArrayObject
)

// Array is a fixed-length homogeneous array. Primitive elements are
// packed into bytes; object elements live in refs,
// mirroring Object's out-of-line reference storage.
type Array struct {
	ID        uuid.UUID
	Kind      ArrayKind
	ElemClass *classfile.Class // element class, for ArrayObject
	Length    int
	bytes     []byte
	refs      []*Object
	mon       classfile.Monitor
}

func elemSize(k ArrayKind) int {
	switch k {
	case ArrayByte, ArrayBoolean:
		return 1
	case ArrayChar, ArrayShort:
		return 2
	case ArrayInt, ArrayFloat:
		return 4
	case ArrayLong, ArrayDouble:
		return 8
	default:
		return 0
	}
}

func (a *Array) GetByte(i int) int32  { return int32(int8(a.bytes[i])) }
func (a *Array) SetByte(i int, v int32) { a.bytes[i] = byte(v) }

func (a *Array) GetChar(i int) int32 {
	return int32(binary.BigEndian.Uint16(a.bytes[i*2:]))
}
func (a *Array) SetChar(i int, v int32) { binary.BigEndian.PutUint16(a.bytes[i*2:], uint16(v)) }

func (a *Array) GetShort(i int) int32 {
	return int32(int16(binary.BigEndian.Uint16(a.bytes[i*2:])))
}
func (a *Array) SetShort(i int, v int32) { binary.BigEndian.PutUint16(a.bytes[i*2:], uint16(v)) }

func (a *Array) GetInt(i int) int32 {
	return int32(binary.BigEndian.Uint32(a.bytes[i*4:]))
}
func (a *Array) SetInt(i int, v int32) { binary.BigEndian.PutUint32(a.bytes[i*4:], uint32(v)) }

func (a *Array) GetLong(i int) int64 {
	return int64(binary.BigEndian.Uint64(a.bytes[i*8:]))
}
func (a *Array) SetLong(i int, v int64) { binary.BigEndian.PutUint64(a.bytes[i*8:], uint64(v)) }

func (a *Array) GetFloat(i int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(a.bytes[i*4:]))
}
func (a *Array) SetFloat(i int, v float32) {
	binary.BigEndian.PutUint32(a.bytes[i*4:], math.Float32bits(v))
}

func (a *Array) GetDouble(i int) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(a.bytes[i*8:]))
}
func (a *Array) SetDouble(i int, v float64) {
	binary.BigEndian.PutUint64(a.bytes[i*8:], math.Float64bits(v))
}

func (a *Array) GetObject(i int) *Object   { return a.refs[i] }
func (a *Array) SetObject(i int, v *Object) { a.refs[i] = v }

// Monitor returns the array's recursive monitor.
func (a *Array) Monitor() *classfile.Monitor { return &a.mon }
