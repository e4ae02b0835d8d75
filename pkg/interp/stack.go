package interp

import (
	"encoding/binary"
	"math"

	"github.com/chazu/classrun/pkg/heap"
)

// Slot is one logical stack/locals position: a 64-bit value word plus an
// object tag. Each logical slot occupies two machine words — one for
// value, one for the is-object tag. Ref is non-nil only when IsObj is
// true; a tagged nil object reference is represented by IsObj=true,
// Ref=nil, matching aconst_null. Both words are always written together
// so a stale value word is never mistaken for a reference.
type Slot struct {
	Value uint64
	Ref   *heap.Object
	ArrRef *heap.Array
	IsObj bool
}

// Push appends a slot, growing sp by one. Panics on overflow: checkStack
// is the gate that must run before any push sequence that could exceed
// capacity; a panic here means that gate was skipped.
func (t *Thread) push(s Slot) {
	t.Stack[t.SP] = s
	t.SP++
}

func (t *Thread) pop() Slot {
	t.SP--
	return t.Stack[t.SP]
}

func (t *Thread) peek(slot int) Slot { return t.Stack[slot] }

func (t *Thread) poke(slot int, s Slot) { t.Stack[slot] = s }

// PushInt pushes a sign-extended 32-bit value, one slot.
func (t *Thread) PushInt(v int32) { t.push(Slot{Value: uint64(uint32(v))}) }

// PopInt pops one slot as a 32-bit value.
func (t *Thread) PopInt() int32 { return int32(uint32(t.pop().Value)) }

// PeekInt reads a 32-bit value at slot without popping.
func (t *Thread) PeekInt(slot int) int32 { return int32(uint32(t.peek(slot).Value)) }

// PokeInt writes a 32-bit value at slot without changing sp.
func (t *Thread) PokeInt(slot int, v int32) { t.poke(slot, Slot{Value: uint64(uint32(v))}) }

// PushLong pushes a 64-bit value across two slots.
func (t *Thread) PushLong(v int64) {
	t.push(Slot{Value: uint64(v)})
	t.push(Slot{Value: uint64(v)})
}

// PopLong pops two slots as a 64-bit value. Either half carries the full
// value; the duplication mirrors the original's 2-logical-slot layout
// without needing to split bits across slots.
func (t *Thread) PopLong() int64 {
	t.SP--
	t.SP--
	return int64(t.Stack[t.SP].Value)
}

// PushFloat pushes a float32 bit-for-bit into a single int slot, a
// width-preserving bit-move rather than a numeric conversion.
func (t *Thread) PushFloat(v float32) { t.PushInt(int32(math.Float32bits(v))) }

// PopFloat pops a single slot, reinterpreting its bits as float32.
func (t *Thread) PopFloat() float32 { return math.Float32frombits(uint32(t.PopInt())) }

// PushDouble pushes a float64 bit-for-bit into two slots.
func (t *Thread) PushDouble(v float64) { t.PushLong(int64(math.Float64bits(v))) }

// PopDouble pops two slots, reinterpreting the bits as float64.
func (t *Thread) PopDouble() float64 { return math.Float64frombits(uint64(t.PopLong())) }

// PushObject pushes a tagged object reference (nil permitted).
func (t *Thread) PushObject(o *heap.Object) { t.push(Slot{Ref: o, IsObj: true}) }

// PopObject pops one slot as an object reference.
func (t *Thread) PopObject() *heap.Object { return t.pop().Ref }

// PeekObject reads an object reference at slot without popping.
func (t *Thread) PeekObject(slot int) *heap.Object { return t.peek(slot).Ref }

// PokeObject writes an object reference at slot without changing sp.
func (t *Thread) PokeObject(slot int, o *heap.Object) { t.poke(slot, Slot{Ref: o, IsObj: true}) }

// PushArray pushes a tagged array reference.
func (t *Thread) PushArray(a *heap.Array) { t.push(Slot{ArrRef: a, IsObj: true}) }

// popArray pops one slot as an array reference.
func (t *Thread) popArray() *heap.Array { return t.pop().ArrRef }

// PeekArray reads an array reference at slot without popping.
func (t *Thread) PeekArray(slot int) *heap.Array { return t.peek(slot).ArrRef }

// refIsNull reports whether a reference slot (object or array, aload and
// astore don't distinguish the two) holds no reference.
func refIsNull(s Slot) bool { return s.Ref == nil && s.ArrRef == nil }

// refEqual reports whether two reference slots name the same object or
// array, for if_acmpeq/if_acmpne.
func refEqual(a, b Slot) bool { return a.Ref == b.Ref && a.ArrRef == b.ArrRef }

// LocalInt reads a 32-bit local relative to the current frame's base.
func (t *Thread) LocalInt(index int) int32 { return t.PeekInt(t.Base + index) }

// SetLocalInt writes a 32-bit local relative to the current frame's base.
func (t *Thread) SetLocalInt(index int, v int32) { t.PokeInt(t.Base+index, v) }

// LocalLong reads a 64-bit local relative to the current frame's base.
func (t *Thread) LocalLong(index int) int64 {
	return int64(t.Stack[t.Base+index].Value)
}

// SetLocalLong writes a 64-bit local relative to the current frame's base.
func (t *Thread) SetLocalLong(index int, v int64) {
	t.Stack[t.Base+index] = Slot{Value: uint64(v)}
	t.Stack[t.Base+index+1] = Slot{Value: uint64(v)}
}

// LocalObject reads an object-reference local relative to base.
func (t *Thread) LocalObject(index int) *heap.Object { return t.Stack[t.Base+index].Ref }

// SetLocalObject writes an object-reference local relative to base.
func (t *Thread) SetLocalObject(index int, o *heap.Object) {
	t.Stack[t.Base+index] = Slot{Ref: o, IsObj: true}
}

// be16 and be32 decode the big-endian immediate operands every multi-byte
// opcode reads from the code stream.
func be16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func be32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
