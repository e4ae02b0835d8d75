package interp

import (
	"math"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// pushFieldValue pushes o's field f, widened/tagged per its descriptor.
func pushFieldValue(t *Thread, o *heap.Object, f *classfile.Field) {
	switch f.Code {
	case classfile.LongField:
		t.PushLong(o.GetLong(f.Offset))
	case classfile.DoubleField:
		t.PushDouble(o.GetDouble(f.Offset))
	case classfile.FloatField:
		t.PushFloat(o.GetFloat(f.Offset))
	case classfile.ByteField, classfile.BooleanField:
		t.PushInt(o.GetByte(f.Offset))
	case classfile.ShortField:
		t.PushInt(o.GetShort(f.Offset))
	case classfile.CharField:
		t.PushInt(o.GetChar(f.Offset))
	case classfile.ObjectField, classfile.ArrayField:
		t.PushObject(o.GetObject(f.Offset))
	default:
		t.PushInt(o.GetInt(f.Offset))
	}
}

// storeFieldValue pops a value (and the receiver beneath it) and stores it
// into f. Returns false, with both the value and the receiver already
// popped, if the receiver was null — the caller boxes the
// NullPointerException.
func storeFieldValue(t *Thread, f *classfile.Field) bool {
	switch f.Code {
	case classfile.LongField:
		v := t.PopLong()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetLong(f.Offset, v)
	case classfile.DoubleField:
		v := t.PopDouble()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetDouble(f.Offset, v)
	case classfile.FloatField:
		v := t.PopFloat()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetFloat(f.Offset, v)
	case classfile.ByteField, classfile.BooleanField:
		v := t.PopInt()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetByte(f.Offset, v)
	case classfile.ShortField:
		v := t.PopInt()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetShort(f.Offset, v)
	case classfile.CharField:
		v := t.PopInt()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetChar(f.Offset, v)
	case classfile.ObjectField, classfile.ArrayField:
		v := t.PopObject()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetObject(f.Offset, v)
	default:
		v := t.PopInt()
		o := t.PopObject()
		if o == nil {
			return false
		}
		o.SetInt(f.Offset, v)
	}
	return true
}

// pushStaticField pushes f's class-level slot.
func (t *Thread) pushStaticField(f *classfile.Field) {
	v := f.Class.StaticTable[f.Offset]
	switch v.Kind {
	case classfile.KindInt, classfile.KindFloat:
		t.PushInt(v.I32)
	case classfile.KindLong, classfile.KindDouble:
		t.PushLong(v.I64)
	default:
		o, _ := v.Obj.(*heap.Object)
		t.PushObject(o)
	}
}

// popStaticField pops a value off the stack into f's class-level slot.
func (t *Thread) popStaticField(f *classfile.Field) {
	switch f.Code {
	case classfile.LongField:
		f.Class.StaticTable[f.Offset] = classfile.Value{Kind: classfile.KindLong, I64: t.PopLong()}
	case classfile.DoubleField:
		bits := math.Float64bits(t.PopDouble())
		f.Class.StaticTable[f.Offset] = classfile.Value{Kind: classfile.KindDouble, I64: int64(bits)}
	case classfile.FloatField:
		bits := math.Float32bits(t.PopFloat())
		f.Class.StaticTable[f.Offset] = classfile.Value{Kind: classfile.KindFloat, I32: int32(bits)}
	case classfile.ObjectField, classfile.ArrayField:
		f.Class.StaticTable[f.Offset] = classfile.Value{Kind: classfile.KindObject, Obj: t.PopObject()}
	default:
		f.Class.StaticTable[f.Offset] = classfile.Value{Kind: classfile.KindInt, I32: t.PopInt()}
	}
}
