package interp

import "github.com/chazu/classrun/pkg/heap"

// loadArrayElement pushes arr[index], widened per the array's kind. Null
// and bounds checks already happened at the call site in dispatch.go,
// which needs them before deciding whether to throw.
func loadArrayElement(t *Thread, arr *heap.Array, index int, op Opcode) {
	switch op {
	case opIaload:
		t.PushInt(arr.GetInt(index))
	case opLaload:
		t.PushLong(arr.GetLong(index))
	case opFaload:
		t.PushFloat(arr.GetFloat(index))
	case opDaload:
		t.PushDouble(arr.GetDouble(index))
	case opAaload:
		t.PushObject(arr.GetObject(index))
	case opBaload:
		t.PushInt(arr.GetByte(index))
	case opCaload:
		t.PushInt(arr.GetChar(index))
	case opSaload:
		t.PushInt(arr.GetShort(index))
	}
}

// storeArrayElement pops a value, an index, and an array reference (in
// that stack order, value on top) and stores the value at the index,
// boxing a NullPointerException/ArrayIndexOutOfBoundsException into
// t.Exception on failure rather than returning an error, so the dispatch
// loop's single throw_ path handles it uniformly.
func storeArrayElement(t *Thread, op Opcode) {
	var vi int32
	var vl int64
	var vf float32
	var vd float64
	var vo *heap.Object

	switch op {
	case opIastore, opBastore, opCastore, opSastore:
		vi = t.PopInt()
	case opLastore:
		vl = t.PopLong()
	case opFastore:
		vf = t.PopFloat()
	case opDastore:
		vd = t.PopDouble()
	case opAastore:
		vo = t.PopObject()
	}

	idx := t.PopInt()
	arr := t.popArray()
	if arr == nil {
		t.Exception = t.box(&NullPointerException{})
		return
	}
	if idx < 0 || int(idx) >= arr.Length {
		t.Exception = t.box(&ArrayIndexOutOfBoundsException{Index: int(idx), Length: arr.Length})
		return
	}

	switch op {
	case opIastore:
		arr.SetInt(int(idx), vi)
	case opLastore:
		arr.SetLong(int(idx), vl)
	case opFastore:
		arr.SetFloat(int(idx), vf)
	case opDastore:
		arr.SetDouble(int(idx), vd)
	case opAastore:
		arr.SetObject(int(idx), vo)
	case opBastore:
		arr.SetByte(int(idx), vi)
	case opCastore:
		arr.SetChar(int(idx), vi)
	case opSastore:
		arr.SetShort(int(idx), vi)
	}
}
