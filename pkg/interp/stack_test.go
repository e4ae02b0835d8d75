package interp

import (
	"testing"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

func newTestThread(slots int) *Thread {
	vm := NewMachine(heap.NewArenaHeap(), nil, nil)
	return vm.NewThread(slots)
}

func TestPushPopInt(t *testing.T) {
	th := newTestThread(8)
	th.PushInt(-7)
	th.PushInt(42)
	if got := th.PopInt(); got != 42 {
		t.Fatalf("PopInt = %d, want 42", got)
	}
	if got := th.PopInt(); got != -7 {
		t.Fatalf("PopInt = %d, want -7", got)
	}
}

func TestPushPopLongTakesTwoSlots(t *testing.T) {
	th := newTestThread(8)
	th.PushLong(-123456789012345)
	if th.SP != 2 {
		t.Fatalf("SP = %d, want 2 after pushing one long", th.SP)
	}
	if got := th.PopLong(); got != -123456789012345 {
		t.Fatalf("PopLong = %d, want -123456789012345", got)
	}
	if th.SP != 0 {
		t.Fatalf("SP = %d, want 0 after popping the long", th.SP)
	}
}

func TestPushPopFloatDoubleBitsPreserved(t *testing.T) {
	th := newTestThread(8)
	th.PushFloat(3.5)
	if got := th.PopFloat(); got != 3.5 {
		t.Fatalf("PopFloat = %v, want 3.5", got)
	}
	th.PushDouble(-2.25)
	if got := th.PopDouble(); got != -2.25 {
		t.Fatalf("PopDouble = %v, want -2.25", got)
	}
}

func TestPushPopObjectAndArrayDistinctTags(t *testing.T) {
	th := newTestThread(8)
	class := &classfile.Class{Name: "C", FixedSize: 4}
	obj, err := th.vm.Heap.NewInstance(class)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	arr, err := th.vm.Heap.NewPrimitiveArray(heap.ArrayInt, 3)
	if err != nil {
		t.Fatalf("NewPrimitiveArray: %v", err)
	}

	th.PushObject(obj)
	th.PushArray(arr)

	gotArr := th.popArray()
	if gotArr != arr {
		t.Fatalf("popArray did not return the pushed array")
	}
	gotObj := th.PopObject()
	if gotObj != obj {
		t.Fatalf("PopObject did not return the pushed object")
	}
}

func TestRefIsNullAndRefEqual(t *testing.T) {
	nullSlot := Slot{IsObj: true}
	if !refIsNull(nullSlot) {
		t.Error("a slot with neither Ref nor ArrRef set should be null")
	}

	arr := &heap.Array{}
	arrSlot := Slot{ArrRef: arr, IsObj: true}
	if refIsNull(arrSlot) {
		t.Error("a slot tagging a non-nil array reference should not be null")
	}

	if !refEqual(nullSlot, Slot{IsObj: true}) {
		t.Error("two null reference slots should compare equal")
	}
	if refEqual(arrSlot, nullSlot) {
		t.Error("a non-null array slot should not equal a null slot")
	}
	if !refEqual(arrSlot, Slot{ArrRef: arr, IsObj: true}) {
		t.Error("two slots tagging the same array should compare equal")
	}
}

func TestLocalsRelativeToFrameBase(t *testing.T) {
	th := newTestThread(16)
	th.Base = 3
	th.SetLocalInt(0, 99)
	if got := th.LocalInt(0); got != 99 {
		t.Fatalf("LocalInt(0) = %d, want 99", got)
	}
	if got := th.PeekInt(3); got != 99 {
		t.Fatalf("expected local 0 to land at absolute slot Base+0=3, got slot value %d", got)
	}

	th.SetLocalLong(1, -42)
	if got := th.LocalLong(1); got != -42 {
		t.Fatalf("LocalLong(1) = %d, want -42", got)
	}
}
