package interp

import (
	"fmt"
	"os"

	"github.com/chazu/classrun/pkg/classfile"
	"github.com/chazu/classrun/pkg/heap"
)

// Run executes t's current frame to completion: either the root method
// returns (result holds its boxed value, ok for void) or the thread
// terminates on an uncaught exception (ok is false). This is a single
// function by design: the invoke and throw_ labels are named sub-states
// of the loop, not separate functions, to preserve the property that no
// loop-local caches need to be restored after an invoke-return. ip/sp/
// frame/code live on *Thread rather than as local aliases, since Go has
// no reference-typed locals to alias them with — but the control-flow
// shape (goto loop/invoke/throw_/wide) is kept exactly as the dispatch
// loop this was ported from has it.
func (vm *Machine) Run(t *Thread) (result Slot, ok bool) {
	rootFrame := t.Frame

	var method *classfile.Method

	if t.Exception != nil {
		goto throw_
	}

loop:
	if vm.Profile != nil {
		vm.Profile.Observe(t.Code.Bytes[t.IP])
	}

	if vm.Trace {
		m := t.currentMethod()
		fmt.Fprintf(os.Stderr, "trace: %s.%s ip=%d op=%#02x\n", m.Class.Name, m.Name, t.IP, byte(t.Code.Bytes[t.IP]))
	}

	switch op := Opcode(t.Code.Bytes[t.IP]); op {
	case opNop:
		t.IP++

	case opAconstNull:
		t.IP++
		t.PushObject(nil)

	case opIconstM1, opIconst0, opIconst1, opIconst2, opIconst3, opIconst4, opIconst5:
		t.IP++
		t.PushInt(int32(op) - int32(opIconst0))

	case opLconst0, opLconst1:
		t.IP++
		t.PushLong(int64(op) - int64(opLconst0))

	case opBipush:
		t.IP++
		v := int8(t.Code.Bytes[t.IP])
		t.IP++
		t.PushInt(int32(v))

	case opSipush:
		t.IP++
		v := int16(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.PushInt(int32(v))

	case opLdc:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.pushLiteral(t.Code.Pool.Literal(idx))

	case opLdcW:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.pushLiteral(t.Code.Pool.Literal(idx))

	case opLdc2W:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.pushLiteral(t.Code.Pool.Literal(idx))

	case opIload:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.PushInt(t.LocalInt(idx))

	case opIload0, opIload1, opIload2, opIload3:
		t.IP++
		t.PushInt(t.LocalInt(int(op - opIload0)))

	case opLload:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.PushLong(t.LocalLong(idx))

	case opLload0, opLload1, opLload2, opLload3:
		t.IP++
		t.PushLong(t.LocalLong(int(op - opLload0)))

	case opAload:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.push(t.Stack[t.Base+idx])

	case opAload0, opAload1, opAload2, opAload3:
		t.IP++
		t.push(t.Stack[t.Base+int(op-opAload0)])

	case opIstore:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.SetLocalInt(idx, t.PopInt())

	case opIstore0, opIstore1, opIstore2, opIstore3:
		t.IP++
		t.SetLocalInt(int(op-opIstore0), t.PopInt())

	case opLstore:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.SetLocalLong(idx, t.PopLong())

	case opLstore0, opLstore1, opLstore2, opLstore3:
		t.IP++
		t.SetLocalLong(int(op-opLstore0), t.PopLong())

	case opAstore:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		t.Stack[t.Base+idx] = t.pop()

	case opAstore0, opAstore1, opAstore2, opAstore3:
		t.IP++
		t.Stack[t.Base+int(op-opAstore0)] = t.pop()

	case opIaload, opLaload, opFaload, opDaload, opAaload, opBaload, opCaload, opSaload:
		t.IP++
		idx := t.PopInt()
		arr := t.popArray()
		if arr == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		if idx < 0 || int(idx) >= arr.Length {
			t.Exception = t.box(&ArrayIndexOutOfBoundsException{Index: int(idx), Length: arr.Length})
			goto throw_
		}
		loadArrayElement(t, arr, int(idx), op)

	case opIastore, opLastore, opFastore, opDastore, opAastore, opBastore, opCastore, opSastore:
		t.IP++
		storeArrayElement(t, op)
		if t.Exception != nil {
			goto throw_
		}

	case opPop:
		t.IP++
		t.SP--

	case opPop2:
		t.IP++
		t.SP -= 2

	case opDup:
		t.IP++
		t.Stack[t.SP] = t.Stack[t.SP-1]
		t.SP++

	case opDupX1:
		t.IP++
		top := t.Stack[t.SP-1]
		t.Stack[t.SP] = top
		t.Stack[t.SP-1] = t.Stack[t.SP-2]
		t.Stack[t.SP-2] = top
		t.SP++

	case opDupX2:
		t.IP++
		top := t.Stack[t.SP-1]
		copy(t.Stack[t.SP-2:t.SP+1], t.Stack[t.SP-3:t.SP])
		t.Stack[t.SP-3] = top
		t.SP++

	case opDup2:
		t.IP++
		t.Stack[t.SP] = t.Stack[t.SP-2]
		t.Stack[t.SP+1] = t.Stack[t.SP-1]
		t.SP += 2

	case opDup2X1:
		t.IP++
		a, b, c := t.Stack[t.SP-2], t.Stack[t.SP-1], t.Stack[t.SP-3]
		t.Stack[t.SP-3], t.Stack[t.SP-2], t.Stack[t.SP-1] = a, b, c
		t.Stack[t.SP], t.Stack[t.SP+1] = a, b
		t.SP += 2

	case opDup2X2:
		t.IP++
		a, b := t.Stack[t.SP-2], t.Stack[t.SP-1]
		copy(t.Stack[t.SP-2:t.SP+2], t.Stack[t.SP-4:t.SP])
		t.Stack[t.SP-4], t.Stack[t.SP-3] = a, b
		t.SP += 2

	case opSwap:
		t.IP++
		t.Stack[t.SP-1], t.Stack[t.SP-2] = t.Stack[t.SP-2], t.Stack[t.SP-1]

	case opIadd:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a + b)
	case opLadd:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a + b)
	case opIsub:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a - b)
	case opLsub:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a - b)
	case opImul:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a * b)
	case opLmul:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a * b)
	case opIdiv:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		if b == 0 {
			t.Exception = t.box(&ArithmeticException{Message: "/ by zero"})
			goto throw_
		}
		t.PushInt(a / b)
	case opLdiv:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		if b == 0 {
			t.Exception = t.box(&ArithmeticException{Message: "/ by zero"})
			goto throw_
		}
		t.PushLong(a / b)
	case opIrem:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		if b == 0 {
			t.Exception = t.box(&ArithmeticException{Message: "/ by zero"})
			goto throw_
		}
		t.PushInt(a % b)
	case opLrem:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		if b == 0 {
			t.Exception = t.box(&ArithmeticException{Message: "/ by zero"})
			goto throw_
		}
		t.PushLong(a % b)
	case opIneg:
		t.IP++
		t.PushInt(-t.PopInt())
	case opLneg:
		// lneg negates a long operand; popping a 32-bit value here would
		// be a transcription bug, so this pops the full long.
		t.IP++
		t.PushLong(-t.PopLong())
	case opIshl:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a << (uint32(b) & 31))
	case opLshl:
		t.IP++
		b, a := t.PopInt(), t.PopLong()
		t.PushLong(a << (uint32(b) & 63))
	case opIshr:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a >> (uint32(b) & 31))
	case opLshr:
		t.IP++
		b, a := t.PopInt(), t.PopLong()
		t.PushLong(a >> (uint32(b) & 63))
	case opIushr:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(int32(uint32(a) >> (uint32(b) & 31)))
	case opLushr:
		// The shift count is a 32-bit popInt even though the value being
		// shifted is a long.
		t.IP++
		b, a := t.PopInt(), t.PopLong()
		t.PushLong(int64(uint64(a) >> (uint32(b) & 63)))
	case opIand:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a & b)
	case opLand:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a & b)
	case opIor:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a | b)
	case opLor:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a | b)
	case opIxor:
		t.IP++
		b, a := t.PopInt(), t.PopInt()
		t.PushInt(a ^ b)
	case opLxor:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		t.PushLong(a ^ b)

	case opIinc:
		t.IP++
		idx := int(t.Code.Bytes[t.IP])
		t.IP++
		delta := int8(t.Code.Bytes[t.IP])
		t.IP++
		t.SetLocalInt(idx, t.LocalInt(idx)+int32(delta))

	case opI2l:
		t.IP++
		t.PushLong(int64(t.PopInt()))
	case opI2b:
		t.IP++
		t.PushInt(int32(int8(t.PopInt())))
	case opI2c:
		t.IP++
		t.PushInt(int32(uint16(t.PopInt())))
	case opI2s:
		t.IP++
		t.PushInt(int32(int16(t.PopInt())))
	case opL2i:
		t.IP++
		t.PushInt(int32(t.PopLong()))

	case opLcmp:
		t.IP++
		b, a := t.PopLong(), t.PopLong()
		switch {
		case a < b:
			t.PushInt(-1)
		case a > b:
			t.PushInt(1)
		default:
			t.PushInt(0)
		}

	case opIfeq, opIfne, opIflt, opIfge, opIfgt, opIfle:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		base := t.IP
		t.IP += 3
		v := t.PopInt()
		if branchTaken(op, opIfeq, v, 0) {
			t.IP = base + int(off)
		}

	case opIfIcmpeq, opIfIcmpne, opIfIcmplt, opIfIcmpge, opIfIcmpgt, opIfIcmple:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		base := t.IP
		t.IP += 3
		b, a := t.PopInt(), t.PopInt()
		if branchTaken(op, opIfIcmpeq, a, b) {
			t.IP = base + int(off)
		}

	case opIfAcmpeq, opIfAcmpne:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		base := t.IP
		t.IP += 3
		b, a := t.pop(), t.pop()
		taken := refEqual(a, b)
		if op == opIfAcmpne {
			taken = !taken
		}
		if taken {
			t.IP = base + int(off)
		}

	case opIfnull, opIfnonnull:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		base := t.IP
		t.IP += 3
		isNull := refIsNull(t.pop())
		if (op == opIfnull) == isNull {
			t.IP = base + int(off)
		}

	case opGoto:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += int(off)

	case opGotoW:
		off := int32(be32(t.Code.Bytes[t.IP+1 : t.IP+5]))
		t.IP += int(off)

	case opJsr:
		off := int16(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		base := t.IP
		ret := base + 3
		t.IP += 3
		t.PushInt(int32(ret))
		t.IP = base + int(off)

	case opJsrW:
		off := int32(be32(t.Code.Bytes[t.IP+1 : t.IP+5]))
		base := t.IP
		ret := base + 5
		t.IP += 5
		t.PushInt(int32(ret))
		t.IP = base + int(off)

	case opRet:
		idx := int(t.Code.Bytes[t.IP+1])
		t.IP = int(t.LocalInt(idx))

	case opIreturn:
		v := t.PopInt()
		t.popFrame()
		if t.Frame < rootFrame || t.Frame < 0 {
			return Slot{Value: uint64(uint32(v))}, true
		}
		t.PushInt(v)

	case opLreturn:
		v := t.PopLong()
		t.popFrame()
		if t.Frame < rootFrame || t.Frame < 0 {
			return Slot{Value: uint64(v)}, true
		}
		t.PushLong(v)

	case opAreturn:
		v := t.pop()
		t.popFrame()
		if t.Frame < rootFrame || t.Frame < 0 {
			return v, true
		}
		t.push(v)

	case opReturn:
		t.popFrame()
		if t.Frame < rootFrame || t.Frame < 0 {
			return Slot{}, true
		}

	case opGetstatic:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		field, err := vm.resolveField(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if clinit := field.Class.Initializer(); clinit != nil {
			field.Class.ClearInitializer(clinit)
			method = clinit
			t.IP -= 3
			goto invoke
		}
		t.pushStaticField(field)

	case opPutstatic:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		field, err := vm.resolveField(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if clinit := field.Class.Initializer(); clinit != nil {
			field.Class.ClearInitializer(clinit)
			method = clinit
			t.IP -= 3
			goto invoke
		}
		t.popStaticField(field)

	case opGetfield:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		if t.PeekObject(t.SP-1) == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		field, err := vm.resolveField(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		obj := t.PopObject()
		pushFieldValue(t, obj, field)

	case opPutfield:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		field, err := vm.resolveField(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if !storeFieldValue(t, field) {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}

	case opInvokevirt:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		m, err := vm.resolveMethod(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		recv := t.PeekObject(t.SP - m.ParamFootprint)
		if recv == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		// recv already exists, so its class's <clinit> (and every
		// superclass's) has already run by the time `new` allocated it;
		// no clinit re-check is needed here.
		method = findMethod(m, recv.Class)
		goto invoke

	case opInvokespec:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		m, err := vm.resolveMethod(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		recv := t.PeekObject(t.SP - m.ParamFootprint)
		if recv == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		class := t.currentMethod().Class
		if isSpecialMethod(m, class) {
			if clinit := class.Super.Initializer(); clinit != nil {
				class.Super.ClearInitializer(clinit)
				method = clinit
				t.IP -= 3
				goto invoke
			}
			method = findMethod(m, class.Super)
		} else {
			method = m
		}
		goto invoke

	case opInvokestat:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		m, err := vm.resolveMethod(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if clinit := m.Class.Initializer(); clinit != nil {
			m.Class.ClearInitializer(clinit)
			method = clinit
			t.IP -= 3
			goto invoke
		}
		method = m
		goto invoke

	case opInvokeintf:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 5 // +2 extra bytes (argument count, reserved), read and discarded
		m, err := vm.resolveMethod(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		recv := t.PeekObject(t.SP - m.ParamFootprint)
		if recv == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		method = findInterfaceMethod(m, recv)
		goto invoke

	case opNew:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		class, err := vm.resolveClass(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if clinit := class.Initializer(); clinit != nil {
			class.ClearInitializer(clinit)
			method = clinit
			t.IP -= 3
			goto invoke
		}
		o, err := vm.Heap.NewInstance(class)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		t.PushObject(o)

	case opNewarray:
		t.IP++
		kind := t.Code.Bytes[t.IP]
		t.IP++
		count := t.PopInt()
		arr, err := vm.Heap.NewPrimitiveArray(primitiveArrayKind(kind), int(count))
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		t.PushArray(arr)

	case opAnewarray:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		elemClass, err := vm.resolveClass(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		count := t.PopInt()
		arr, err := vm.Heap.NewObjectArray(elemClass, int(count))
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		t.PushArray(arr)

	case opArraylength:
		t.IP++
		arr := t.popArray()
		if arr == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		t.PushInt(int32(arr.Length))

	case opAthrow:
		t.IP++
		exc := t.PopObject()
		if exc == nil {
			t.Exception = t.box(&NullPointerException{})
		} else {
			t.Exception = exc
			if m := exc.Meta; m == nil {
				vm.excMetaFor(exc).Trace = t.snapshotTrace()
			}
		}
		goto throw_

	case opCheckcast:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		class, err := vm.resolveClass(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		obj := t.PeekObject(t.SP - 1)
		if obj != nil && !instanceOf(class, obj) {
			t.Exception = t.box(&ClassCastException{Actual: obj.Class.Name, Target: class.Name})
			goto throw_
		}

	case opInstanceof:
		idx := int(be16(t.Code.Bytes[t.IP+1 : t.IP+3]))
		t.IP += 3
		class, err := vm.resolveClass(t.Code.Pool, idx)
		if err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		obj := t.PopObject()
		if instanceOf(class, obj) {
			t.PushInt(1)
		} else {
			t.PushInt(0)
		}

	case opMonitorenter:
		t.IP++
		obj := t.PopObject()
		if obj == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		obj.Monitor().Acquire(t.ThreadID())

	case opMonitorexit:
		t.IP++
		obj := t.PopObject()
		if obj == nil {
			t.Exception = t.box(&NullPointerException{})
			goto throw_
		}
		obj.Monitor().Release(t.ThreadID())

	case opWide:
		goto wide

	default:
		panic(fmt.Sprintf("interp: unknown opcode 0x%02x", byte(op)))
	}
	goto loop

wide:
	t.IP++
	switch Opcode(t.Code.Bytes[t.IP]) {
	case opAload:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.push(t.Stack[t.Base+idx])
	case opAstore:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.Stack[t.Base+idx] = t.pop()
	case opIinc:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		delta := int16(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.SetLocalInt(idx, t.LocalInt(idx)+int32(delta))
	case opIload:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.PushInt(t.LocalInt(idx))
	case opIstore:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.SetLocalInt(idx, t.PopInt())
	case opLload:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.PushLong(t.LocalLong(idx))
	case opLstore:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.SetLocalLong(idx, t.PopLong())
	case opRet:
		t.IP++
		idx := int(be16(t.Code.Bytes[t.IP : t.IP+2]))
		t.IP += 2
		t.IP = int(t.LocalInt(idx))
	default:
		panic(fmt.Sprintf("interp: unknown wide opcode 0x%02x", t.Code.Bytes[t.IP]))
	}
	goto loop

invoke:
	if method.IsNative() {
		if err := t.invokeNative(method); err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		if t.Exception != nil {
			goto throw_
		}
	} else {
		if err := t.checkStack(method); err != nil {
			t.Exception = t.box(err)
			goto throw_
		}
		t.pushFrame(method)
	}
	goto loop

throw_:
	if t.unwind() {
		goto loop
	}
	return Slot{}, false
}

// pushLiteral pushes a resolved constant-pool literal per its kind.
func (t *Thread) pushLiteral(v classfile.Value) {
	switch v.Kind {
	case classfile.KindInt, classfile.KindFloat:
		t.PushInt(v.I32)
	case classfile.KindLong, classfile.KindDouble:
		t.PushLong(v.I64)
	case classfile.KindString, classfile.KindObject:
		o, _ := v.Obj.(*heap.Object)
		t.PushObject(o)
	}
}

// branchTaken evaluates a comparison-to-zero/pairwise family where the
// opcode's position relative to its family's first member selects the
// comparator (eq/ne/lt/ge/gt/le in that fixed order).
func branchTaken(op, first Opcode, a, b int32) bool {
	switch op - first {
	case 0:
		return a == b
	case 1:
		return a != b
	case 2:
		return a < b
	case 3:
		return a >= b
	case 4:
		return a > b
	default:
		return a <= b
	}
}

func primitiveArrayKind(jvmType byte) heap.ArrayKind {
	switch jvmType {
	case atBoolean:
		return heap.ArrayBoolean
	case atChar:
		return heap.ArrayChar
	case atFloat:
		return heap.ArrayFloat
	case atDouble:
		return heap.ArrayDouble
	case atByte:
		return heap.ArrayByte
	case atShort:
		return heap.ArrayShort
	case atInt:
		return heap.ArrayInt
	case atLong:
		return heap.ArrayLong
	default:
		panic(fmt.Sprintf("interp: unknown newarray type code %d", jvmType))
	}
}
