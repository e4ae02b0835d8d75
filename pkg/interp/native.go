package interp

import (
	"fmt"

	"github.com/chazu/classrun/pkg/classfile"
)

// UnsatisfiedLinkError is raised when no library and no builtin resolves
// a native method's symbol.
type UnsatisfiedLinkError struct{ Symbol string }

func (e *UnsatisfiedLinkError) Error() string { return e.Symbol }

// describeNative parses method's spec once into a per-argument FFI type
// descriptor. ParamTypes[0] is always POINTER
// (the thread argument every NativeFunc receives via its dedicated
// `thread any` parameter rather than as an args[] slot); ParamTypes[1] is
// POINTER for the receiver of a non-static method. Object and array
// parameters marshal as POINTER, meaning: the argument in args[] is not a
// raw address but a handle returned by Thread.Pin for the slot's object
// reference, so a builtin can recover it with Thread.Handle. An array
// argument's handle resolves to nil, since only the slot's Ref is pinned.
func describeNative(method *classfile.Method) (*classfile.NativeMethodData, error) {
	types := []classfile.FFIType{classfile.FFIPointer}
	if !method.IsStatic() {
		types = append(types, classfile.FFIPointer)
	}

	spec := method.Spec
	i := 1 // skip '('
	for i < len(spec) && spec[i] != ')' {
		code := classfile.FieldCode(spec[i])
		switch code {
		case classfile.ObjectField:
			types = append(types, classfile.FFIPointer)
			for i < len(spec) && spec[i] != ';' {
				i++
			}
			i++
		case classfile.ArrayField:
			types = append(types, classfile.FFIPointer)
			for i < len(spec) && spec[i] == '[' {
				i++
			}
			if i < len(spec) && spec[i] == 'L' {
				for i < len(spec) && spec[i] != ';' {
					i++
				}
			}
			i++
		case classfile.LongField:
			types = append(types, classfile.FFIInt64)
			i++
		case classfile.DoubleField:
			types = append(types, classfile.FFIDouble)
			i++
		case classfile.FloatField:
			types = append(types, classfile.FFIFloat)
			i++
		case classfile.ByteField, classfile.BooleanField:
			types = append(types, classfile.FFIInt8)
			i++
		case classfile.ShortField:
			types = append(types, classfile.FFIInt16)
			i++
		case classfile.CharField, classfile.IntField:
			types = append(types, classfile.FFIInt32)
			i++
		default:
			return nil, fmt.Errorf("interp: unrecognized parameter descriptor byte %q in %s", spec[i], spec)
		}
	}

	retCode := classfile.VoidField
	if i+1 < len(spec) {
		retCode = classfile.FieldCode(spec[i+1])
	}

	return &classfile.NativeMethodData{
		ParamTypes:        types,
		ReturnCode:        retCode,
		ArgumentTableSize: len(types) * 8,
	}, nil
}

// bindNative resolves method's symbol through the machine's native table
// and memoizes the binding. Safe to race: only the first successful bind
// is kept (classfile.Method.BindNative).
func (vm *Machine) bindNative(method *classfile.Method) (*classfile.NativeMethodData, error) {
	if data := method.NativeData(); data != nil {
		return data, nil
	}

	desc, err := describeNative(method)
	if err != nil {
		return nil, err
	}

	if vm.Natives == nil {
		return nil, &UnsatisfiedLinkError{Symbol: method.NativeName()}
	}
	fn, builtin, ok := vm.Natives.Resolve(method.NativeName())
	if !ok {
		return nil, &UnsatisfiedLinkError{Symbol: method.NativeName()}
	}
	desc.Function = fn
	desc.Builtin = builtin

	return method.BindNative(desc), nil
}

// invokeNative runs a native method: push a frame, marshal the declared
// arguments, call through the uniform FFI contract, pop the frame, and
// push the typed result.
func (t *Thread) invokeNative(method *classfile.Method) error {
	data, err := t.vm.bindNative(method)
	if err != nil {
		return err
	}

	t.pushFrame(method)

	count := method.ParamCount
	args := make([]uint64, 0, count)
	sp := t.Base
	// data.ParamTypes[0] is the implicit thread pointer; skip it, and the
	// receiver slot too if present, since pushFrame already placed the
	// receiver at t.Base and a non-static builtin can reach it without
	// going through args.
	typeIdx := 1
	if !method.IsStatic() {
		typeIdx++
		sp++
	}
	for ; typeIdx < len(data.ParamTypes); typeIdx++ {
		switch data.ParamTypes[typeIdx] {
		case classfile.FFIInt64, classfile.FFIDouble:
			args = append(args, t.Stack[sp].Value)
			sp += 2
		case classfile.FFIPointer:
			args = append(args, t.Pin(t.Stack[sp].Ref))
			sp++
		default:
			args = append(args, t.Stack[sp].Value)
			sp++
		}
	}

	oldState := t.State()
	if !data.Builtin {
		t.EnterState(IdleState)
	}

	if t.vm.Trace {
		fmt.Printf("invoke native method %s.%s\n", method.Class.Name, method.Name)
	}

	result := data.Function(t, args)

	if !data.Builtin {
		t.EnterState(oldState)
	}

	t.popFrame()

	if t.Exception != nil {
		t.handles = nil
		return nil
	}

	switch data.ReturnCode {
	case classfile.ByteField, classfile.BooleanField, classfile.CharField,
		classfile.ShortField, classfile.FloatField, classfile.IntField:
		t.PushInt(int32(uint32(result)))
	case classfile.LongField, classfile.DoubleField:
		t.PushLong(int64(result))
	case classfile.ObjectField:
		if result == noHandle {
			t.PushObject(nil)
		} else {
			t.PushObject(t.Handle(result))
		}
	case classfile.VoidField:
	default:
		t.handles = nil
		return fmt.Errorf("interp: unknown native return code %q", byte(data.ReturnCode))
	}
	t.handles = nil
	return nil
}

// noHandle is the sentinel a NativeFunc returns for a null object result.
// Handle 0 is reachable (the first pin of a call), so a dedicated
// out-of-band sentinel is needed rather than reusing handle index 0.
const noHandle uint64 = ^uint64(0)
