package classfile

import (
	"encoding/binary"
	"fmt"
)

// FormatVersion is the current on-disk class format version. Bump when
// making an incompatible change to Encode/Decode.
const FormatVersion uint16 = 1

// Magic identifies the format: "JVMC" (the core's class container).
var Magic = []byte{'J', 'V', 'M', 'C'}

// Encode serializes a class to bytes, in a header+length-prefixed-section
// style:
//
//	[magic:4] [version:2]
//	[name] [flags:2] [vmflags:2] [super_name]
//	[field_count:2] [fields...]
//	[method_count:2] [methods...]
//
// Only the data this core needs to execute bytecode is carried; the
// virtual/interface tables and static table are rebuilt by the (out of
// scope) class loader after Decode, from Super/Methods.
func (c *Class) Encode() ([]byte, error) {
	buf := make([]byte, 0, 256+len(c.Methods)*64)
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint16(buf, FormatVersion)
	buf = appendString(buf, c.Name)
	buf = binary.BigEndian.AppendUint16(buf, uint16(c.Flags))
	buf = binary.BigEndian.AppendUint16(buf, uint16(c.VMFlags))
	superName := ""
	if c.Super != nil {
		superName = c.Super.Name
	}
	buf = appendString(buf, superName)

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		buf = appendString(buf, f.Name)
		buf = appendString(buf, f.Spec)
		buf = append(buf, byte(f.Code))
		buf = binary.BigEndian.AppendUint32(buf, uint32(f.Offset))
		if f.Static {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		var err error
		buf, err = appendMethod(buf, m)
		if err != nil {
			return nil, fmt.Errorf("encoding method %s%s: %w", m.Name, m.Spec, err)
		}
	}

	return buf, nil
}

func appendMethod(buf []byte, m *Method) ([]byte, error) {
	buf = appendString(buf, m.Name)
	buf = appendString(buf, m.Spec)
	buf = binary.BigEndian.AppendUint16(buf, uint16(m.Flags))
	buf = binary.BigEndian.AppendUint16(buf, uint16(m.ParamCount))
	buf = binary.BigEndian.AppendUint16(buf, uint16(m.ParamFootprint))
	buf = binary.BigEndian.AppendUint16(buf, uint16(m.VTableOffset))

	if m.Flags&AccNative != 0 {
		buf = append(buf, 0) // no code section
		buf = appendString(buf, m.nativeName)
		return buf, nil
	}
	buf = append(buf, 1)

	code := m.Code
	if code == nil {
		return nil, fmt.Errorf("non-native method %s%s has no code", m.Name, m.Spec)
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(code.MaxLocals))
	buf = binary.BigEndian.AppendUint16(buf, uint16(code.MaxStack))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(code.Bytes)))
	buf = append(buf, code.Bytes...)

	buf = binary.BigEndian.AppendUint16(buf, uint16(len(code.Handlers)))
	for _, h := range code.Handlers {
		buf = binary.BigEndian.AppendUint32(buf, uint32(h.StartPc))
		buf = binary.BigEndian.AppendUint32(buf, uint32(h.EndPc))
		buf = binary.BigEndian.AppendUint32(buf, uint32(h.HandlerPc))
		buf = binary.BigEndian.AppendUint16(buf, uint16(h.CatchType))
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(code.LineTable)))
	for _, l := range code.LineTable {
		buf = binary.BigEndian.AppendUint32(buf, uint32(l.Pc))
		buf = binary.BigEndian.AppendUint32(buf, uint32(l.Line))
	}

	if code.Pool == nil {
		buf = binary.BigEndian.AppendUint16(buf, 0)
		return buf, nil
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(code.Pool.Len()))
	for i := 0; i < code.Pool.Len(); i++ {
		buf = appendPoolSlot(buf, code.Pool, i)
	}

	return buf, nil
}

// poolSlotTag identifies the on-disk slot variant. It intentionally
// mirrors only the symbolic/literal forms: a decoded class always starts
// with unresolved constant-pool entries, since a resolved slot never
// reverts to its symbolic form once published, so we never persist an
// already-resolved slot; Decode always hands back a fresh pool in
// symbolic form for the resolver to fill in again.
type poolSlotTag byte

const (
	tagClassName poolSlotTag = iota
	tagFieldRef
	tagMethodRef
	tagLiteralInt
	tagLiteralLong
	tagLiteralFloat
	tagLiteralDouble
	tagLiteralString
)

func appendPoolSlot(buf []byte, pool *ConstantPool, i int) []byte {
	switch pool.Kind(i) {
	case PoolClassName, PoolClass:
		name := pool.ClassName(i)
		if name == "" {
			if cl := pool.ResolvedClass(i); cl != nil {
				name = cl.Name
			}
		}
		buf = append(buf, byte(tagClassName))
		return appendString(buf, name)
	case PoolFieldRef, PoolFieldEntry:
		ref := pool.SymbolicRef(i)
		buf = append(buf, byte(tagFieldRef))
		buf = appendString(buf, ref.ClassName)
		buf = appendString(buf, ref.Name)
		return appendString(buf, ref.Spec)
	case PoolMethodRef, PoolMethodEntry:
		ref := pool.SymbolicRef(i)
		buf = append(buf, byte(tagMethodRef))
		buf = appendString(buf, ref.ClassName)
		buf = appendString(buf, ref.Name)
		return appendString(buf, ref.Spec)
	default:
		lit := pool.Literal(i)
		switch lit.Kind {
		case KindInt:
			buf = append(buf, byte(tagLiteralInt))
			return binary.BigEndian.AppendUint32(buf, uint32(lit.I32))
		case KindLong:
			buf = append(buf, byte(tagLiteralLong))
			return binary.BigEndian.AppendUint64(buf, uint64(lit.I64))
		case KindFloat:
			buf = append(buf, byte(tagLiteralFloat))
			return binary.BigEndian.AppendUint32(buf, uint32(lit.I32))
		case KindDouble:
			buf = append(buf, byte(tagLiteralDouble))
			return binary.BigEndian.AppendUint64(buf, uint64(lit.I64))
		default:
			buf = append(buf, byte(tagLiteralString))
			return appendString(buf, lit.Str)
		}
	}
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) readString() (string, error) {
	if d.pos+2 > len(d.data) {
		return "", fmt.Errorf("unexpected end of data reading string length at %d", d.pos)
	}
	n := int(binary.BigEndian.Uint16(d.data[d.pos:]))
	d.pos += 2
	if d.pos+n > len(d.data) {
		return "", fmt.Errorf("unexpected end of data reading %d-byte string at %d", n, d.pos)
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	return s, nil
}

func (d *decoder) readUint16() (uint16, error) {
	if d.pos+2 > len(d.data) {
		return 0, fmt.Errorf("unexpected end of data reading uint16 at %d", d.pos)
	}
	v := binary.BigEndian.Uint16(d.data[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if d.pos+4 > len(d.data) {
		return 0, fmt.Errorf("unexpected end of data reading uint32 at %d", d.pos)
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) readUint64() (uint64, error) {
	if d.pos+8 > len(d.data) {
		return 0, fmt.Errorf("unexpected end of data reading uint64 at %d", d.pos)
	}
	v := binary.BigEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *decoder) readByte() (byte, error) {
	if d.pos+1 > len(d.data) {
		return 0, fmt.Errorf("unexpected end of data reading byte at %d", d.pos)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, fmt.Errorf("unexpected end of data reading %d bytes at %d", n, d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Decode reads a class encoded by Encode. superOf resolves a super-class
// name to its already-loaded *Class (the class loader, out of scope here,
// is expected to load classes bottom-up and supply ancestors as they
// become available).
func Decode(data []byte, superOf func(name string) (*Class, error)) (*Class, error) {
	d := &decoder{data: data}
	if len(data) < len(Magic)+2 {
		return nil, fmt.Errorf("class data too short: need at least %d bytes, got %d", len(Magic)+2, len(data))
	}
	magic, err := d.readBytes(len(Magic))
	if err != nil {
		return nil, err
	}
	for i, b := range Magic {
		if magic[i] != b {
			return nil, fmt.Errorf("invalid class magic: expected %q, got %q", Magic, magic)
		}
	}
	version, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	if version > FormatVersion {
		return nil, fmt.Errorf("class format version %d is newer than supported version %d", version, FormatVersion)
	}

	name, err := d.readString()
	if err != nil {
		return nil, fmt.Errorf("reading class name: %w", err)
	}
	flags, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	vmFlags, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	superName, err := d.readString()
	if err != nil {
		return nil, fmt.Errorf("reading super name: %w", err)
	}

	c := &Class{Name: name, Flags: AccessFlags(flags), VMFlags: VMFlags(vmFlags)}
	if superName != "" {
		if superOf == nil {
			return nil, fmt.Errorf("class %s needs superclass %s but no resolver was given", name, superName)
		}
		c.Super, err = superOf(superName)
		if err != nil {
			return nil, fmt.Errorf("resolving superclass %s of %s: %w", superName, name, err)
		}
	}

	fieldCount, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	c.Fields = make([]*Field, fieldCount)
	for i := range c.Fields {
		f, err := decodeField(d, c)
		if err != nil {
			return nil, fmt.Errorf("decoding field %d of %s: %w", i, name, err)
		}
		c.Fields[i] = f
	}

	methodCount, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	c.Methods = make([]*Method, methodCount)
	for i := range c.Methods {
		m, err := decodeMethod(d, c)
		if err != nil {
			return nil, fmt.Errorf("decoding method %d of %s: %w", i, name, err)
		}
		c.Methods[i] = m
	}

	return c, nil
}

func decodeField(d *decoder, owner *Class) (*Field, error) {
	fname, err := d.readString()
	if err != nil {
		return nil, err
	}
	spec, err := d.readString()
	if err != nil {
		return nil, err
	}
	code, err := d.readByte()
	if err != nil {
		return nil, err
	}
	offset, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	static, err := d.readByte()
	if err != nil {
		return nil, err
	}
	return &Field{
		Class:  owner,
		Name:   fname,
		Spec:   spec,
		Code:   FieldCode(code),
		Offset: int(offset),
		Static: static != 0,
	}, nil
}

func decodeMethod(d *decoder, owner *Class) (*Method, error) {
	mname, err := d.readString()
	if err != nil {
		return nil, err
	}
	spec, err := d.readString()
	if err != nil {
		return nil, err
	}
	flags, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	paramCount, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	paramFootprint, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	vtableOffset, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	m := &Method{
		Class:          owner,
		Name:           mname,
		Spec:           spec,
		Flags:          AccessFlags(flags),
		ParamCount:     int(paramCount),
		ParamFootprint: int(paramFootprint),
		VTableOffset:   int(vtableOffset),
	}

	hasCode, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if hasCode == 0 {
		nativeName, err := d.readString()
		if err != nil {
			return nil, err
		}
		m.nativeName = nativeName
		return m, nil
	}

	maxLocals, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	maxStack, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	codeLen, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	codeBytes, err := d.readBytes(int(codeLen))
	if err != nil {
		return nil, err
	}

	handlerCount, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	handlers := make([]ExceptionHandler, handlerCount)
	for i := range handlers {
		startPc, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		endPc, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		handlerPc, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		catchType, err := d.readUint16()
		if err != nil {
			return nil, err
		}
		handlers[i] = ExceptionHandler{
			StartPc:   int(startPc),
			EndPc:     int(endPc),
			HandlerPc: int(handlerPc),
			CatchType: int(catchType),
		}
	}

	lineCount, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	lines := make([]LineEntry, lineCount)
	for i := range lines {
		pc, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		line, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		lines[i] = LineEntry{Pc: int(pc), Line: int(line)}
	}

	poolLen, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	pool := NewConstantPool(int(poolLen))
	for i := 0; i < int(poolLen); i++ {
		if err := decodePoolSlot(d, pool, i); err != nil {
			return nil, fmt.Errorf("decoding pool slot %d: %w", i, err)
		}
	}

	m.Code = &Code{
		Bytes:     append([]byte(nil), codeBytes...),
		MaxLocals: int(maxLocals),
		MaxStack:  int(maxStack),
		Pool:      pool,
		Handlers:  handlers,
		LineTable: lines,
	}
	return m, nil
}

func decodePoolSlot(d *decoder, pool *ConstantPool, i int) error {
	tag, err := d.readByte()
	if err != nil {
		return err
	}
	switch poolSlotTag(tag) {
	case tagClassName:
		name, err := d.readString()
		if err != nil {
			return err
		}
		pool.SetClassName(i, name)
	case tagFieldRef, tagMethodRef:
		className, err := d.readString()
		if err != nil {
			return err
		}
		fname, err := d.readString()
		if err != nil {
			return err
		}
		spec, err := d.readString()
		if err != nil {
			return err
		}
		ref := SymbolicRef{ClassName: className, Name: fname, Spec: spec}
		if poolSlotTag(tag) == tagFieldRef {
			pool.SetFieldRef(i, ref)
		} else {
			pool.SetMethodRef(i, ref)
		}
	case tagLiteralInt:
		v, err := d.readUint32()
		if err != nil {
			return err
		}
		pool.SetLiteral(i, Value{Kind: KindInt, I32: int32(v)})
	case tagLiteralLong:
		v, err := d.readUint64()
		if err != nil {
			return err
		}
		pool.SetLiteral(i, Value{Kind: KindLong, I64: int64(v)})
	case tagLiteralFloat:
		v, err := d.readUint32()
		if err != nil {
			return err
		}
		pool.SetLiteral(i, Value{Kind: KindFloat, I32: int32(v)})
	case tagLiteralDouble:
		v, err := d.readUint64()
		if err != nil {
			return err
		}
		pool.SetLiteral(i, Value{Kind: KindDouble, I64: int64(v)})
	case tagLiteralString:
		s, err := d.readString()
		if err != nil {
			return err
		}
		pool.SetLiteral(i, Value{Kind: KindString, Str: s})
	default:
		return fmt.Errorf("unknown pool slot tag %d", tag)
	}
	return nil
}
