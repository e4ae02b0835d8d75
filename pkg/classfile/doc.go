// Package classfile defines the in-memory representation of a loaded class:
// its constant pool, fields, methods, and the bytecode and exception-handler
// tables attached to each method's code. It also provides a binary
// serialization format ("JVMC") so a class can be written to and read back
// from disk, and a small cross-run resolution-hint cache encoded with CBOR.
//
// Nothing in this package executes bytecode; it is the static data model
// that pkg/interp walks. Resolution (rewriting a symbolic constant-pool
// entry into a direct reference) happens in pkg/interp, but the in-place
// overwrite of the pool slot is a method on ConstantPool here, since the
// pool owns its own slot storage and publication ordering.
package classfile
