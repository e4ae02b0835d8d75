package interp

import (
	"testing"

	"github.com/chazu/classrun/pkg/classfile"
)

type mapLibrary map[string]classfile.NativeFunc

func (m mapLibrary) Resolve(symbol string) (classfile.NativeFunc, bool) {
	fn, ok := m[symbol]
	return fn, ok
}

func TestLibraryChainTriesLibrariesBeforeBuiltins(t *testing.T) {
	libHit := classfile.NativeFunc(func(thread any, args []uint64) uint64 { return 1 })
	builtinHit := classfile.NativeFunc(func(thread any, args []uint64) uint64 { return 2 })

	chain := NewLibraryChain(
		[]Library{mapLibrary{"shared": libHit}},
		&stubNativeTable{fn: builtinHit, builtin: true},
	)

	fn, builtin, ok := chain.Resolve("shared")
	if !ok {
		t.Fatal("expected a hit from the library")
	}
	if builtin {
		t.Fatal("a symbol resolved by a Library must be reported as non-builtin")
	}
	if fn(nil, nil) != 1 {
		t.Fatal("expected the library's function, not the builtin's")
	}
}

func TestLibraryChainTriesLibrariesInOrder(t *testing.T) {
	first := classfile.NativeFunc(func(thread any, args []uint64) uint64 { return 1 })
	second := classfile.NativeFunc(func(thread any, args []uint64) uint64 { return 2 })

	chain := NewLibraryChain([]Library{
		mapLibrary{"onlySecond": second},
		mapLibrary{"shared": first, "onlySecond": first},
	}, nil)

	fn, _, ok := chain.Resolve("onlySecond")
	if !ok || fn(nil, nil) != 2 {
		t.Fatal("expected the first library in the chain exporting the symbol to win")
	}
}

func TestLibraryChainFallsBackToBuiltinsWhenNoLibraryResolves(t *testing.T) {
	builtinHit := classfile.NativeFunc(func(thread any, args []uint64) uint64 { return 42 })
	chain := NewLibraryChain([]Library{mapLibrary{}}, &stubNativeTable{fn: builtinHit, builtin: true})

	fn, builtin, ok := chain.Resolve("println")
	if !ok {
		t.Fatal("expected the builtin fallback to resolve")
	}
	if !builtin {
		t.Fatal("a builtin-table hit must be reported as builtin")
	}
	if fn(nil, nil) != 42 {
		t.Fatal("expected the builtin's function")
	}
}

func TestLibraryChainUnresolvedWithNilBuiltins(t *testing.T) {
	chain := NewLibraryChain([]Library{mapLibrary{}}, nil)

	if _, _, ok := chain.Resolve("missing"); ok {
		t.Fatal("expected no resolution with an empty chain and nil builtins")
	}
}
