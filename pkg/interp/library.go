package interp

import (
	"fmt"
	"plugin"

	"github.com/chazu/classrun/pkg/classfile"
)

// Library is one entry in the dynamic-library chain native binding walks
// before falling back to the built-in table, matching run.cpp's
// System::Library chain (t->vm->libraries, walked in
// resolveNativeMethodData): each library gets a chance to resolve a
// symbol before the next one is tried.
type Library interface {
	// Resolve returns the bound function for symbol, or ok=false if this
	// library doesn't export it.
	Resolve(symbol string) (fn classfile.NativeFunc, ok bool)
}

// LibraryChain implements NativeTable: Libraries are tried in order and
// the first hit wins, reported as non-builtin so invokeNative leaves
// ActiveState for the call; only once every library has missed does
// Builtins get a turn, and a builtin hit is always reported as builtin.
type LibraryChain struct {
	Libraries []Library
	Builtins  NativeTable
}

// NewLibraryChain builds a chain from libs, falling back to builtins
// (which may be nil, in which case an unresolved symbol in every library
// is simply unresolved).
func NewLibraryChain(libs []Library, builtins NativeTable) *LibraryChain {
	return &LibraryChain{Libraries: libs, Builtins: builtins}
}

func (c *LibraryChain) Resolve(symbol string) (classfile.NativeFunc, bool, bool) {
	for _, lib := range c.Libraries {
		if fn, ok := lib.Resolve(symbol); ok {
			return fn, false, true
		}
	}
	if c.Builtins != nil {
		return c.Builtins.Resolve(symbol)
	}
	return nil, false, false
}

// PluginLibrary resolves native symbols from a Go plugin opened with the
// standard library's plugin package, the closest Go analogue to
// System::Library's dlopen/dlsym wrapper: the .so is opened once, and
// each Resolve call does a plugin.Lookup by symbol name and type-asserts
// the result against classfile.NativeFunc's call signature.
type PluginLibrary struct {
	path string
	p    *plugin.Plugin
}

// OpenPluginLibrary opens the plugin at path. The plugin package only
// supports ELF platforms (linux, most BSDs); on an unsupported GOOS,
// plugin.Open returns an error and the library chain simply never gets
// this entry.
func OpenPluginLibrary(path string) (*PluginLibrary, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("interp: opening native library %s: %w", path, err)
	}
	return &PluginLibrary{path: path, p: p}, nil
}

func (l *PluginLibrary) Resolve(symbol string) (classfile.NativeFunc, bool) {
	sym, err := l.p.Lookup(symbol)
	if err != nil {
		return nil, false
	}
	fn, ok := sym.(func(any, []uint64) uint64)
	if !ok {
		return nil, false
	}
	return classfile.NativeFunc(fn), true
}
