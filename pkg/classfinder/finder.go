package classfinder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chazu/classrun/pkg/classfile"
)

// ClassFinder resolves a class by name, the one contract pkg/interp's
// resolver depends on. FindClass is expected to be idempotent: repeated
// calls for the same name return the same *Class.
type ClassFinder interface {
	FindClass(name string) (*classfile.Class, error)
}

// MapFinder is an in-memory ClassFinder, useful for tests and for
// bootstrapping a handful of classes the natives table depends on
// directly, without touching a filesystem.
type MapFinder struct {
	mu      sync.Mutex
	classes map[string]*classfile.Class
}

// NewMapFinder builds a finder pre-seeded with classes.
func NewMapFinder(classes ...*classfile.Class) *MapFinder {
	m := &MapFinder{classes: make(map[string]*classfile.Class, len(classes))}
	for _, c := range classes {
		m.classes[c.Name] = c
	}
	return m
}

// Put registers or replaces a class by name.
func (m *MapFinder) Put(c *classfile.Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[c.Name] = c
}

// FindClass returns the named class, or an error if it was never put.
func (m *MapFinder) FindClass(name string) (*classfile.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.classes[name]
	if !ok {
		return nil, fmt.Errorf("classfinder: class not found: %s", name)
	}
	return c, nil
}

// PathFinder walks a classpath of directories, decoding ".jvmc" files
// (pkg/classfile's binary format) lazily and caching the result, the way
// the original's class-finder walks compiled-class directories under a
// -classpath argument.
type PathFinder struct {
	roots []string

	mu      sync.Mutex
	loaded  map[string]*classfile.Class
	loading map[string]bool // cycle guard while resolving a superclass chain
}

// NewPathFinder returns a finder that searches roots in order.
func NewPathFinder(roots ...string) *PathFinder {
	return &PathFinder{
		roots:   roots,
		loaded:  make(map[string]*classfile.Class),
		loading: make(map[string]bool),
	}
}

// FindClass loads and decodes className (slash-separated, as in
// "java/lang/Object") from the first root that has a matching ".jvmc"
// file, resolving its superclass chain recursively through this same
// finder.
func (p *PathFinder) FindClass(name string) (*classfile.Class, error) {
	p.mu.Lock()
	if c, ok := p.loaded[name]; ok {
		p.mu.Unlock()
		return c, nil
	}
	if p.loading[name] {
		p.mu.Unlock()
		return nil, fmt.Errorf("classfinder: cyclic superclass resolution at %s", name)
	}
	p.loading[name] = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.loading, name)
		p.mu.Unlock()
	}()

	data, err := p.read(name)
	if err != nil {
		return nil, err
	}
	c, err := classfile.Decode(data, p.FindClass)
	if err != nil {
		return nil, fmt.Errorf("classfinder: decoding %s: %w", name, err)
	}

	p.mu.Lock()
	p.loaded[name] = c
	p.mu.Unlock()
	return c, nil
}

func (p *PathFinder) read(name string) ([]byte, error) {
	rel := strings.ReplaceAll(name, "/", string(filepath.Separator)) + ".jvmc"
	var lastErr error
	for _, root := range p.roots {
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no classpath roots configured")
	}
	return nil, fmt.Errorf("classfinder: class not found on classpath: %s (%w)", name, lastErr)
}
