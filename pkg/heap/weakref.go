package heap

import "sync"

// weakRefs is the heap's weak-reference chain: every instance of a class
// carrying classfile.WeakReferenceFlag gets linked in at allocation time,
// guarded by its own mutex (grounded on run.cpp's registerWeakReference,
// which chains the new object through t->vm->weakReferences under
// t->vm->referenceLock).
type weakRefs struct {
	mu    sync.Mutex
	chain []*Object
}

func (w *weakRefs) register(o *Object) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.chain = append(w.chain, o)
}

// Snapshot returns the current weak-reference chain. Since ArenaHeap never
// collects, every registered object is still live; a real collector would
// instead walk this slice clearing entries whose referent is unreachable.
func (w *weakRefs) snapshot() []*Object {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Object, len(w.chain))
	copy(out, w.chain)
	return out
}
