// Package heap implements the managed-heap contract as an external
// collaborator reached only through its interface, plus the minimal
// concrete implementation needed to make pkg/interp runnable and
// testable end to end. It owns object allocation, typed field accessors
// over the boxed object layout, the weak-reference registry, and monitor
// acquire/release.
//
// There is no garbage collector here — a concrete collection policy is
// out of scope: ArenaHeap never reclaims a cell. GC-root scanning of the
// interpreter's stack and frame chain — the one piece of the contract
// pkg/interp actually depends on — is satisfied trivially by ArenaHeap
// holding every allocated cell forever, so "is it a GC root" is never
// asked.
package heap
