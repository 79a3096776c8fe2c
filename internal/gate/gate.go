package gate

import "sync/atomic"

// Gate admits at most one question/response cycle at a time. The original
// check-then-set flag relied on a cooperative scheduler; the compare-and-swap
// here keeps the at-most-one-in-flight invariant under real threads.
type Gate struct {
	busy atomic.Bool
}

// New returns a free gate.
func New() *Gate {
	return &Gate{}
}

// TryAcquire marks the gate busy and returns true iff it was free.
// A losing caller observes false and the gate is unchanged.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release unconditionally marks the gate free. It must be called exactly
// once per successful TryAcquire, on every exit path.
func (g *Gate) Release() {
	g.busy.Store(false)
}

// Busy reports whether a request is currently in flight.
func (g *Gate) Busy() bool {
	return g.busy.Load()
}
