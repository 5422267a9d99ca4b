package ring

import "sync"

// Waker couples a Ring's producer to its consumer's wait loop.
//
// The producer side must never block, so Wake only signals when the
// consumer's lock can be taken without waiting. A skipped signal is
// never a lost event: the consumer drains everything available each
// time it wakes, and Wait rechecks the pending condition before going
// back to sleep.
type Waker struct {
	mu   sync.Mutex
	cond *sync.Cond
	done bool
}

// NewWaker returns a ready-to-use waker.
func NewWaker() *Waker {
	w := &Waker{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// Wake nudges the consumer. Safe from the realtime thread: if the lock
// is held (the consumer is mid-drain or about to sleep) the signal is
// skipped instead of waited for.
func (w *Waker) Wake() {
	if w.mu.TryLock() {
		w.cond.Signal()
		w.mu.Unlock()
	}
}

// Wait blocks until there is something to do: it sleeps while pending
// returns false and no shutdown happened. It returns false once
// Shutdown has been called; pending events may still be drained after
// that if the caller wishes.
//
// pending is evaluated with the lock held, so it must be cheap and must
// not call back into the waker.
func (w *Waker) Wait(pending func() bool) bool {
	w.mu.Lock()
	for !w.done && !pending() {
		w.cond.Wait()
	}
	done := w.done
	w.mu.Unlock()
	return !done
}

// Shutdown makes every current and future Wait return false. It takes
// the lock, so it must only be called from non-realtime code.
func (w *Waker) Shutdown() {
	w.mu.Lock()
	w.done = true
	w.cond.Broadcast()
	w.mu.Unlock()
}
