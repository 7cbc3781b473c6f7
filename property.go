package reactor

import "runtime"

// Property is a mutable cell that is also an infallible Signal: subscribing
// delivers the current value synchronously, then every subsequent mutation.
// Value/SetValue are safe for concurrent use; the value read and the
// registration performed by AsSignal's Observe share one critical section,
// so no update can be missed or double-delivered to a subscriber racing
// with a writer.
type Property[T any] struct {
	reg            registry[T, Never]
	value          T
	boundScheduler Scheduler
}

// NewProperty returns a Property seeded with initial.
func NewProperty[T any](initial T) *Property[T] {
	return &Property[T]{value: initial}
}

// Value returns the current value.
func (p *Property[T]) Value() T {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	return p.value
}

// SetValue stores v and emits Next(v) to every current subscriber.
func (p *Property[T]) SetValue(v T) {
	p.reg.mu.Lock()
	p.value = v
	p.reg.pruneLocked()
	snapshot := p.reg.snapshotLocked()
	p.reg.mu.Unlock()
	deliver(snapshot, NextEvent[T, Never](v))
}

// SilentUpdate stores v without emitting, for callers that need to seed or
// correct state without notifying observers.
func (p *Property[T]) SilentUpdate(v T) {
	p.reg.mu.Lock()
	p.value = v
	p.reg.mu.Unlock()
}

// AsSignal returns the infallible signal view of this property: Observe
// delivers the current value immediately, then every later SetValue.
func (p *Property[T]) AsSignal() Signal[T, Never] {
	return New(func(observer Observer[T, Never]) Disposable {
		p.reg.mu.Lock()
		current := p.value
		token := p.reg.addLocked(observer)
		p.reg.mu.Unlock()

		observer(NextEvent[T, Never](current))
		return NewBlockDisposable(func() { p.reg.remove(token) })
	})
}

// Bind implements the Bindable contract: incoming is subscribed under a
// non-recursive guard scheduler so that a value this property re-emits
// while applying an update can never recursively re-enter the same bind,
// and each value received is applied via SetValue. The returned Disposable
// is additionally finalizer-bound so a forgotten bind doesn't keep
// incoming's producer alive past this property's lifetime.
func (p *Property[T]) Bind(incoming Signal[T, Never]) Disposable {
	if p.boundScheduler == nil {
		p.boundScheduler = NewNonRecursiveScheduler(syncScheduler{})
	}
	d := incoming.Observe(func(ev Event[T, Never]) {
		if v, ok := ev.Value(); ok {
			p.boundScheduler.Schedule(func() { p.SetValue(v) })
		}
	})
	bound := BindToDeinit(d)
	runtime.SetFinalizer(p, func(*Property[T]) { bound.Dispose() })
	return bound
}
