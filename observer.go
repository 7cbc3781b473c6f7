package reactor

import "sync"

// Observer is a sink: a callback invoked once per Event a Signal produces.
type Observer[T, E any] func(Event[T, E])

// guardedObserver wraps a user-supplied Observer with the invariants every
// subscription must uphold:
//
//  1. Single termination: the first terminal event closes the observer;
//     anything delivered afterwards, terminal or not, is dropped.
//  2. Post-disposal silence: once sub reports disposed, nothing is forwarded.
//  3. Auto-dispose on terminal: a terminal event disposes sub after being
//     forwarded, releasing any operator state sub owns.
//  4. Serialized delivery: downstream is never invoked twice concurrently,
//     and never for a later event while an earlier one is still being
//     delivered, so a source emitting on one goroutine and a timer on
//     another can never interleave a non-terminal event past a terminal
//     one. This is a trampoline, the same shape as schedulers.Trampoline:
//     the first emit on an idle observer delivers inline and then drains
//     anything queued behind it: concurrent emits from other goroutines,
//     or a reentrant emit triggered synchronously from inside downstream
//     itself, queue instead of blocking on mu and are drained by whichever
//     goroutine is already delivering.
type guardedObserver[T, E any] struct {
	mu         sync.Mutex
	downstream Observer[T, E]
	terminated bool
	sub        Disposable
	queue      []Event[T, E]
	delivering bool
}

func newGuardedObserver[T, E any](downstream Observer[T, E], sub Disposable) *guardedObserver[T, E] {
	return &guardedObserver[T, E]{downstream: downstream, sub: sub}
}

func (g *guardedObserver[T, E]) emit(ev Event[T, E]) {
	g.mu.Lock()
	if g.terminated || g.sub.IsDisposed() {
		g.mu.Unlock()
		return
	}
	if g.delivering {
		g.queue = append(g.queue, ev)
		g.mu.Unlock()
		return
	}
	g.delivering = true
	g.mu.Unlock()

	g.deliver(ev)
	g.drain()
}

// drain delivers whatever queued up behind the event emit just delivered,
// including anything a reentrant emit appended while deliver ran.
func (g *guardedObserver[T, E]) drain() {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.delivering = false
			g.mu.Unlock()
			return
		}
		next := g.queue[0]
		g.queue = g.queue[1:]
		g.mu.Unlock()
		g.deliver(next)
	}
}

func (g *guardedObserver[T, E]) deliver(ev Event[T, E]) {
	g.mu.Lock()
	if g.terminated || g.sub.IsDisposed() {
		g.mu.Unlock()
		return
	}
	if ev.IsTerminal() {
		g.terminated = true
	}
	g.mu.Unlock()

	g.downstream(ev)

	if ev.IsTerminal() {
		g.sub.Dispose()
	}
}

// Sink builds an Observer from separate value/completion callbacks. onValue
// is called for every Next event; onCompletion is called exactly once, with
// either nil (orderly completion) or the terminal error, and is also the
// last call the resulting Observer ever makes.
func Sink[T, E any](onValue func(T), onCompletion func(err *E)) Observer[T, E] {
	return func(ev Event[T, E]) {
		switch ev.Kind() {
		case KindNext:
			if onValue != nil {
				onValue(ev.MustValue())
			}
		case KindFailed:
			if onCompletion != nil {
				err := ev.MustErr()
				onCompletion(&err)
			}
		case KindCompleted:
			if onCompletion != nil {
				onCompletion(nil)
			}
		}
	}
}
