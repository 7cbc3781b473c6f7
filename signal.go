package reactor

// Producer is the closure a Signal wraps: given the guarded downstream
// observer, it starts emitting and returns a Disposable that tears down
// whatever resources (timers, goroutines, inner subscriptions) the
// production needs.
type Producer[T, E any] func(observer Observer[T, E]) Disposable

// Signal is an immutable description of a producer — semantically a
// function from an Observer to a Disposable. It is cold: every Observe
// call starts a fresh, independent execution with its own subscription
// state. Signal values are cheap to copy and share no state across
// subscriptions.
type Signal[T, E any] struct {
	producer Producer[T, E]
}

// New builds a Signal from a raw producer closure.
func New[T, E any](producer Producer[T, E]) Signal[T, E] {
	return Signal[T, E]{producer: producer}
}

// Observe starts a new subscription: the observer is wrapped in the
// guarded-observer invariants, the producer is invoked with the
// wrapped observer, and the disposable the producer returns is stored into
// the subscription's own serial disposable. The returned Disposable both
// cancels the subscription and reports whether it has already terminated
// or been cancelled.
func (s Signal[T, E]) Observe(observer Observer[T, E]) Disposable {
	sub := NewSerialDisposable()
	guarded := newGuardedObserver(observer, sub)
	producerDisposable := s.producer(guarded.emit)
	sub.Swap(producerDisposable)
	return sub
}

// ObserveEvent is an alias for Observe using the Event-callback form
// directly.
func (s Signal[T, E]) ObserveEvent(fn func(Event[T, E])) Disposable {
	return s.Observe(Observer[T, E](fn))
}

// ObserveNext subscribes to an infallible signal with a value-only
// callback; only usable when E is Never, since there is no failure to
// otherwise account for.
func ObserveNext[T any](s Signal[T, Never], fn func(T)) Disposable {
	return s.Observe(func(ev Event[T, Never]) {
		if v, ok := ev.Value(); ok {
			fn(v)
		}
	})
}

// ObserveSink subscribes using separate value/completion callbacks; see Sink.
func (s Signal[T, E]) ObserveSink(onValue func(T), onCompletion func(err *E)) Disposable {
	return s.Observe(Sink(onValue, onCompletion))
}

// ToSlice synchronously drains a signal that is known to complete on the
// calling goroutine (e.g. composed purely from Sequence/Map/Filter without
// any scheduler boundary) and returns the values it emitted along with the
// terminal error, if any. It exists for tests and REPL-style exploration;
// it will hang on a signal that needs another goroutine to progress.
func ToSlice[T, E any](s Signal[T, E]) ([]T, *E) {
	var values []T
	var failure *E
	done := make(chan struct{})
	s.Observe(func(ev Event[T, E]) {
		switch ev.Kind() {
		case KindNext:
			values = append(values, ev.MustValue())
		case KindFailed:
			err := ev.MustErr()
			failure = &err
			close(done)
		case KindCompleted:
			close(done)
		}
	})
	<-done
	return values, failure
}
