// Package reactor implements a push-based, composable abstraction for
// asynchronous sequences of values: cold signals, hot subjects, ref-counted
// multicasting, properties, and the operator algebra that transforms them.
package reactor

// Kind identifies which variant of Event is carried.
type Kind uint8

const (
	// KindNext marks a non-terminal emission carrying a value.
	KindNext Kind = iota
	// KindFailed marks a terminal emission carrying a typed error.
	KindFailed
	// KindCompleted marks a terminal emission signalling orderly end.
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindFailed:
		return "failed"
	case KindCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is the sum type pushed through a Signal: exactly one of a value
// (Next), a typed failure (Failed), or an orderly end (Completed). Failed
// and Completed are terminal; at most one terminal event may be observed
// per subscription, and it is always the last one.
type Event[T, E any] struct {
	kind  Kind
	value T
	err   E
}

// NextEvent wraps a non-terminal value.
func NextEvent[T, E any](value T) Event[T, E] {
	return Event[T, E]{kind: KindNext, value: value}
}

// FailedEvent wraps a terminal, typed failure.
func FailedEvent[T, E any](err E) Event[T, E] {
	return Event[T, E]{kind: KindFailed, err: err}
}

// CompletedEvent is the terminal, successful-end event.
func CompletedEvent[T, E any]() Event[T, E] {
	return Event[T, E]{kind: KindCompleted}
}

// Kind reports which variant this event is.
func (e Event[T, E]) Kind() Kind { return e.kind }

// IsTerminal reports whether this event closes the subscription.
func (e Event[T, E]) IsTerminal() bool { return e.kind != KindNext }

// Value returns the carried value and true when Kind() == KindNext.
func (e Event[T, E]) Value() (T, bool) {
	return e.value, e.kind == KindNext
}

// Err returns the carried error and true when Kind() == KindFailed.
func (e Event[T, E]) Err() (E, bool) {
	return e.err, e.kind == KindFailed
}

// MustValue returns the carried value, panicking if this isn't a Next event.
// Intended for operator internals that have already matched on Kind().
func (e Event[T, E]) MustValue() T {
	if e.kind != KindNext {
		panic("reactor: MustValue called on a " + e.kind.String() + " event")
	}
	return e.value
}

// MustErr returns the carried error, panicking if this isn't a Failed event.
func (e Event[T, E]) MustErr() E {
	if e.kind != KindFailed {
		panic("reactor: MustErr called on a " + e.kind.String() + " event")
	}
	return e.err
}
