package reactor

// Never stands in for an uninhabited error type: a value of this type
// can never actually be constructed by well-behaved code, so a
// Signal[T, Never] is statically proven infallible. Go has no
// true bottom type, so Never is just an empty struct and the guarantee is
// by convention rather than by the compiler refusing a FailedEvent[T,
// Never] call — operators in this package never construct one.
type Never struct{}

// CastError relabels an infallible event's phantom error type. It does no
// runtime work: an infallible Event can never be Failed, so there is never
// an actual error value to convert, only a type parameter to re-tag. Use
// this wherever a Signal[T, Never] needs to flow into code expecting
// Signal[T, E] for some concrete E.
func CastError[E2, T any](e Event[T, Never]) Event[T, E2] {
	switch e.kind {
	case KindNext:
		return NextEvent[T, E2](e.value)
	case KindCompleted:
		return CompletedEvent[T, E2]()
	default:
		// Unreachable for a well-formed infallible event: there is no
		// Never value to carry as the new error.
		panic("reactor: CastError observed a Failed event on an infallible signal")
	}
}

// CastSignal widens a Signal[T, Never] into a Signal[T, E2] for any E2,
// the signal-level counterpart to CastError.
func CastSignal[E2, T any](s Signal[T, Never]) Signal[T, E2] {
	return New(func(observer Observer[T, E2]) Disposable {
		return s.Observe(func(e Event[T, Never]) {
			observer(CastError[E2](e))
		})
	})
}
