package reactor

// Bindable is a target that can absorb an infallible signal's updates.
// Property satisfies it; UI-facing bind targets (out of scope for this
// package) are expected to do the same.
type Bindable[T any] interface {
	Bind(incoming Signal[T, Never]) Disposable
}

// BindTo pipes source into target under target's own non-recursive guard.
// It is the one-way half of bidirectional binding.
func BindTo[T any](source Signal[T, Never], target Bindable[T]) Disposable {
	return target.Bind(source)
}

// BidirectionalBind links two Bindable-and-Signal-producing endpoints under
// a single shared non-recursive guard scheduler, so a value flowing a->b
// can never recursively re-enter the binding that would push it straight
// back as b->a (and vice versa). An Endpoint exposes both directions, a
// Bindable and its value Signal; PropertyEndpoint builds one from a
// Property.
type Endpoint[T any] struct {
	Bindable[T]
	Signal Signal[T, Never]
}

// PropertyEndpoint adapts a Property to the Endpoint shape BidirectionalBind
// needs.
func PropertyEndpoint[T any](p *Property[T]) Endpoint[T] {
	return Endpoint[T]{Bindable: p, Signal: p.AsSignal()}
}

// BidirectionalBind wires a and b together: a's emissions update b and b's
// emissions update a, with a single guard shared by both directions. Each
// side is bound exactly once, to a relay subject fed by the other side's
// signal through that shared guard — so a round trip (a's update reaching
// b, applying, and b re-emitting back towards a) arrives at the guard
// while it is still marked executing from the original a->b hop, and is
// dropped instead of bouncing forever.
func BidirectionalBind[T any](a, b Endpoint[T]) Disposable {
	guard := NewNonRecursiveScheduler(syncScheduler{})

	toB := NewPassthroughSubject[T, Never]()
	toA := NewPassthroughSubject[T, Never]()

	aToB := a.Signal.Observe(func(ev Event[T, Never]) {
		if v, ok := ev.Value(); ok {
			guard.Schedule(func() { toB.Send(NextEvent[T, Never](v)) })
		}
	})
	bToA := b.Signal.Observe(func(ev Event[T, Never]) {
		if v, ok := ev.Value(); ok {
			guard.Schedule(func() { toA.Send(NextEvent[T, Never](v)) })
		}
	})

	bBind := b.Bind(toB.AsSignal())
	aBind := a.Bind(toA.AsSignal())

	return NewCompositeDisposable(aToB, bToA, bBind, aBind)
}

// BindToBag is BindTo scoped to bag's lifetime: the binding is added to bag
// and torn down (at the latest) when bag is disposed.
func BindToBag[T any](source Signal[T, Never], target Bindable[T], bag *DisposeBag) Disposable {
	d := target.Bind(source)
	bag.Add(d)
	return d
}
