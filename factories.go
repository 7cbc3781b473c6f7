package reactor

import "time"

// Iterator is a pull-style sequence used by Sequence/SequenceInterval so
// both finite and infinite sources share one shape. Next returns the next
// value and true, or the zero value and false once exhausted.
type Iterator[T any] interface {
	Next() (T, bool)
}

// sliceIterator adapts a finite slice to Iterator.
type sliceIterator[T any] struct {
	items []T
	pos   int
}

// SliceIterator returns an Iterator that yields items in order, then stops.
func SliceIterator[T any](items []T) Iterator[T] {
	return &sliceIterator[T]{items: items}
}

func (it *sliceIterator[T]) Next() (T, bool) {
	if it.pos >= len(it.items) {
		var zero T
		return zero, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// funcIterator adapts a generator function to Iterator, for infinite or
// computed sequences (e.g. counters).
type funcIterator[T any] struct {
	fn func() (T, bool)
}

// FuncIterator returns an Iterator backed by fn.
func FuncIterator[T any](fn func() (T, bool)) Iterator[T] {
	return &funcIterator[T]{fn: fn}
}

func (it *funcIterator[T]) Next() (T, bool) { return it.fn() }

// Just emits v once, then completes.
func Just[T, E any](v T) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		observer(NextEvent[T, E](v))
		observer(CompletedEvent[T, E]())
		return NoopDisposable
	})
}

// JustAfter schedules a single emission of v, then completes, after delay
// on scheduler.
func JustAfter[T, E any](v T, delay time.Duration, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return scheduler.ScheduleAfter(delay, func() {
			observer(NextEvent[T, E](v))
			observer(CompletedEvent[T, E]())
		})
	})
}

// Sequence synchronously drains it, emitting each value in order and
// completing when it is exhausted. The whole drain runs inside Observe,
// before the subscription handle is returned, so disposing that handle
// cannot stop it part-way: events after a disposal are dropped by the
// guarded observer, but the iterator is still pulled to exhaustion, and an
// infinite iterator never returns. SequenceInterval emits one item per tick
// and stops on disposal.
func Sequence[T, E any](it Iterator[T]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		d := NewFlagDisposable()
		for !d.IsDisposed() {
			v, ok := it.Next()
			if !ok {
				observer(CompletedEvent[T, E]())
				break
			}
			observer(NextEvent[T, E](v))
		}
		return d
	})
}

// SequenceInterval emits one item from it per dt tick on scheduler,
// completing when it is exhausted. Disposing cancels the pending tick.
func SequenceInterval[T, E any](it Iterator[T], dt time.Duration, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		pending := NewSerialDisposable()
		var tick func()
		tick = func() {
			v, ok := it.Next()
			if !ok {
				observer(CompletedEvent[T, E]())
				return
			}
			observer(NextEvent[T, E](v))
			pending.Swap(scheduler.ScheduleAfter(dt, tick))
		}
		pending.Swap(scheduler.ScheduleAfter(dt, tick))
		return pending
	})
}

// Err emits a single terminal failure.
func Err[T, E any](err E) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		observer(FailedEvent[T, E](err))
		return NoopDisposable
	})
}

// CompletedSignal emits only a Completed event.
func CompletedSignal[T, E any]() Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		observer(CompletedEvent[T, E]())
		return NoopDisposable
	})
}

// NeverSignal never emits anything and never terminates.
func NeverSignal[T, E any]() Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return NoopDisposable
	})
}

// Empty emits Completed immediately if completeImmediately is true;
// otherwise it behaves like NeverSignal (useful as a configurable
// base case in operator tests).
func Empty[T, E any](completeImmediately bool) Signal[T, E] {
	if completeImmediately {
		return CompletedSignal[T, E]()
	}
	return NeverSignal[T, E]()
}

// FromClosure runs fn once per subscription and emits its result, then
// completes. Intended for infallible, side-effect-free computation.
func FromClosure[T, E any](fn func() T) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		observer(NextEvent[T, E](fn()))
		observer(CompletedEvent[T, E]())
		return NoopDisposable
	})
}

// FromFallible runs fn once per subscription; a non-nil error fails the
// signal, otherwise the value is emitted and the signal completes.
func FromFallible[T, E any](fn func() (T, *E)) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		v, err := fn()
		if err != nil {
			observer(FailedEvent[T, E](*err))
			return NoopDisposable
		}
		observer(NextEvent[T, E](v))
		observer(CompletedEvent[T, E]())
		return NoopDisposable
	})
}

// FromResult emits v and completes if err is nil, otherwise fails with
// *err. Unlike FromFallible, the result is already in hand rather than
// produced by a closure run per subscription.
func FromResult[T, E any](v T, err *E) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		if err != nil {
			observer(FailedEvent[T, E](*err))
			return NoopDisposable
		}
		observer(NextEvent[T, E](v))
		observer(CompletedEvent[T, E]())
		return NoopDisposable
	})
}

// FromCatching runs fn once per subscription, converting a panic into a
// Failed event via toErr, only meaningful when E is the universal error
// kind the caller panics with (e.g. E = error).
func FromCatching[T, E any](fn func() T, toErr func(recovered any) E) Signal[T, E] {
	return New(func(observer Observer[T, E]) (d Disposable) {
		d = NoopDisposable
		defer func() {
			if r := recover(); r != nil {
				observer(FailedEvent[T, E](toErr(r)))
			}
		}()
		v := fn()
		observer(NextEvent[T, E](v))
		observer(CompletedEvent[T, E]())
		return d
	})
}

// FromCallbackCapture rewrites *slot to a function that pushes into the
// returned signal: every call to the resulting *slot after Observe is
// forwarded as a Next event to every current observer. This bridges a
// by-reference callback-style API (the single most common legacy
// interop shape) into the signal kernel.
func FromCallbackCapture[T, E any](slot *func(T)) Signal[T, E] {
	subject := NewPassthroughSubject[T, E]()
	*slot = func(v T) { subject.Send(NextEvent[T, E](v)) }
	return subject.AsSignal()
}

// Future adapts a one-shot, callback-driven computation: fulfil is called
// once per subscription with a function that, when called with (value,
// err), emits the corresponding terminal event exactly once. Subsequent
// calls to the settle function are ignored.
func Future[T, E any](fulfil func(settle func(T, *E))) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		settled := NewFlagDisposable()
		fulfil(func(v T, err *E) {
			if settled.IsDisposed() {
				return
			}
			settled.Dispose()
			if err != nil {
				observer(FailedEvent[T, E](*err))
				return
			}
			observer(NextEvent[T, E](v))
			observer(CompletedEvent[T, E]())
		})
		return settled
	})
}
