package reactor

import "github.com/samber/lo"

// Map transforms every Next value with f; terminals pass through unchanged.
func Map[T, U, E any](s Signal[T, E], f func(T) U) Signal[U, E] {
	return New(func(observer Observer[U, E]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				observer(NextEvent[U, E](f(ev.MustValue())))
			case KindFailed:
				observer(FailedEvent[U, E](ev.MustErr()))
			case KindCompleted:
				observer(CompletedEvent[U, E]())
			}
		})
	})
}

// Filter forwards only Next values for which pred holds; terminals pass.
func Filter[T, E any](s Signal[T, E], pred func(T) bool) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				if pred(v) {
					observer(ev)
				}
				return
			}
			observer(ev)
		})
	})
}

// CompactMap forwards f(x) only when f's second return is true, dropping
// the value otherwise; terminals pass through. The ignore-nils variant is
// CompactMap with f returning (v, v != nil) for a pointer/interface T.
func CompactMap[T, U, E any](s Signal[T, E], f func(T) (U, bool)) Signal[U, E] {
	return New(func(observer Observer[U, E]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				if u, ok := f(ev.MustValue()); ok {
					observer(NextEvent[U, E](u))
				}
			case KindFailed:
				observer(FailedEvent[U, E](ev.MustErr()))
			case KindCompleted:
				observer(CompletedEvent[U, E]())
			}
		})
	})
}

// Scan emits init immediately on subscribe, then g(acc, x) for every
// subsequent Next, carrying the accumulator in subscription-local state.
func Scan[T, Acc, E any](s Signal[T, E], init Acc, g func(Acc, T) Acc) Signal[Acc, E] {
	return New(func(observer Observer[Acc, E]) Disposable {
		acc := init
		observer(NextEvent[Acc, E](acc))
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				acc = g(acc, ev.MustValue())
				observer(NextEvent[Acc, E](acc))
			case KindFailed:
				observer(FailedEvent[Acc, E](ev.MustErr()))
			case KindCompleted:
				observer(CompletedEvent[Acc, E]())
			}
		})
	})
}

// Reduce is Scan(init, g).Last(): only the final accumulated value is
// emitted, right before completion.
func Reduce[T, Acc, E any](s Signal[T, E], init Acc, g func(Acc, T) Acc) Signal[Acc, E] {
	return Last(Scan(s, init, g))
}

// StartWith is Prepend: v is emitted before anything from s.
func StartWith[T, E any](s Signal[T, E], v T) Signal[T, E] { return Prepend(s, v) }

// Prepend emits v, then everything s emits.
func Prepend[T, E any](s Signal[T, E], v T) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		observer(NextEvent[T, E](v))
		return s.Observe(observer)
	})
}

// AppendValue emits everything s emits, then — if s completes successfully
// — v followed by completion. A failure from s is forwarded without v.
func AppendValue[T, E any](s Signal[T, E], v T) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			if ev.Kind() == KindCompleted {
				observer(NextEvent[T, E](v))
			}
			observer(ev)
		})
	})
}

// BufferOption configures Buffer's behaviour at stream end.
type BufferOption func(*bufferConfig)

type bufferConfig struct {
	emitPartialOnComplete bool
}

// EmitPartialBufferOnComplete controls whether Buffer flushes a non-empty,
// not-yet-full buffer when the source completes. The default is false — a
// partial trailing buffer is discarded, not emitted.
func EmitPartialBufferOnComplete(emit bool) BufferOption {
	return func(c *bufferConfig) { c.emitPartialOnComplete = emit }
}

// Buffer accumulates n elements, emits them as a single slice, then clears
// and starts again. On failure the partial buffer is discarded. On
// completion the partial buffer is discarded unless
// EmitPartialBufferOnComplete(true) was passed.
func Buffer[T, E any](s Signal[T, E], n int, opts ...BufferOption) Signal[[]T, E] {
	cfg := bufferConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(func(observer Observer[[]T, E]) Disposable {
		var acc []T
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				acc = append(acc, ev.MustValue())
				chunks := lo.Chunk(acc, n)
				if last := chunks[len(chunks)-1]; len(last) == n {
					for _, c := range chunks {
						observer(NextEvent[[]T, E](c))
					}
					acc = nil
				}
			case KindFailed:
				observer(FailedEvent[[]T, E](ev.MustErr()))
			case KindCompleted:
				if cfg.emitPartialOnComplete && len(acc) > 0 {
					observer(NextEvent[[]T, E](acc))
				}
				observer(CompletedEvent[[]T, E]())
			}
		})
	})
}

// Window partitions the source into finite inner signals of n elements
// each (a signal-of-signals), via Buffer+Map — each emitted slice is
// wrapped back into a ready-made Sequence.
func Window[T, E any](s Signal[T, E], n int) Signal[Signal[T, E], E] {
	return Map(Buffer(s, n), func(chunk []T) Signal[T, E] {
		return Sequence[T, E](SliceIterator(chunk))
	})
}

// Pair is the (previous, current) tuple ZipPrevious/Pairwise emit. Prev is
// nil until a previous value has actually been seen.
type Pair[T any] struct {
	Prev *T
	Curr T
}

// ZipPrevious emits (prev, curr) for every value, starting with (nil,
// first) for the very first one.
func ZipPrevious[T, E any](s Signal[T, E]) Signal[Pair[T], E] {
	return New(func(observer Observer[Pair[T], E]) Disposable {
		var prev *T
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				v := ev.MustValue()
				observer(NextEvent[Pair[T], E](Pair[T]{Prev: prev, Curr: v}))
				prev = &v
			case KindFailed:
				observer(FailedEvent[Pair[T], E](ev.MustErr()))
			case KindCompleted:
				observer(CompletedEvent[Pair[T], E]())
			}
		})
	})
}

// Pairwise is ZipPrevious with the first, prev-less pair dropped: it only
// starts emitting from the second source value onward.
func Pairwise[T, E any](s Signal[T, E]) Signal[Pair[T], E] {
	return CompactMap(ZipPrevious(s), func(p Pair[T]) (Pair[T], bool) {
		return p, p.Prev != nil
	})
}

// Materialize lifts every Event into a value on an infallible outer
// signal: a Failed or Completed source event becomes one last Next(event)
// followed by the outer signal's own Completed.
func Materialize[T, E any](s Signal[T, E]) Signal[Event[T, E], Never] {
	return New(func(observer Observer[Event[T, E], Never]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			observer(NextEvent[Event[T, E], Never](ev))
			if ev.IsTerminal() {
				observer(CompletedEvent[Event[T, E], Never]())
			}
		})
	})
}

// Dematerialize is Materialize's inverse: each carried Event is re-emitted
// as a real event on the result signal, terminating the subscription the
// moment a terminal one is unwrapped.
func Dematerialize[T, E any](s Signal[Event[T, E], Never]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return s.Observe(func(outer Event[Event[T, E], Never]) {
			inner, ok := outer.Value()
			if !ok {
				// outer Completed with no trailing terminal inner event
				// (malformed producer) — nothing left to unwrap.
				return
			}
			observer(inner)
		})
	})
}

// EraseType discards the value, retaining only the event shape — the
// signal equivalent of Map(func(T) struct{} { return struct{}{} }).
func EraseType[T, E any](s Signal[T, E]) Signal[struct{}, E] {
	return Map(s, func(T) struct{} { return struct{}{} })
}
