package reactor

import "sync"

// FlattenStrategy selects how FlatMap combines the inner signals produced
// for each outer value.
type FlattenStrategy int

const (
	// FlattenMerge subscribes to every inner signal concurrently and
	// interleaves their values as they arrive.
	FlattenMerge FlattenStrategy = iota
	// FlattenLatest ("switch") keeps only the most recently produced inner
	// signal subscribed, disposing the previous one's subscription the
	// moment a new outer value arrives.
	FlattenLatest
	// FlattenConcat queues inner signals and runs them one at a time, in
	// the order their outer values arrived.
	FlattenConcat
)

// FlatMap maps every outer value to an inner signal via f, then combines
// the inner signals according to strategy. The result completes once the
// outer signal and every inner signal the strategy still cares about have
// completed, and fails the moment the outer signal or any relevant inner
// signal fails.
func FlatMap[T, U, E any](s Signal[T, E], strategy FlattenStrategy, f func(T) Signal[U, E]) Signal[U, E] {
	switch strategy {
	case FlattenLatest:
		return flatMapLatest(s, f)
	case FlattenConcat:
		return flatMapConcat(s, f)
	default:
		return flatMapMerge(s, f)
	}
}

// flatMapMerge subscribes to every inner signal as soon as it's produced,
// and only completes once the outer signal and all still-open inner
// signals have completed.
func flatMapMerge[T, U, E any](s Signal[T, E], f func(T) Signal[U, E]) Signal[U, E] {
	return New(func(observer Observer[U, E]) Disposable {
		var mu sync.Mutex
		outerDone := false
		openInner := 0
		done := false
		group := NewCompositeDisposable()

		finishIfDrained := func() {
			if !done && outerDone && openInner == 0 {
				done = true
				observer(CompletedEvent[U, E]())
			}
		}
		fail := func(ev Event[U, E]) {
			if done {
				return
			}
			done = true
			observer(ev)
		}

		outerSub := s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				inner := f(ev.MustValue())
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				openInner++
				mu.Unlock()
				group.Add(inner.Observe(func(iev Event[U, E]) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					switch iev.Kind() {
					case KindNext:
						mu.Unlock()
						observer(iev)
					case KindFailed:
						fail(iev)
						mu.Unlock()
					case KindCompleted:
						openInner--
						finishIfDrained()
						mu.Unlock()
					}
				}))
			case KindFailed:
				mu.Lock()
				fail(FailedEvent[U, E](ev.MustErr()))
				mu.Unlock()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				finishIfDrained()
				mu.Unlock()
			}
		})
		group.Add(outerSub)
		return group
	})
}

// flatMapLatest keeps only the most recently produced inner signal alive,
// tearing the previous one's subscription down the instant a new outer
// value arrives; this is the "switchMap"/flatMapLatest strategy.
func flatMapLatest[T, U, E any](s Signal[T, E], f func(T) Signal[U, E]) Signal[U, E] {
	return New(func(observer Observer[U, E]) Disposable {
		var mu sync.Mutex
		outerDone := false
		innerOpen := false
		done := false
		innerSub := NewSerialDisposable()

		finishIfDrained := func() {
			if !done && outerDone && !innerOpen {
				done = true
				observer(CompletedEvent[U, E]())
			}
		}
		fail := func(ev Event[U, E]) {
			if done {
				return
			}
			done = true
			observer(ev)
		}

		outerSub := s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				inner := f(ev.MustValue())
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				innerOpen = true
				mu.Unlock()
				innerSub.Swap(inner.Observe(func(iev Event[U, E]) {
					mu.Lock()
					if done {
						mu.Unlock()
						return
					}
					switch iev.Kind() {
					case KindNext:
						mu.Unlock()
						observer(iev)
					case KindFailed:
						fail(iev)
						mu.Unlock()
					case KindCompleted:
						innerOpen = false
						finishIfDrained()
						mu.Unlock()
					}
				}))
			case KindFailed:
				mu.Lock()
				fail(FailedEvent[U, E](ev.MustErr()))
				mu.Unlock()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				finishIfDrained()
				mu.Unlock()
			}
		})
		return NewCompositeDisposable(outerSub, innerSub)
	})
}

// flatMapConcat queues each inner signal as its outer value arrives and
// runs them strictly one at a time, in arrival order.
func flatMapConcat[T, U, E any](s Signal[T, E], f func(T) Signal[U, E]) Signal[U, E] {
	return New(func(observer Observer[U, E]) Disposable {
		var mu sync.Mutex
		queue := []Signal[U, E]{}
		running := false
		outerDone := false
		done := false
		current := NewSerialDisposable()

		var runNext func()
		fail := func(ev Event[U, E]) {
			if done {
				return
			}
			done = true
			observer(ev)
		}
		// runNext expects mu held on entry and always releases it itself
		// (directly, or by handing off into the recursive call below) before
		// returning — it must not call Observe while still holding mu, since
		// a synchronous inner signal invokes its callback, and so re-enters
		// runNext, before Observe ever returns.
		runNext = func() {
			if len(queue) == 0 {
				running = false
				finishNow := outerDone && !done
				if finishNow {
					done = true
				}
				mu.Unlock()
				if finishNow {
					observer(CompletedEvent[U, E]())
				}
				return
			}
			next := queue[0]
			queue = queue[1:]
			running = true
			mu.Unlock()
			current.Swap(next.Observe(func(iev Event[U, E]) {
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				switch iev.Kind() {
				case KindNext:
					mu.Unlock()
					observer(iev)
				case KindFailed:
					fail(iev)
					mu.Unlock()
				case KindCompleted:
					runNext()
				}
			}))
		}

		outerSub := s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				inner := f(ev.MustValue())
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				queue = append(queue, inner)
				if !running {
					runNext()
				} else {
					mu.Unlock()
				}
			case KindFailed:
				mu.Lock()
				fail(FailedEvent[U, E](ev.MustErr()))
				mu.Unlock()
			case KindCompleted:
				mu.Lock()
				outerDone = true
				if !running && len(queue) == 0 && !done {
					done = true
					mu.Unlock()
					observer(CompletedEvent[U, E]())
				} else {
					mu.Unlock()
				}
			}
		})
		return NewCompositeDisposable(outerSub, current)
	})
}
