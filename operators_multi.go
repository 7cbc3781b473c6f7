package reactor

import "sync"

// multiState tracks Merge's shared bookkeeping: how many sources are still
// open, and whether any has already failed (so a failure from one arm can
// short-circuit the others).
type multiState struct {
	mu        sync.Mutex
	remaining int
	failed    bool
}

// CombineLatest2 emits (a, b) every time either source emits, once both
// have emitted at least once. Completes once both sources have completed;
// fails the moment either fails.
func CombineLatest2[A, B, E any](sa Signal[A, E], sb Signal[B, E]) Signal[struct {
	A A
	B B
}, E] {
	type pair = struct {
		A A
		B B
	}
	return New(func(observer Observer[pair, E]) Disposable {
		var mu sync.Mutex
		var a A
		var b B
		haveA, haveB := false, false
		openCount := 2
		done := false

		emit := func() {
			if haveA && haveB {
				observer(NextEvent[pair, E](pair{A: a, B: b}))
			}
		}
		fail := func(ev Event[pair, E]) {
			if done {
				return
			}
			done = true
			observer(ev)
		}
		onComplete := func() {
			openCount--
			if openCount == 0 && !done {
				done = true
				observer(CompletedEvent[pair, E]())
			}
		}

		subA := sa.Observe(func(ev Event[A, E]) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			switch ev.Kind() {
			case KindNext:
				a = ev.MustValue()
				haveA = true
				emit()
			case KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			case KindCompleted:
				onComplete()
			}
		})
		subB := sb.Observe(func(ev Event[B, E]) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			switch ev.Kind() {
			case KindNext:
				b = ev.MustValue()
				haveB = true
				emit()
			case KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			case KindCompleted:
				onComplete()
			}
		})
		return NewCompositeDisposable(subA, subB)
	})
}

// Merge interleaves every value from every source signal as it arrives,
// completing once all sources have completed and failing the moment any
// one of them fails.
func Merge[T, E any](sources ...Signal[T, E]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		state := &multiState{remaining: len(sources)}
		if len(sources) == 0 {
			observer(CompletedEvent[T, E]())
			return NoopDisposable
		}
		group := NewCompositeDisposable()
		for _, src := range sources {
			group.Add(src.Observe(func(ev Event[T, E]) {
				state.mu.Lock()
				if state.failed {
					state.mu.Unlock()
					return
				}
				switch ev.Kind() {
				case KindNext:
					state.mu.Unlock()
					observer(ev)
					return
				case KindFailed:
					state.failed = true
					state.mu.Unlock()
					observer(ev)
					return
				case KindCompleted:
					state.remaining--
					done := state.remaining == 0
					state.mu.Unlock()
					if done {
						observer(CompletedEvent[T, E]())
					}
					return
				}
				state.mu.Unlock()
			}))
		}
		return group
	})
}

// zipState is one source's pending queue and completion flag.
type zipState[T any] struct {
	queue     []T
	completed bool
}

// Zip2 pairs up the nth value from each source, in lockstep: it withholds
// emission until both sources have produced a value at that index, and
// completes as soon as either source completes and its queue is drained.
func Zip2[A, B, E any](sa Signal[A, E], sb Signal[B, E]) Signal[struct {
	A A
	B B
}, E] {
	type pair = struct {
		A A
		B B
	}
	return New(func(observer Observer[pair, E]) Disposable {
		var mu sync.Mutex
		qa := &zipState[A]{}
		qb := &zipState[B]{}
		done := false

		tryEmit := func() {
			for len(qa.queue) > 0 && len(qb.queue) > 0 {
				a := qa.queue[0]
				qa.queue = qa.queue[1:]
				b := qb.queue[0]
				qb.queue = qb.queue[1:]
				observer(NextEvent[pair, E](pair{A: a, B: b}))
			}
			if !done && ((qa.completed && len(qa.queue) == 0) || (qb.completed && len(qb.queue) == 0)) {
				done = true
				observer(CompletedEvent[pair, E]())
			}
		}
		fail := func(ev Event[pair, E]) {
			if done {
				return
			}
			done = true
			observer(ev)
		}

		subA := sa.Observe(func(ev Event[A, E]) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			switch ev.Kind() {
			case KindNext:
				qa.queue = append(qa.queue, ev.MustValue())
				tryEmit()
			case KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			case KindCompleted:
				qa.completed = true
				tryEmit()
			}
		})
		subB := sb.Observe(func(ev Event[B, E]) {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return
			}
			switch ev.Kind() {
			case KindNext:
				qb.queue = append(qb.queue, ev.MustValue())
				tryEmit()
			case KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			case KindCompleted:
				qb.completed = true
				tryEmit()
			}
		})
		return NewCompositeDisposable(subA, subB)
	})
}

// Concat subscribes to each source in turn, moving to the next only after
// the previous one completes successfully; a failure from any source
// short-circuits the whole chain.
func Concat[T, E any](sources ...Signal[T, E]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		sub := NewSerialDisposable()
		idx := 0
		var advance func()
		advance = func() {
			if idx >= len(sources) {
				observer(CompletedEvent[T, E]())
				return
			}
			src := sources[idx]
			idx++
			sub.Swap(src.Observe(func(ev Event[T, E]) {
				if ev.Kind() == KindCompleted {
					advance()
					return
				}
				observer(ev)
			}))
		}
		advance()
		return sub
	})
}

// Amb subscribes to every source simultaneously and forwards everything
// from whichever one produces the first event (Next, Failed, or
// Completed), disposing the rest immediately. Ties — two sources racing to
// be first from concurrent goroutines — resolve first-writer-wins: the
// first call into the shared guard wins, the loser's forward is dropped,
// matching the order the underlying mutex happens to grant.
func Amb[T, E any](sources ...Signal[T, E]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		if len(sources) == 0 {
			return NoopDisposable
		}
		var mu sync.Mutex
		winner := -1
		subs := make([]Disposable, len(sources))
		group := NewCompositeDisposable()

		for i, src := range sources {
			i := i
			subs[i] = src.Observe(func(ev Event[T, E]) {
				mu.Lock()
				if winner == -1 {
					winner = i
					for j, s := range subs {
						if j != i && s != nil {
							s.Dispose()
						}
					}
				}
				isWinner := winner == i
				mu.Unlock()
				if isWinner {
					observer(ev)
				}
			})
			group.Add(subs[i])
		}
		return group
	})
}

// WithLatestFrom pairs every value from primary with the most recently
// observed value from other; primary values seen before other has ever
// emitted are dropped. other's completion has no effect, but a failure
// from other terminates the result just as a failure from primary would.
func WithLatestFrom[T, U, E any](primary Signal[T, E], other Signal[U, E]) Signal[struct {
	T T
	U U
}, E] {
	type pair = struct {
		T T
		U U
	}
	return New(func(observer Observer[pair, E]) Disposable {
		var mu sync.Mutex
		var latest U
		have := false
		done := false

		fail := func(ev Event[pair, E]) {
			mu.Lock()
			if done {
				mu.Unlock()
				return
			}
			done = true
			mu.Unlock()
			observer(ev)
		}

		otherSub := other.Observe(func(ev Event[U, E]) {
			switch {
			case ev.Kind() == KindNext:
				v := ev.MustValue()
				mu.Lock()
				latest = v
				have = true
				mu.Unlock()
			case ev.Kind() == KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			}
		})
		primarySub := primary.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				v := ev.MustValue()
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				u, ok := latest, have
				mu.Unlock()
				if ok {
					observer(NextEvent[pair, E](pair{T: v, U: u}))
				}
			case KindFailed:
				fail(FailedEvent[pair, E](ev.MustErr()))
			case KindCompleted:
				mu.Lock()
				if done {
					mu.Unlock()
					return
				}
				done = true
				mu.Unlock()
				observer(CompletedEvent[pair, E]())
			}
		})
		return NewCompositeDisposable(primarySub, otherSub)
	})
}

// ReplayLatest re-emits self's most recently observed value every time
// gate produces an event of its own, dropping gate events seen before
// self has ever emitted. It is WithLatestFrom(gate, self) with the pair
// projected back down to self's component, matching the role reversal:
// here the gate drives emission timing and self supplies the payload.
func ReplayLatest[T, G, E any](self Signal[T, E], gate Signal[G, E]) Signal[T, E] {
	return Map(WithLatestFrom[G, T, E](gate, self), func(p struct {
		T G
		U T
	}) T {
		return p.U
	})
}
