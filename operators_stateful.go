package reactor

import (
	"sync"
	"time"
)

// Debounce emits the most recent value only after dt has elapsed without a
// further Next. A Next arriving before the timer fires cancels and
// restarts it. Completion flushes any pending value before completing; a
// Failed event drops the pending value and propagates the failure instead.
func Debounce[T, E any](s Signal[T, E], dt time.Duration, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		pending := NewSerialDisposable()
		var mu sync.Mutex
		var have bool
		var value T

		flush := func() {
			mu.Lock()
			if !have {
				mu.Unlock()
				return
			}
			v := value
			have = false
			mu.Unlock()
			observer(NextEvent[T, E](v))
		}

		upstream := s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				mu.Lock()
				value = ev.MustValue()
				have = true
				mu.Unlock()
				pending.Swap(scheduler.ScheduleAfter(dt, flush))
			case KindFailed:
				pending.Dispose()
				mu.Lock()
				have = false
				mu.Unlock()
				observer(ev)
			case KindCompleted:
				pending.Dispose()
				flush()
				observer(ev)
			}
		})
		return NewCompositeDisposable(upstream, pending)
	})
}

// Throttle emits a Next immediately, then drops further Nexts until dt has
// elapsed since the last one that was let through.
func Throttle[T, E any](s Signal[T, E], dt time.Duration, now func() time.Time) Signal[T, E] {
	if now == nil {
		now = time.Now
	}
	return New(func(observer Observer[T, E]) Disposable {
		var mu sync.Mutex
		var lastEmit time.Time
		var haveLast bool

		return s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				t := now()
				mu.Lock()
				emit := !haveLast || t.Sub(lastEmit) > dt
				if emit {
					lastEmit = t
					haveLast = true
				}
				mu.Unlock()
				if emit {
					observer(NextEvent[T, E](v))
				}
				return
			}
			observer(ev)
		})
	})
}

// Sample re-emits the most recent source value, if any arrived since the
// last tick, once per dt; a tick with nothing new since the last one is
// silent. Source terminals cancel the repeating job and forward.
func Sample[T, E any](s Signal[T, E], dt time.Duration, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		var mu sync.Mutex
		var have bool
		var latest T
		job := NewSerialDisposable()

		var tick func()
		tick = func() {
			mu.Lock()
			v, ok := latest, have
			have = false
			mu.Unlock()
			if ok {
				observer(NextEvent[T, E](v))
			}
			job.Swap(scheduler.ScheduleAfter(dt, tick))
		}
		job.Swap(scheduler.ScheduleAfter(dt, tick))

		upstream := s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				mu.Lock()
				latest = v
				have = true
				mu.Unlock()
				return
			}
			job.Dispose()
			observer(ev)
		})
		return NewCompositeDisposable(upstream, job)
	})
}

// Distinct forwards a Next only when it differs from the immediately
// preceding one (or there was no preceding one), built on ZipPrevious and
// CompactMap rather than tracking a previous value by hand.
func Distinct[T, E any](s Signal[T, E], eq func(a, b T) bool) Signal[T, E] {
	return CompactMap(ZipPrevious(s), func(p Pair[T]) (T, bool) {
		return p.Curr, p.Prev == nil || !eq(*p.Prev, p.Curr)
	})
}

// Prefix (take) emits the first n values then completes, disposing the
// upstream subscription.
func Prefix[T, E any](s Signal[T, E], n int) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		if n <= 0 {
			observer(CompletedEvent[T, E]())
			return NoopDisposable
		}
		sub := NewSerialDisposable()
		count := 0
		sub.Swap(s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				count++
				observer(NextEvent[T, E](v))
				if count >= n {
					observer(CompletedEvent[T, E]())
					sub.Dispose()
				}
				return
			}
			observer(ev)
		}))
		return sub
	})
}

// First is Prefix(1).
func First[T, E any](s Signal[T, E]) Signal[T, E] { return Prefix(s, 1) }

// PrefixWhile emits values while pred holds, then completes (without
// forwarding the value that first failed the predicate).
func PrefixWhile[T, E any](s Signal[T, E], pred func(T) bool) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		sub := NewSerialDisposable()
		sub.Swap(s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				if !pred(v) {
					observer(CompletedEvent[T, E]())
					sub.Dispose()
					return
				}
				observer(ev)
				return
			}
			observer(ev)
		}))
		return sub
	})
}

// PrefixUntilOutputFrom completes the output the moment other emits
// anything at all (Next, Failed, or Completed), disposing both arms.
func PrefixUntilOutputFrom[T, E, U any](s Signal[T, E], other Signal[U, E]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		group := NewCompositeDisposable()
		stop := NewFlagDisposable()

		group.Add(other.Observe(func(Event[U, E]) {
			if stop.IsDisposed() {
				return
			}
			stop.Dispose()
			observer(CompletedEvent[T, E]())
			group.Dispose()
		}))
		group.Add(s.Observe(func(ev Event[T, E]) {
			if stop.IsDisposed() {
				return
			}
			observer(ev)
			if ev.IsTerminal() {
				stop.Dispose()
				group.Dispose()
			}
		}))
		return group
	})
}

// Suffix (take-last) buffers up to the last n values in a ring and flushes
// them, in order, when the source completes. A failure discards the
// buffer and propagates.
func Suffix[T, E any](s Signal[T, E], n int) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		ring := make([]T, 0, n)
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				if n <= 0 {
					return
				}
				ring = append(ring, ev.MustValue())
				if len(ring) > n {
					ring = ring[len(ring)-n:]
				}
			case KindFailed:
				ring = nil
				observer(ev)
			case KindCompleted:
				for _, v := range ring {
					observer(NextEvent[T, E](v))
				}
				observer(ev)
			}
		})
	})
}

// Last is Suffix(1).
func Last[T, E any](s Signal[T, E]) Signal[T, E] { return Suffix(s, 1) }

// DropFirst drops the first n values, forwarding everything after.
func DropFirst[T, E any](s Signal[T, E], n int) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		seen := 0
		return s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				seen++
				if seen > n {
					observer(NextEvent[T, E](v))
				}
				return
			}
			observer(ev)
		})
	})
}

// DropFirstFor drops every value emitted within dt of subscription start,
// forwarding everything emitted from then on.
func DropFirstFor[T, E any](s Signal[T, E], dt time.Duration, clock func() time.Time) Signal[T, E] {
	if clock == nil {
		clock = time.Now
	}
	return New(func(observer Observer[T, E]) Disposable {
		deadline := clock().Add(dt)
		return s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				if clock().Before(deadline) {
					return
				}
				observer(NextEvent[T, E](v))
				return
			}
			observer(ev)
		})
	})
}

// DropLast withholds the last n values: it only forwards a value once n
// further values (or a terminal) have confirmed it wasn't among the tail.
func DropLast[T, E any](s Signal[T, E], n int) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		var window []T
		return s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				window = append(window, ev.MustValue())
				if len(window) > n {
					observer(NextEvent[T, E](window[0]))
					window = window[1:]
				}
			default:
				observer(ev)
			}
		})
	})
}

// IgnoreOutput forwards only terminals, swallowing every Next.
func IgnoreOutput[T, E any](s Signal[T, E]) Signal[T, E] {
	return Filter(s, func(T) bool { return false })
}

// Pausable drops Next events from s while the latest value observed on gate
// is false; terminals always pass through regardless of gate state.
func Pausable[T, E any](s Signal[T, E], gate Signal[bool, Never]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		var mu sync.Mutex
		open := false

		gateSub := gate.Observe(func(ev Event[bool, Never]) {
			if v, ok := ev.Value(); ok {
				mu.Lock()
				open = v
				mu.Unlock()
			}
		})
		sourceSub := s.Observe(func(ev Event[T, E]) {
			if v, ok := ev.Value(); ok {
				mu.Lock()
				isOpen := open
				mu.Unlock()
				if isOpen {
					observer(NextEvent[T, E](v))
				}
				return
			}
			observer(ev)
		})
		return NewCompositeDisposable(gateSub, sourceSub)
	})
}

// Timeout fails the subscription with onTimeout() if dt elapses without a
// Next; every Next resets the deadline. Terminals cancel the timer.
func Timeout[T, E any](s Signal[T, E], dt time.Duration, onTimeout func() E, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		timer := NewSerialDisposable()
		fire := func() { observer(FailedEvent[T, E](onTimeout())) }
		timer.Swap(scheduler.ScheduleAfter(dt, fire))

		upstream := s.Observe(func(ev Event[T, E]) {
			if ev.Kind() == KindNext {
				timer.Swap(scheduler.ScheduleAfter(dt, fire))
				observer(ev)
				return
			}
			timer.Dispose()
			observer(ev)
		})
		return NewCompositeDisposable(upstream, timer)
	})
}

// Delay re-schedules every event dt later. Emission order is preserved on
// a scheduler whose ScheduleAfter runs equal deadlines in FIFO order (such
// as schedulers.Virtual); the Scheduler contract itself does not promise
// that ordering.
func Delay[T, E any](s Signal[T, E], dt time.Duration, scheduler Scheduler) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		pending := NewCompositeDisposable()
		upstream := s.Observe(func(ev Event[T, E]) {
			pending.Add(scheduler.ScheduleAfter(dt, func() { observer(ev) }))
		})
		pending.Add(upstream)
		return pending
	})
}

// Retry resubscribes to s up to n additional times after a failure before
// giving up and forwarding the last failure.
func Retry[T, E any](s Signal[T, E], n int) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		sub := NewSerialDisposable()
		attemptsLeft := n

		var attempt func()
		attempt = func() {
			sub.Swap(s.Observe(func(ev Event[T, E]) {
				if ev.Kind() == KindFailed {
					if attemptsLeft > 0 {
						attemptsLeft--
						attempt()
						return
					}
				}
				observer(ev)
			}))
		}
		attempt()
		return sub
	})
}

// ReplaceError turns any failure into a single value v followed by
// completion, leaving a successful completion untouched.
func ReplaceError[T, E any](s Signal[T, E], v T) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		return s.Observe(func(ev Event[T, E]) {
			if ev.Kind() == KindFailed {
				observer(NextEvent[T, E](v))
				observer(CompletedEvent[T, E]())
				return
			}
			observer(ev)
		})
	})
}

// FlatMapError recovers from a failure by switching the subscription to
// recover(err)'s signal instead of propagating it.
func FlatMapError[T, E any](s Signal[T, E], recover func(E) Signal[T, E]) Signal[T, E] {
	return New(func(observer Observer[T, E]) Disposable {
		sub := NewSerialDisposable()
		sub.Swap(s.Observe(func(ev Event[T, E]) {
			if ev.Kind() == KindFailed {
				sub.Swap(recover(ev.MustErr()).Observe(observer))
				return
			}
			observer(ev)
		}))
		return sub
	})
}

// HandleEvents installs side-effect hooks at well-defined subscription
// points: onSubscribe runs synchronously during Observe, before the
// upstream subscription starts;
// onNext runs for every forwarded value; onCompletion runs for both
// success and failure terminals; onCancel runs only when the subscription
// is disposed before a natural terminal (not on ordinary completion). logger
// receives a Debug/Error line on subscribe, on each terminal and on cancel
// (not per value); pass NopLogger() for silence.
func HandleEvents[T, E any](s Signal[T, E], logger Logger, onSubscribe func(), onNext func(T), onCompletion func(err *E), onCancel func()) Signal[T, E] {
	if logger == nil {
		logger = NopLogger()
	}
	return New(func(observer Observer[T, E]) Disposable {
		logger.Debug("reactor: handleEvents subscribed")
		if onSubscribe != nil {
			onSubscribe()
		}
		terminated := NewFlagDisposable()
		upstream := s.Observe(func(ev Event[T, E]) {
			switch ev.Kind() {
			case KindNext:
				if onNext != nil {
					onNext(ev.MustValue())
				}
			case KindFailed:
				terminated.Dispose()
				logger.Error("reactor: handleEvents observed failure")
				if onCompletion != nil {
					err := ev.MustErr()
					onCompletion(&err)
				}
			case KindCompleted:
				terminated.Dispose()
				logger.Debug("reactor: handleEvents observed completion")
				if onCompletion != nil {
					onCompletion(nil)
				}
			}
			observer(ev)
		})
		return NewBlockDisposable(func() {
			upstream.Dispose()
			if !terminated.IsDisposed() {
				logger.Debug("reactor: handleEvents cancelled before a terminal event")
				if onCancel != nil {
					onCancel()
				}
			}
		})
	})
}
