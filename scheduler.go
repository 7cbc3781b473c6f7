package reactor

import (
	"sync/atomic"
	"time"
)

// Scheduler is the abstract execution context operators submit work to.
// Schedule may run fn synchronously or asynchronously — operators must not
// assume either. ScheduleAfter must return a Cancellable that, when
// disposed before the deadline, prevents fn from ever running. Concrete
// production schedulers (main-thread, UI-loop, immediate-on-owner-thread)
// are deliberately out of scope for this package; see the schedulers
// subpackage for the goroutine/trampoline/virtual implementations used to
// exercise and test this contract.
type Scheduler interface {
	// Schedule enqueues fn for later execution on this scheduler.
	Schedule(fn func())
	// ScheduleAfter enqueues fn to run no earlier than delay from now,
	// returning a handle that cancels the pending invocation.
	ScheduleAfter(delay time.Duration, fn func()) Disposable
}

// syncScheduler runs every thunk synchronously, inline. It exists purely
// as the zero-configuration default guard target for Property.Bind and
// BindTo/BidirectionalBind, which only ever call Schedule (never
// ScheduleAfter) — core code must not depend on the ambient schedulers
// subpackage, so it carries this minimal scheduler itself.
type syncScheduler struct{}

func (syncScheduler) Schedule(fn func()) { fn() }
func (syncScheduler) ScheduleAfter(_ time.Duration, fn func()) Disposable {
	fn()
	return NoopDisposable
}

// nonRecursiveScheduler wraps another Scheduler and drops Schedule calls
// made while it is already executing a thunk. The executing flag is shared,
// not per goroutine, so a call from another goroutine during that window is
// dropped too. This is the cycle breaker bidirectional bindings rely on: an
// update propagating a->b must not be allowed to recursively re-enter a.
type nonRecursiveScheduler struct {
	inner     Scheduler
	executing *atomic.Int32 // shared guard; >0 means "currently inside a thunk"
}

// NewNonRecursiveScheduler returns a decorator around inner that silently
// drops any Schedule/ScheduleAfter thunk submitted from within the dynamic
// extent of a thunk this same decorator is already running.
func NewNonRecursiveScheduler(inner Scheduler) Scheduler {
	return &nonRecursiveScheduler{inner: inner, executing: new(atomic.Int32)}
}

func (s *nonRecursiveScheduler) guarded(fn func()) func() {
	return func() {
		if !s.executing.CompareAndSwap(0, 1) {
			return
		}
		defer s.executing.Store(0)
		fn()
	}
}

func (s *nonRecursiveScheduler) Schedule(fn func()) {
	if s.executing.Load() != 0 {
		return
	}
	s.inner.Schedule(s.guarded(fn))
}

func (s *nonRecursiveScheduler) ScheduleAfter(delay time.Duration, fn func()) Disposable {
	if s.executing.Load() != 0 {
		return NoopDisposable
	}
	return s.inner.ScheduleAfter(delay, s.guarded(fn))
}
