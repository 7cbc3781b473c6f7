package reactor

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
)

// Disposable is the cancellation handle returned by Signal.Observe and by
// the operators, subjects and connectables built on top of it. IsDisposed
// is monotonic: once true it never reports false again. Dispose is
// idempotent.
type Disposable interface {
	Dispose()
	IsDisposed() bool
}

// noopDisposable never reports disposed and does nothing on Dispose. It is
// used by producers that have no teardown work (Just, Empty, Err).
type noopDisposable struct{}

// NoopDisposable is the shared Disposable that never does anything.
var NoopDisposable Disposable = noopDisposable{}

func (noopDisposable) Dispose()         {}
func (noopDisposable) IsDisposed() bool { return false }

// FlagDisposable is an atomic-boolean Disposable: Dispose just flips the
// flag, with no teardown side effect of its own. Useful as a cheap marker
// or as the base of hand-rolled disposables that only need IsDisposed.
type FlagDisposable struct {
	disposed atomic.Bool
}

// NewFlagDisposable returns a fresh, non-disposed FlagDisposable.
func NewFlagDisposable() *FlagDisposable { return &FlagDisposable{} }

func (f *FlagDisposable) Dispose()         { f.disposed.Store(true) }
func (f *FlagDisposable) IsDisposed() bool { return f.disposed.Load() }

// BlockDisposable runs a thunk exactly once, on the first Dispose call.
type BlockDisposable struct {
	once     sync.Once
	disposed atomic.Bool
	teardown func()
}

// NewBlockDisposable returns a Disposable that runs teardown exactly once.
func NewBlockDisposable(teardown func()) *BlockDisposable {
	return &BlockDisposable{teardown: teardown}
}

func (b *BlockDisposable) Dispose() {
	b.once.Do(func() {
		b.disposed.Store(true)
		if b.teardown != nil {
			b.teardown()
		}
	})
}

func (b *BlockDisposable) IsDisposed() bool { return b.disposed.Load() }

// SerialDisposable holds one swappable inner Disposable. Swapping disposes
// the previously held inner disposable. If SerialDisposable itself has
// already been disposed, any disposable subsequently assigned via Swap is
// disposed immediately instead of being retained.
type SerialDisposable struct {
	mu       sync.Mutex
	disposed bool
	inner    Disposable
}

// NewSerialDisposable returns an empty, non-disposed SerialDisposable.
func NewSerialDisposable() *SerialDisposable { return &SerialDisposable{} }

// Swap replaces the held inner disposable, disposing the old one (outside
// the critical section, so a teardown that re-enters Swap cannot deadlock).
// It returns the disposable that was replaced, if any.
func (s *SerialDisposable) Swap(d Disposable) Disposable {
	s.mu.Lock()
	old := s.inner
	if s.disposed {
		s.inner = nil
		s.mu.Unlock()
		if d != nil {
			d.Dispose()
		}
		return old
	}
	s.inner = d
	s.mu.Unlock()
	if old != nil {
		old.Dispose()
	}
	return old
}

func (s *SerialDisposable) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	inner := s.inner
	s.inner = nil
	s.mu.Unlock()
	if inner != nil {
		inner.Dispose()
	}
}

func (s *SerialDisposable) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// CompositeDisposable is an ordered collection of disposables that are all
// disposed together. Disposables added after the composite itself has been
// disposed are disposed immediately rather than retained.
type CompositeDisposable struct {
	mu       sync.Mutex
	disposed bool
	children []Disposable
}

// NewCompositeDisposable returns an empty, non-disposed CompositeDisposable
// optionally pre-seeded with children.
func NewCompositeDisposable(children ...Disposable) *CompositeDisposable {
	return &CompositeDisposable{children: append([]Disposable(nil), children...)}
}

// Add appends d to the collection, or disposes it immediately if the
// composite has already been disposed. It also compacts already-disposed
// children out of the slice.
func (c *CompositeDisposable) Add(d Disposable) {
	if d == nil {
		return
	}
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return
	}
	c.children = compactDisposed(append(c.children, d))
	c.mu.Unlock()
}

func compactDisposed(in []Disposable) []Disposable {
	out := in[:0]
	for _, d := range in {
		if !d.IsDisposed() {
			out = append(out, d)
		}
	}
	return out
}

func (c *CompositeDisposable) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	var errs error
	for _, d := range children {
		errs = multierr.Append(errs, disposeRecovering(d))
	}
	if errs != nil {
		// Teardown panics are recovered and aggregated rather than
		// propagated: Dispose has no error return in this contract, but
		// we don't want one misbehaving child to poison the others.
		_ = errs
	}
}

func disposeRecovering(d Disposable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicToError(r)
		}
	}()
	d.Dispose()
	return nil
}

func (c *CompositeDisposable) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// DeinitBoundDisposable disposes its wrapped disposable when it is garbage
// collected, approximating ARC-style deinit-triggered teardown via a
// runtime finalizer. Finalizers are best-effort and run at an
// unspecified time after the last reference drops; callers that need
// deterministic teardown should Dispose explicitly and treat this only as
// a backstop against leaks.
type DeinitBoundDisposable struct {
	inner Disposable
}

// BindToDeinit wraps d so that it is disposed when the returned handle is
// collected, in addition to being disposable explicitly.
func BindToDeinit(d Disposable) *DeinitBoundDisposable {
	bound := &DeinitBoundDisposable{inner: d}
	runtime.SetFinalizer(bound, func(b *DeinitBoundDisposable) {
		b.inner.Dispose()
	})
	return bound
}

func (b *DeinitBoundDisposable) Dispose() {
	runtime.SetFinalizer(b, nil)
	b.inner.Dispose()
}

func (b *DeinitBoundDisposable) IsDisposed() bool { return b.inner.IsDisposed() }

// DisposeBag is an owned collection of disposables torn down together,
// either explicitly via Dispose or implicitly when the bag is collected.
// It exposes Deallocated, a Signal that fires a single Completed event at
// teardown time — useful for scoping a subscription to an object's
// lifetime (see BindToBag).
type DisposeBag struct {
	composite   *CompositeDisposable
	deallocated *PassthroughSubject[struct{}, Never]
}

// NewDisposeBag returns an empty bag.
func NewDisposeBag() *DisposeBag {
	bag := &DisposeBag{
		composite:   NewCompositeDisposable(),
		deallocated: NewPassthroughSubject[struct{}, Never](),
	}
	runtime.SetFinalizer(bag, func(b *DisposeBag) {
		b.Dispose()
	})
	return bag
}

// Add inserts d into the bag, disposing it immediately if the bag is
// already disposed.
func (b *DisposeBag) Add(d Disposable) { b.composite.Add(d) }

// Dispose tears down every held disposable, in insertion order, then fires
// Completed on Deallocated. Idempotent.
func (b *DisposeBag) Dispose() {
	if b.composite.IsDisposed() {
		return
	}
	runtime.SetFinalizer(b, nil)
	b.composite.Dispose()
	b.deallocated.Send(CompletedEvent[struct{}, Never]())
}

func (b *DisposeBag) IsDisposed() bool { return b.composite.IsDisposed() }

// Deallocated returns a signal that emits a single Completed event once
// the bag is disposed (explicitly or via finalization). Infallible.
func (b *DisposeBag) Deallocated() Signal[struct{}, Never] {
	return b.deallocated.AsSignal()
}

func panicToError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return errFromPanic{r}
}

type errFromPanic struct{ v any }

func (e errFromPanic) Error() string { return "reactor: recovered panic during dispose" }
