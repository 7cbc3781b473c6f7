package reactor

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopDisposable(t *testing.T) {
	NoopDisposable.Dispose()
	assert.False(t, NoopDisposable.IsDisposed())
}

func TestFlagDisposable(t *testing.T) {
	f := NewFlagDisposable()
	assert.False(t, f.IsDisposed())
	f.Dispose()
	assert.True(t, f.IsDisposed())
	f.Dispose()
	assert.True(t, f.IsDisposed())
}

func TestBlockDisposableRunsOnce(t *testing.T) {
	calls := 0
	b := NewBlockDisposable(func() { calls++ })
	assert.False(t, b.IsDisposed())
	b.Dispose()
	b.Dispose()
	b.Dispose()
	assert.Equal(t, 1, calls)
	assert.True(t, b.IsDisposed())
}

func TestSerialDisposableSwapDisposesOld(t *testing.T) {
	s := NewSerialDisposable()
	first := NewFlagDisposable()
	second := NewFlagDisposable()

	old := s.Swap(first)
	assert.Nil(t, old)
	assert.False(t, first.IsDisposed())

	old = s.Swap(second)
	assert.Same(t, Disposable(first), old)
	assert.True(t, first.IsDisposed())
	assert.False(t, second.IsDisposed())

	s.Dispose()
	assert.True(t, second.IsDisposed())
	assert.True(t, s.IsDisposed())
}

func TestSerialDisposableSwapAfterDisposeDisposesImmediately(t *testing.T) {
	s := NewSerialDisposable()
	s.Dispose()

	fresh := NewFlagDisposable()
	s.Swap(fresh)
	assert.True(t, fresh.IsDisposed())
}

func TestCompositeDisposableDisposesAllChildren(t *testing.T) {
	a := NewFlagDisposable()
	b := NewFlagDisposable()
	c := NewCompositeDisposable(a, b)

	d := NewFlagDisposable()
	c.Add(d)

	c.Dispose()
	assert.True(t, a.IsDisposed())
	assert.True(t, b.IsDisposed())
	assert.True(t, d.IsDisposed())
}

func TestCompositeDisposableAddAfterDisposeDisposesImmediately(t *testing.T) {
	c := NewCompositeDisposable()
	c.Dispose()

	d := NewFlagDisposable()
	c.Add(d)
	assert.True(t, d.IsDisposed())
}

func TestCompositeDisposableRecoversPanickingChild(t *testing.T) {
	panicker := NewBlockDisposable(func() { panic("boom") })
	ok := NewFlagDisposable()
	c := NewCompositeDisposable(panicker, ok)

	require.NotPanics(t, func() { c.Dispose() })
	assert.True(t, ok.IsDisposed())
	assert.True(t, c.IsDisposed())
}

func TestBindToDeinitDisposesInnerOnExplicitDispose(t *testing.T) {
	inner := NewFlagDisposable()
	bound := BindToDeinit(inner)
	bound.Dispose()
	assert.True(t, inner.IsDisposed())
}

func TestDisposeBagDisposesChildrenAndFiresDeallocated(t *testing.T) {
	bag := NewDisposeBag()
	child := NewFlagDisposable()
	bag.Add(child)

	var completed bool
	bag.Deallocated().Observe(func(ev Event[struct{}, Never]) {
		if ev.Kind() == KindCompleted {
			completed = true
		}
	})

	bag.Dispose()
	assert.True(t, child.IsDisposed())
	assert.True(t, completed)
	assert.True(t, bag.IsDisposed())

	runtime.GC() // finalizer already cleared; shouldn't double-dispose or panic
}
