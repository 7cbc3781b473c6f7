package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalObserveIsCold(t *testing.T) {
	calls := 0
	s := New(func(observer Observer[int, error]) Disposable {
		calls++
		observer(NextEvent[int, error](calls))
		observer(CompletedEvent[int, error]())
		return NoopDisposable
	})

	a, _ := ToSlice(s)
	b, _ := ToSlice(s)
	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{2}, b)
	assert.Equal(t, 2, calls)
}

func TestSignalObserveEvent(t *testing.T) {
	s := Just[int, error](7)
	var kinds []Kind
	s.ObserveEvent(func(ev Event[int, error]) {
		kinds = append(kinds, ev.Kind())
	})
	assert.Equal(t, []Kind{KindNext, KindCompleted}, kinds)
}

func TestObserveNextOnlyDeliversValues(t *testing.T) {
	p := NewProperty(3)
	var values []int
	ObserveNext[int](p.AsSignal(), func(v int) {
		values = append(values, v)
	})
	p.SetValue(4)
	assert.Equal(t, []int{3, 4}, values)
}

func TestSignalObserveSink(t *testing.T) {
	var values []int
	var completed bool
	Just[int, error](9).ObserveSink(func(v int) {
		values = append(values, v)
	}, func(err *error) {
		completed = err == nil
	})
	assert.Equal(t, []int{9}, values)
	assert.True(t, completed)
}

func TestToSliceCapturesFailure(t *testing.T) {
	values, failure := ToSlice(Err[int, error](assert.AnError))
	assert.Empty(t, values)
	require.NotNil(t, failure)
	assert.Equal(t, assert.AnError, *failure)
}
