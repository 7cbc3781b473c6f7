package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatMapMergeInterleavesInnerSignals(t *testing.T) {
	values, failure := ToSlice(FlatMap(ints(1, 2), FlattenMerge, func(v int) Signal[int, error] {
		return ints(v*10, v*10+1)
	}))
	assert.Nil(t, failure)
	assert.ElementsMatch(t, []int{10, 11, 20, 21}, values)
}

func TestFlatMapMergeFailsWhenInnerFails(t *testing.T) {
	_, failure := ToSlice(FlatMap(ints(1), FlattenMerge, func(int) Signal[int, error] {
		return Err[int, error](assert.AnError)
	}))
	if assert.NotNil(t, failure) {
		assert.Equal(t, assert.AnError, *failure)
	}
}

func TestFlatMapLatestSwitchesAwayFromPendingInner(t *testing.T) {
	outer := NewPassthroughSubject[int, error]()
	innerA := NewPassthroughSubject[string, error]()
	innerB := NewPassthroughSubject[string, error]()

	var received []string
	sub := FlatMap[int, string, error](outer.AsSignal(), FlattenLatest, func(v int) Signal[string, error] {
		if v == 1 {
			return innerA.AsSignal()
		}
		return innerB.AsSignal()
	}).Observe(func(ev Event[string, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
	})
	defer sub.Dispose()

	outer.Send(NextEvent[int, error](1))
	innerA.Send(NextEvent[string, error]("a1"))
	outer.Send(NextEvent[int, error](2)) // switches away from innerA
	innerA.Send(NextEvent[string, error]("a2"))
	innerB.Send(NextEvent[string, error]("b1"))

	assert.Equal(t, []string{"a1", "b1"}, received)
}

func TestFlatMapConcatRunsInnerSignalsInOrder(t *testing.T) {
	outer := NewPassthroughSubject[int, error]()
	innerA := NewPassthroughSubject[string, error]()
	innerB := NewPassthroughSubject[string, error]()

	var received []string
	var completed bool
	sub := FlatMap[int, string, error](outer.AsSignal(), FlattenConcat, func(v int) Signal[string, error] {
		if v == 1 {
			return innerA.AsSignal()
		}
		return innerB.AsSignal()
	}).Observe(func(ev Event[string, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
		if ev.Kind() == KindCompleted {
			completed = true
		}
	})
	defer sub.Dispose()

	outer.Send(NextEvent[int, error](1))
	outer.Send(NextEvent[int, error](2)) // queued, innerA still running
	innerB.Send(NextEvent[string, error]("too-early"))
	innerA.Send(NextEvent[string, error]("a1"))
	innerA.Send(CompletedEvent[string, error]())
	innerB.Send(NextEvent[string, error]("b1"))
	innerB.Send(CompletedEvent[string, error]())
	outer.Send(CompletedEvent[int, error]())

	assert.Equal(t, []string{"a1", "b1"}, received)
	assert.True(t, completed)
}

// A fully synchronous inner signal completes inside the very call to
// Observe that starts it, which re-enters the scheduling logic before that
// call returns; this exercises the queue draining without deadlocking.
func TestFlatMapConcatDrainsSynchronousInnerSignalsWithoutDeadlock(t *testing.T) {
	values, failure := ToSlice(FlatMap(ints(1, 2, 3), FlattenConcat, func(v int) Signal[int, error] {
		return Just[int, error](v * 100)
	}))
	assert.Nil(t, failure)
	assert.Equal(t, []int{100, 200, 300}, values)
}

func TestFlatMapConcatDrainsMultiValueSynchronousInnerSignals(t *testing.T) {
	values, failure := ToSlice(FlatMap(ints(1, 2), FlattenConcat, func(v int) Signal[int, error] {
		return ints(v*10, v*10+1)
	}))
	assert.Nil(t, failure)
	assert.Equal(t, []int{10, 11, 20, 21}, values)
}

func TestFlatMapConcatPropagatesOuterFailure(t *testing.T) {
	_, failure := ToSlice(FlatMap(Err[int, error](assert.AnError), FlattenConcat, func(int) Signal[int, error] {
		return Just[int, error](1)
	}))
	if assert.NotNil(t, failure) {
		assert.Equal(t, assert.AnError, *failure)
	}
}
