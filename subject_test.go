package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPassthroughSubjectOnlyDeliversToLiveSubscribers(t *testing.T) {
	subj := NewPassthroughSubject[int, error]()
	subj.Send(NextEvent[int, error](1)) // nobody listening yet

	var received []int
	sub := subj.AsSignal().Observe(func(ev Event[int, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
	})
	defer sub.Dispose()

	subj.Send(NextEvent[int, error](2))
	subj.Send(NextEvent[int, error](3))
	assert.Equal(t, []int{2, 3}, received)
}

func TestPassthroughSubjectSendIsNoopAfterTermination(t *testing.T) {
	subj := NewPassthroughSubject[int, error]()
	var terminal Kind
	subj.AsSignal().Observe(func(ev Event[int, error]) {
		if ev.IsTerminal() {
			terminal = ev.Kind()
		}
	})

	subj.Send(CompletedEvent[int, error]())
	subj.Send(NextEvent[int, error](99)) // dropped
	assert.Equal(t, KindCompleted, terminal)

	err := subj.TrySend(NextEvent[int, error](1))
	assert.ErrorIs(t, err, ErrSubjectTerminated)
}

func TestPassthroughSubjectLateSubscriberAfterTerminationGetsNoDelivery(t *testing.T) {
	subj := NewPassthroughSubject[int, error]()
	subj.Send(CompletedEvent[int, error]())

	called := false
	subj.AsSignal().Observe(func(Event[int, error]) { called = true })
	assert.False(t, called)
}

func TestReplaySubjectReplaysBufferedHistory(t *testing.T) {
	subj := NewReplaySubject[int, error](2)
	subj.Send(NextEvent[int, error](1))
	subj.Send(NextEvent[int, error](2))
	subj.Send(NextEvent[int, error](3))

	var received []int
	subj.AsSignal().Observe(func(ev Event[int, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
	})
	assert.Equal(t, []int{2, 3}, received)
}

func TestReplaySubjectRetainsTerminalAfterCappedBuffer(t *testing.T) {
	subj := NewReplaySubject[int, error](1)
	subj.Send(NextEvent[int, error](1))
	subj.Send(NextEvent[int, error](2))
	subj.Send(CompletedEvent[int, error]())

	var received []Event[int, error]
	subj.AsSignal().Observe(func(ev Event[int, error]) {
		received = append(received, ev)
	})
	if assert.Len(t, received, 2) {
		assert.Equal(t, 2, received[0].MustValue())
		assert.True(t, received[1].IsTerminal())
	}
}

func TestReplayOneSubjectReplaysOnlyLastValue(t *testing.T) {
	subj := NewReplayOneSubject[int, error]()
	subj.Send(NextEvent[int, error](1))
	subj.Send(NextEvent[int, error](2))

	var received []int
	subj.AsSignal().Observe(func(ev Event[int, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
	})
	assert.Equal(t, []int{2}, received)
}

func TestReplayOneSubjectReplaysValueThenTerminal(t *testing.T) {
	subj := NewReplayOneSubject[int, error]()
	subj.Send(NextEvent[int, error](1))
	subj.Send(CompletedEvent[int, error]())

	var kinds []Kind
	subj.AsSignal().Observe(func(ev Event[int, error]) {
		kinds = append(kinds, ev.Kind())
	})
	assert.Equal(t, []Kind{KindNext, KindCompleted}, kinds)
}

func TestPassthroughSubjectMultipleSubscribersAllReceive(t *testing.T) {
	subj := NewPassthroughSubject[string, error]()
	var a, b []string
	subA := subj.AsSignal().Observe(func(ev Event[string, error]) {
		if v, ok := ev.Value(); ok {
			a = append(a, v)
		}
	})
	subB := subj.AsSignal().Observe(func(ev Event[string, error]) {
		if v, ok := ev.Value(); ok {
			b = append(b, v)
		}
	})
	defer subA.Dispose()
	defer subB.Dispose()

	subj.Send(NextEvent[string, error]("x"))
	assert.Equal(t, []string{"x"}, a)
	assert.Equal(t, []string{"x"}, b)
}

func TestPassthroughSubjectUnsubscribeStopsDelivery(t *testing.T) {
	subj := NewPassthroughSubject[int, error]()
	var received []int
	sub := subj.AsSignal().Observe(func(ev Event[int, error]) {
		if v, ok := ev.Value(); ok {
			received = append(received, v)
		}
	})
	subj.Send(NextEvent[int, error](1))
	sub.Dispose()
	subj.Send(NextEvent[int, error](2))
	assert.Equal(t, []int{1}, received)
}
