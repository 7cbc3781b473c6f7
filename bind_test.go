package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindToPushesSourceIntoTarget(t *testing.T) {
	target := NewProperty(0)
	source := NewPassthroughSubject[int, Never]()

	d := BindTo[int](source.AsSignal(), target)
	defer d.Dispose()

	source.Send(NextEvent[int, Never](9))
	assert.Equal(t, 9, target.Value())
}

func TestBidirectionalBindPropagatesBothWays(t *testing.T) {
	a := NewProperty(0)
	b := NewProperty(0)

	d := BidirectionalBind(PropertyEndpoint(a), PropertyEndpoint(b))
	defer d.Dispose()

	a.SetValue(1)
	assert.Equal(t, 1, b.Value())

	b.SetValue(2)
	assert.Equal(t, 2, a.Value())
}

func TestBidirectionalBindDoesNotLoopForever(t *testing.T) {
	a := NewProperty(0)
	b := NewProperty(0)

	var updatesOnA int
	sub := a.AsSignal().Observe(func(Event[int, Never]) { updatesOnA++ })
	defer sub.Dispose()

	d := BidirectionalBind(PropertyEndpoint(a), PropertyEndpoint(b))
	defer d.Dispose()

	updatesOnA = 0
	a.SetValue(7)
	assert.Equal(t, 1, updatesOnA)
	assert.Equal(t, 7, b.Value())
}

func TestBindToBagTearsDownWithBag(t *testing.T) {
	target := NewProperty(0)
	source := NewPassthroughSubject[int, Never]()
	bag := NewDisposeBag()

	BindToBag[int](source.AsSignal(), target, bag)
	source.Send(NextEvent[int, Never](3))
	assert.Equal(t, 3, target.Value())

	bag.Dispose()
	source.Send(NextEvent[int, Never](4))
	assert.Equal(t, 3, target.Value())
}
