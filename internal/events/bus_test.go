package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingKeepsMostRecent(t *testing.T) {
	r := NewRing[int](3)
	assert.Empty(t, r.Items())

	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.Equal(t, []int{3, 4, 5}, r.Items())
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[string](0)
	r.Push("a")
	r.Push("b")
	assert.Equal(t, []string{"b"}, r.Items())
}

func TestPublishAssignsSequence(t *testing.T) {
	bus := NewBus(DefaultCapacity)

	first := bus.Publish(Event{Kind: TableAdded, Subject: "user"})
	second := bus.Publish(Event{Kind: FieldAdded, Subject: "user.name"})

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.False(t, first.At.IsZero())
	require.Len(t, bus.Recent(), 2)
	assert.Equal(t, []Event{second}, bus.Since(1))
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	bus := NewBus(10)
	var got []Kind
	unsubscribe := bus.Subscribe(func(e Event) { got = append(got, e.Kind) })

	bus.Publish(Event{Kind: TableAdded})
	unsubscribe()
	unsubscribe()
	bus.Publish(Event{Kind: TableDeleted})

	assert.Equal(t, []Kind{TableAdded}, got)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestSubscribersInOrder(t *testing.T) {
	bus := NewBus(10)
	var order []string
	bus.Subscribe(func(Event) { order = append(order, "a") })
	bus.Subscribe(func(Event) { order = append(order, "b") })

	bus.Publish(Event{Kind: GenerateCompleted})

	assert.Equal(t, []string{"a", "b"}, order)
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewBus(10)
	calls := 0
	var unsubscribe func()
	unsubscribe = bus.Subscribe(func(Event) {
		calls++
		unsubscribe()
	})

	bus.Publish(Event{Kind: TableAdded})
	bus.Publish(Event{Kind: TableAdded})

	assert.Equal(t, 1, calls)
}

func TestRecentIsBounded(t *testing.T) {
	bus := NewBus(2)
	for range 5 {
		bus.Publish(Event{Kind: FieldUpdated})
	}

	recent := bus.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(4), recent[0].Seq)
	assert.Equal(t, uint64(5), recent[1].Seq)
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus(DefaultCapacity)
	var mu sync.Mutex
	seen := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Event{Kind: TableAdded})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, seen)
	assert.Len(t, bus.Recent(), 20)
}
