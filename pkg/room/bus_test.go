package room

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_publishRendersPerPlayer(t *testing.T) {
	b := newBus()

	c1 := NewClient("p1")
	c2 := NewClient("p2")
	b.attach(c1)
	b.attach(c2)

	b.publish(func(playerID string) *Envelope {
		return &Envelope{Kind: "update", Error: playerID}
	})

	env1 := <-c1.Receive()
	env2 := <-c2.Receive()
	assert.Equal(t, "p1", env1.Error)
	assert.Equal(t, "p2", env2.Error)
}

func TestBus_slowSubscriberIsDetached(t *testing.T) {
	b := newBus()

	c := NewClient("p1")
	b.attach(c)

	// nobody drains the channel; the buffer eventually overflows and the
	// client is dropped rather than blocking the publisher
	for i := 0; i <= sendBuffer; i++ {
		b.publish(func(playerID string) *Envelope {
			return &Envelope{Kind: fmt.Sprintf("update-%d", i)}
		})
	}

	received := 0
	for range c.Receive() {
		received++
	}

	// the channel was closed after exactly sendBuffer queued messages
	assert.Equal(t, sendBuffer, received)

	// sends to a detached client are rejected
	assert.False(t, c.Send(&Envelope{Kind: "late"}))
}

func TestBus_detachAll(t *testing.T) {
	b := newBus()

	c1 := NewClient("p1")
	c2 := NewClient("p2")
	b.attach(c1)
	b.attach(c2)

	b.detachAll()

	_, ok := <-c1.Receive()
	require.False(t, ok)
	_, ok = <-c2.Receive()
	require.False(t, ok)
}

func TestBus_detachIsIdempotent(t *testing.T) {
	b := newBus()

	c := NewClient("p1")
	b.attach(c)
	b.detach(c)
	b.detach(c)
}
