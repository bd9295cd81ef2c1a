package room

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// bus holds a room's subscribers. It has its own lock, separate from the
// coordinator's writer section, because connection lifecycle callbacks and
// the publish path race against each other.
type bus struct {
	lock    sync.Mutex
	clients map[*Client]bool
}

func newBus() *bus {
	return &bus{
		clients: make(map[*Client]bool),
	}
}

// attach registers a subscriber
func (b *bus) attach(c *Client) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.clients[c] = true
}

// detach removes a subscriber and closes its channel
func (b *bus) detach(c *Client) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.clients[c] {
		delete(b.clients, c)
		c.close()
	}
}

// detachAll removes every subscriber
func (b *bus) detachAll() {
	b.lock.Lock()
	defer b.lock.Unlock()

	for c := range b.clients {
		delete(b.clients, c)
		c.close()
	}
}

// publish pushes one message per subscriber, rendered by the supplied
// function so each player sees their own redaction. A subscriber whose
// buffer is full is detached; a reconnect re-attaches it with a fresh
// snapshot.
func (b *bus) publish(render func(playerID string) *Envelope) {
	b.lock.Lock()
	defer b.lock.Unlock()

	for c := range b.clients {
		if !c.Send(render(c.PlayerID)) {
			logrus.WithField("player", c.PlayerID).Warn("subscriber too slow; detaching")
			delete(b.clients, c)
			c.close()
		}
	}
}
