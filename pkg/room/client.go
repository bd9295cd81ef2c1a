package room

import (
	"sync"

	"github.com/google/uuid"
)

// sendBuffer bounds a subscriber's outbound queue. A subscriber that falls
// this far behind is detached rather than allowed to slow the room.
const sendBuffer = 64

// Envelope is one message pushed to a subscriber
type Envelope struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Room  *View  `json:"room,omitempty"`
	Error string `json:"error,omitempty"`
}

// envelope kinds beyond the state machine's own
const (
	KindSnapshot = "snapshot"
	KindError    = "error"
)

func newEnvelope(kind string, view *View) *Envelope {
	return &Envelope{
		ID:   uuid.New().String(),
		Kind: kind,
		Room: view,
	}
}

func newErrorEnvelope(err error) *Envelope {
	return &Envelope{
		ID:    uuid.New().String(),
		Kind:  KindError,
		Error: err.Error(),
	}
}

// Client is a subscriber to a room's state updates
type Client struct {
	// PlayerID determines the redaction applied to pushed views
	PlayerID string

	mu     sync.Mutex
	send   chan *Envelope
	closed bool
}

// NewClient returns a subscriber for the given player
func NewClient(playerID string) *Client {
	return &Client{
		PlayerID: playerID,
		send:     make(chan *Envelope, sendBuffer),
	}
}

// Send enqueues a message without blocking. It returns false if the
// client's buffer is full; the caller is expected to detach the client.
func (c *Client) Send(env *Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Receive returns the channel of pushed messages. The channel is closed
// when the client is detached.
func (c *Client) Receive() <-chan *Envelope {
	return c.send
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
