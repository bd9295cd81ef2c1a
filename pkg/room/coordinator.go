package room

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"

	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/poker/action"
	"pokerroom-server/pkg/poker/holdem"
)

const persistAttempts = 3
const persistBackoff = 50 * time.Millisecond

// Config carries the tunables shared by every coordinator
type Config struct {
	TurnTimeout    time.Duration
	ReconnectGrace time.Duration
	Clock          quartz.Clock
	RNG            rng.Generator
}

// Coordinator owns all mutation of a single room. Events are applied one
// at a time by the run loop; after each application the new snapshot is
// persisted, the turn-deadline timer is rescheduled, and the emitted
// events are published to subscribers.
type Coordinator struct {
	room   *Room
	store  Store
	config Config
	log    logrus.FieldLogger

	queue chan func()
	close chan bool

	subscribers *bus

	turnTimer   *quartz.Timer
	turnSeat    string
	graceTimers map[string]*quartz.Timer

	degraded    bool
	quarantined bool

	// onClosed is invoked once when the room finishes so the registry can
	// drop the coordinator
	onClosed func(roomID string)
}

// NewCoordinator starts the run loop for a loaded room
func NewCoordinator(r *Room, store Store, config Config, onClosed func(string)) *Coordinator {
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}

	if config.RNG == nil {
		config.RNG = rng.Crypto{}
	}

	c := &Coordinator{
		room:        r,
		store:       store,
		config:      config,
		log:         logrus.WithFields(logrus.Fields{"room": r.ID, "name": r.Name}),
		queue:       make(chan func(), 256),
		close:       make(chan bool),
		subscribers: newBus(),
		graceTimers: make(map[string]*quartz.Timer),
		onClosed:    onClosed,
	}

	// a revived room may have a player mid-decision; give them a fresh
	// deadline rather than leaving the hand stuck
	c.rescheduleTurnTimer()

	go c.runLoop()
	return c
}

// RoomID returns the id of the coordinated room
func (c *Coordinator) RoomID() string {
	return c.room.ID
}

func (c *Coordinator) runLoop() {
	c.log.Debug("starting room run loop")
	for {
		select {
		case fn := <-c.queue:
			fn()
		case <-c.close:
			c.log.Debug("terminating room run loop")
			return
		}
	}
}

// exec runs fn on the run loop and waits for it to finish
func (c *Coordinator) exec(ctx context.Context, fn func()) error {
	done := make(chan bool, 1)

	wrapped := func() {
		fn()
		done <- true
	}

	select {
	case c.queue <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.close:
		return ErrRoomClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.close:
		// the fn that closed the room may have been ours; give it a
		// moment to report completion before declaring the room gone
		select {
		case <-done:
			return nil
		case <-time.After(50 * time.Millisecond):
			return ErrRoomClosed
		}
	}
}

// enqueue runs fn on the run loop without waiting; timer callbacks use it
func (c *Coordinator) enqueue(fn func()) {
	select {
	case c.queue <- fn:
	case <-c.close:
	}
}

// Dispatch applies an event and returns the caller's redacted view
func (c *Coordinator) Dispatch(ctx context.Context, playerID string, ev holdem.Event) (*View, error) {
	var view *View
	var applyErr error

	err := c.exec(ctx, func() {
		applyErr = c.apply(ev)
		if applyErr == nil || holdem.IsRuleError(applyErr) {
			view = RenderView(c.room, playerID)
		}
	})
	if err != nil {
		return nil, err
	}

	if applyErr != nil {
		return view, applyErr
	}

	return view, nil
}

// apply must only be called from the run loop
func (c *Coordinator) apply(ev holdem.Event) error {
	if c.quarantined {
		return ErrRoomCorrupted
	}

	if c.degraded {
		if !c.reload() {
			return ErrRoomDegraded
		}
	}

	next, events, err := c.room.Game.Apply(ev)
	if err != nil {
		if holdem.IsInvariantError(err) {
			// the last good snapshot stays in the store untouched
			c.log.WithError(err).Error("room quarantined")
			c.quarantined = true
			c.publishError(ErrRoomCorrupted)
		}

		return err
	}

	c.room.Game = next
	c.room.UpdatedAt = c.config.Clock.Now()

	if err := c.persist(); err != nil {
		c.log.WithError(err).Error("room degraded: could not persist snapshot")
		c.degraded = true
		c.publishError(ErrRoomDegraded)
		return ErrRoomDegraded
	}

	c.rescheduleTurnTimer()

	for _, emitted := range events {
		c.publish(emitted)
	}

	if c.room.Game.Status == holdem.StatusFinished {
		c.finish()
	}

	return nil
}

// persist writes the snapshot with bounded retries. It runs on the run
// loop but holds no lock; readers keep serving the previously published
// state while the write is in flight.
func (c *Coordinator) persist() error {
	snapshot, err := c.room.MarshalSnapshot()
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err = c.store.Put(ctx, c.room.Key(), snapshot)
		cancel()

		if err == nil {
			return nil
		}

		if attempt+1 >= persistAttempts {
			return err
		}

		time.Sleep(persistBackoff << attempt)
	}
}

// reload restores the room from the last successfully persisted snapshot
func (c *Coordinator) reload() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, err := c.store.Get(ctx, c.room.Key())
	if err != nil {
		return false
	}

	restored, err := UnmarshalSnapshot(b)
	if err != nil {
		return false
	}

	c.room = restored
	c.degraded = false
	c.rescheduleTurnTimer()
	c.log.Info("room restored from last good snapshot")
	return true
}

// rescheduleTurnTimer keeps exactly one deadline timer running for the
// seat on the clock. Cancellation is best-effort; the state machine treats
// a stale timeout as a no-op.
func (c *Coordinator) rescheduleTurnTimer() {
	g := c.room.Game

	current := ""
	if g.CurrentTurn >= 0 && g.CurrentTurn < len(g.Seats) {
		current = g.Seats[g.CurrentTurn].PlayerID
	}

	if current == c.turnSeat {
		return
	}

	if c.turnTimer != nil {
		c.turnTimer.Stop()
		c.turnTimer = nil
	}

	c.turnSeat = current
	if current == "" {
		return
	}

	playerID := current
	c.turnTimer = c.config.Clock.AfterFunc(c.config.TurnTimeout, func() {
		c.enqueue(func() {
			seat := c.room.Game.SeatOf(playerID)
			if seat < 0 {
				return
			}

			if err := c.apply(holdem.Timeout{Seat: seat}); err != nil {
				c.log.WithError(err).Warn("could not apply turn timeout")
			}
		})
	})
}

// publish renders one emitted event for every subscriber
func (c *Coordinator) publish(emitted holdem.Emitted) {
	r := c.room
	c.subscribers.publish(func(playerID string) *Envelope {
		return newEnvelope(string(emitted.Kind), RenderView(r, playerID))
	})
}

func (c *Coordinator) publishError(err error) {
	c.subscribers.publish(func(playerID string) *Envelope {
		return newErrorEnvelope(err)
	})
}

// finish tears the room down once its status reaches finished
func (c *Coordinator) finish() {
	if c.turnTimer != nil {
		c.turnTimer.Stop()
		c.turnTimer = nil
	}

	for _, timer := range c.graceTimers {
		timer.Stop()
	}
	c.graceTimers = make(map[string]*quartz.Timer)

	c.subscribers.detachAll()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.store.Delete(ctx, c.room.Key()); err != nil {
		c.log.WithError(err).Error("could not delete room snapshot")
	}

	if c.onClosed != nil {
		c.onClosed(c.room.ID)
		c.onClosed = nil
	}

	close(c.close)
}

// Join seats the player. Re-joining while already seated is idempotent
// and simply returns the current view.
func (c *Coordinator) Join(ctx context.Context, playerID, username string, chips int) (*View, error) {
	var view *View
	var applyErr error

	err := c.exec(ctx, func() {
		if c.room.Game.SeatOf(playerID) >= 0 {
			view = RenderView(c.room, playerID)
			return
		}

		applyErr = c.apply(holdem.SeatJoin{PlayerID: playerID, Username: username, Chips: chips})
		if applyErr == nil {
			view = RenderView(c.room, playerID)
		}
	})
	if err != nil {
		return nil, err
	}

	return view, applyErr
}

// Leave removes the player's seat. Leaving a room the player is not in is
// idempotent.
func (c *Coordinator) Leave(ctx context.Context, playerID string) error {
	var applyErr error

	err := c.exec(ctx, func() {
		seat := c.room.Game.SeatOf(playerID)
		if seat < 0 {
			return
		}

		if timer, ok := c.graceTimers[playerID]; ok {
			timer.Stop()
			delete(c.graceTimers, playerID)
		}

		applyErr = c.apply(holdem.SeatLeave{Seat: seat})
	})
	if err != nil {
		return err
	}

	return applyErr
}

// StartHand begins a new deal. Only the room's creator may start play.
func (c *Coordinator) StartHand(ctx context.Context, playerID string) (*View, error) {
	if playerID != c.room.Creator {
		return nil, ErrNotCreator
	}

	return c.Dispatch(ctx, playerID, holdem.StartHand{Deck: deck.New(c.config.RNG)})
}

// Act applies a betting action for the player
func (c *Coordinator) Act(ctx context.Context, playerID string, act action.Action, amount int) (*View, error) {
	var view *View
	var applyErr error

	err := c.exec(ctx, func() {
		seat := c.room.Game.SeatOf(playerID)
		if seat < 0 {
			applyErr = ErrNotInRoom
			return
		}

		applyErr = c.apply(holdem.PlayerAction{Seat: seat, Action: act, Amount: amount})
		if applyErr == nil || holdem.IsRuleError(applyErr) {
			view = RenderView(c.room, playerID)
		}
	})
	if err != nil {
		return nil, err
	}

	return view, applyErr
}

// End force-resolves any in-progress hand and closes the room. Only the
// creator may end the room.
func (c *Coordinator) End(ctx context.Context, playerID string) (*View, error) {
	if playerID != c.room.Creator {
		return nil, ErrNotCreator
	}

	return c.Dispatch(ctx, playerID, holdem.ForceEnd{})
}

// View returns the caller's redacted snapshot of the room
func (c *Coordinator) View(ctx context.Context, playerID string) (*View, error) {
	var view *View

	err := c.exec(ctx, func() {
		view = RenderView(c.room, playerID)
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// Subscribe attaches a push channel for the player. The first message is
// the current redacted snapshot. Subscribing also cancels any pending
// disconnect grace timer for the player.
func (c *Coordinator) Subscribe(ctx context.Context, playerID string) (*Client, error) {
	client := NewClient(playerID)

	err := c.exec(ctx, func() {
		c.subscribers.attach(client)

		if timer, ok := c.graceTimers[playerID]; ok {
			timer.Stop()
			delete(c.graceTimers, playerID)
		}

		if seat := c.room.Game.SeatOf(playerID); seat >= 0 && !c.room.Game.Seats[seat].Connected {
			if err := c.apply(holdem.Reconnect{Seat: seat}); err != nil {
				c.log.WithError(err).Warn("could not mark seat reconnected")
			}
		}

		client.Send(newEnvelope(KindSnapshot, RenderView(c.room, playerID)))
	})
	if err != nil {
		return nil, err
	}

	return client, nil
}

// Unsubscribe detaches the push channel. If the player holds a seat, the
// disconnect grace timer starts; unless the player reconnects in time the
// seat is removed. The turn deadline is unaffected.
func (c *Coordinator) Unsubscribe(client *Client) {
	c.subscribers.detach(client)

	playerID := client.PlayerID
	_ = c.exec(context.Background(), func() {
		seat := c.room.Game.SeatOf(playerID)
		if seat < 0 {
			return
		}

		if err := c.apply(holdem.Disconnect{Seat: seat}); err != nil {
			c.log.WithError(err).Warn("could not mark seat disconnected")
			return
		}

		if timer, ok := c.graceTimers[playerID]; ok {
			timer.Stop()
		}

		c.graceTimers[playerID] = c.config.Clock.AfterFunc(c.config.ReconnectGrace, func() {
			c.enqueue(func() {
				delete(c.graceTimers, playerID)

				seat := c.room.Game.SeatOf(playerID)
				if seat < 0 || c.room.Game.Seats[seat].Connected {
					return
				}

				c.log.WithField("player", playerID).Info("reconnect grace expired; removing seat")
				if err := c.apply(holdem.SeatLeave{Seat: seat}); err != nil {
					c.log.WithError(err).Warn("could not remove seat after grace")
				}
			})
		})
	})
}
