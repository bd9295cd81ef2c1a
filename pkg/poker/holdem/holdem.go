// Package holdem implements the rules of a no-limit Texas Hold'em hand as a
// pure state machine. Apply never mutates its receiver; timers, persistence,
// and transport live in the coordinator.
package holdem

import (
	"pokerroom-server/pkg/deck"
)

// Game is the complete table state for one room
type Game struct {
	Seats     []*Seat `json:"seats"`
	SeatLimit int     `json:"seatLimit"`

	Status Status `json:"status"`
	Phase  Phase  `json:"phase"`

	// MinBet is the big blind; MaxBet caps bets and raises (0 = no cap)
	MinBet int `json:"minBet"`
	MaxBet int `json:"maxBet"`

	Community []*deck.Card `json:"community"`
	Deck      *deck.Deck   `json:"deck,omitempty"`
	Burned    int          `json:"burned"`

	Pot        int `json:"pot"`
	CurrentBet int `json:"currentBet"`

	// LastRaise is the size of the previous bet or raise increment this
	// street; the next raise must be at least this much
	LastRaise int `json:"lastRaise"`

	// seat indices; -1 means unset
	Dealer        int `json:"dealer"`
	CurrentTurn   int `json:"currentTurn"`
	LastAggressor int `json:"lastAggressor"`
}

// NewGame returns an empty table with the provided limits
func NewGame(seatLimit, minBet, maxBet int) *Game {
	return &Game{
		Seats:         make([]*Seat, 0, seatLimit),
		SeatLimit:     seatLimit,
		Status:        StatusWaiting,
		Phase:         PhaseIdle,
		MinBet:        minBet,
		MaxBet:        maxBet,
		Dealer:        -1,
		CurrentTurn:   -1,
		LastAggressor: -1,
	}
}

// Clone returns a deep copy of the table state
func (g *Game) Clone() *Game {
	cp := *g

	cp.Seats = make([]*Seat, len(g.Seats))
	for i, seat := range g.Seats {
		cp.Seats[i] = seat.clone()
	}

	if g.Community != nil {
		cp.Community = make([]*deck.Card, len(g.Community))
		for i, card := range g.Community {
			c := *card
			cp.Community[i] = &c
		}
	}

	if g.Deck != nil {
		cards := make([]*deck.Card, len(g.Deck.Cards))
		for i, card := range g.Deck.Cards {
			c := *card
			cards[i] = &c
		}
		cp.Deck = &deck.Deck{Cards: cards}
	}

	return &cp
}

// SeatOf returns the index of the seat held by the player, or -1
func (g *Game) SeatOf(playerID string) int {
	for i, seat := range g.Seats {
		if seat.PlayerID == playerID {
			return i
		}
	}

	return -1
}

// InHand returns true if a hand is currently being played.
// The lingering showdown display between hands does not count.
func (g *Game) InHand() bool {
	return g.Phase.IsBettingRound()
}

// nextSeatFrom returns the first index strictly after start (wrapping) whose
// seat satisfies ok, or -1 if no other seat does
func (g *Game) nextSeatFrom(start int, ok func(*Seat) bool) int {
	n := len(g.Seats)
	if n == 0 {
		return -1
	}

	for i := 1; i <= n; i++ {
		idx := ((start+i)%n + n) % n
		if ok(g.Seats[idx]) {
			return idx
		}
	}

	return -1
}

// chippedCount returns how many seats can fund another hand
func (g *Game) chippedCount() int {
	count := 0
	for _, seat := range g.Seats {
		if seat.Chips > 0 {
			count++
		}
	}

	return count
}

// countInHand returns the number of non-folded seats
func (g *Game) countInHand() int {
	count := 0
	for _, seat := range g.Seats {
		if seat.inHand() {
			count++
		}
	}

	return count
}

// countCanAct returns the number of non-folded, non-all-in seats
func (g *Game) countCanAct() int {
	count := 0
	for _, seat := range g.Seats {
		if seat.canAct() {
			count++
		}
	}

	return count
}
