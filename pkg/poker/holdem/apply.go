package holdem

import (
	"pokerroom-server/pkg/poker/action"
)

// Apply runs one event through the state machine.
// The receiver is never mutated: on success the returned game is a new
// snapshot, on error the returned game is nil and the caller keeps using
// the old snapshot. A RuleError means the caller violated a precondition;
// an InvariantError means the resulting state is corrupt and must not be
// persisted.
func (g *Game) Apply(ev Event) (*Game, []Emitted, error) {
	next := g.Clone()

	events, err := next.apply(ev)
	if err != nil {
		return nil, nil, err
	}

	if err := next.checkInvariants(); err != nil {
		return nil, nil, err
	}

	return next, events, nil
}

func (g *Game) apply(ev Event) ([]Emitted, error) {
	switch ev := ev.(type) {
	case StartHand:
		return g.startHand(ev)
	case PlayerAction:
		return g.playerAction(ev)
	case Timeout:
		return g.timeout(ev)
	case Disconnect:
		return g.setConnected(ev.Seat, false)
	case Reconnect:
		return g.setConnected(ev.Seat, true)
	case SeatJoin:
		return g.seatJoin(ev)
	case SeatLeave:
		return g.seatLeave(ev)
	case ForceEnd:
		return g.forceEnd()
	}

	return nil, newRuleError("unknown event")
}

func (g *Game) seatJoin(ev SeatJoin) ([]Emitted, error) {
	if g.Status == StatusFinished {
		return nil, ErrTableFinished
	}

	if g.SeatOf(ev.PlayerID) >= 0 {
		return nil, ErrAlreadySeated
	}

	if len(g.Seats) >= g.SeatLimit {
		return nil, ErrTableFull
	}

	if g.InHand() {
		return nil, ErrHandInProgress
	}

	g.Seats = append(g.Seats, &Seat{
		PlayerID:  ev.PlayerID,
		Username:  ev.Username,
		Chips:     ev.Chips,
		Connected: true,
	})

	return []Emitted{{Kind: KindPlayerJoined, Seat: len(g.Seats) - 1}}, nil
}

func (g *Game) seatLeave(ev SeatLeave) ([]Emitted, error) {
	if ev.Seat < 0 || ev.Seat >= len(g.Seats) {
		return nil, newRuleError("no such seat")
	}

	events := make([]Emitted, 0, 2)

	// fold out of an active hand first so the pot resolves correctly
	if g.InHand() && g.Seats[ev.Seat].inHand() {
		folded, err := g.foldSeat(ev.Seat)
		if err != nil {
			return nil, err
		}
		events = append(events, folded...)
	}

	events = append(events, Emitted{Kind: KindPlayerLeft, Seat: ev.Seat})
	g.removeSeat(ev.Seat)

	if len(g.Seats) == 0 {
		g.Status = StatusFinished
	}

	return events, nil
}

// removeSeat drops the seat from the ordered list and shifts every stored
// seat index that pointed past it
func (g *Game) removeSeat(idx int) {
	g.Seats = append(g.Seats[:idx], g.Seats[idx+1:]...)

	adjust := func(i int) int {
		switch {
		case i == idx:
			return -1
		case i > idx:
			return i - 1
		}
		return i
	}

	g.Dealer = adjust(g.Dealer)
	g.CurrentTurn = adjust(g.CurrentTurn)
	g.LastAggressor = adjust(g.LastAggressor)
}

func (g *Game) setConnected(idx int, connected bool) ([]Emitted, error) {
	if idx < 0 || idx >= len(g.Seats) {
		return nil, newRuleError("no such seat")
	}

	g.Seats[idx].Connected = connected
	return nil, nil
}

// timeout folds the seat if it is still on the clock. A late timeout whose
// seat no longer owes action is silently ignored because timer cancellation
// is best-effort.
func (g *Game) timeout(ev Timeout) ([]Emitted, error) {
	if !g.Phase.IsBettingRound() {
		return nil, nil
	}

	if ev.Seat != g.CurrentTurn {
		return nil, nil
	}

	if ev.Seat < 0 || ev.Seat >= len(g.Seats) || !g.Seats[ev.Seat].canAct() {
		return nil, nil
	}

	return g.playerAction(PlayerAction{Seat: ev.Seat, Action: action.Fold})
}

func (g *Game) startHand(ev StartHand) ([]Emitted, error) {
	if g.Status == StatusFinished {
		return nil, ErrTableFinished
	}

	if g.InHand() {
		return nil, ErrHandInProgress
	}

	if g.chippedCount() < 2 {
		return nil, ErrNotEnoughPlayers
	}

	if ev.Deck == nil || !ev.Deck.CanDraw(52) {
		return nil, newRuleError("a full shuffled deck is required")
	}

	chipped := func(s *Seat) bool { return s.Chips > 0 }

	// the dealer cursor was rotated when the previous hand ended; advance
	// only if it does not point at a funded seat
	if g.Dealer < 0 || g.Dealer >= len(g.Seats) || g.Seats[g.Dealer].Chips == 0 {
		g.Dealer = g.nextSeatFrom(g.Dealer, chipped)
	}

	headsUp := g.chippedCount() == 2

	var smallBlind, bigBlind int
	if headsUp {
		smallBlind = g.Dealer
		bigBlind = g.nextSeatFrom(g.Dealer, chipped)
	} else {
		smallBlind = g.nextSeatFrom(g.Dealer, chipped)
		bigBlind = g.nextSeatFrom(smallBlind, chipped)
	}

	g.Deck = ev.Deck
	g.Burned = 0
	g.Community = nil
	g.Pot = 0
	g.Status = StatusPlaying

	for i, seat := range g.Seats {
		seat.Bet = 0
		seat.TotalBet = 0
		seat.Cards = nil
		seat.AllIn = false
		seat.Acted = false
		seat.StartChips = seat.Chips

		// seats that cannot fund the hand sit out
		seat.Folded = seat.Chips == 0

		seat.IsDealer = i == g.Dealer
		seat.IsSmallBlind = i == smallBlind
		seat.IsBigBlind = i == bigBlind
	}

	// two rounds, one card at a time, starting left of the dealer
	for round := 0; round < 2; round++ {
		for i := 1; i <= len(g.Seats); i++ {
			seat := g.Seats[(g.Dealer+i)%len(g.Seats)]
			if seat.Folded {
				continue
			}

			card, err := g.Deck.Draw()
			if err != nil {
				return nil, newInvariantError("deck underflow while dealing")
			}

			seat.Cards = append(seat.Cards, card)
		}
	}

	g.Pot += g.Seats[smallBlind].commit(g.MinBet / 2)
	g.Pot += g.Seats[bigBlind].commit(g.MinBet)

	g.CurrentBet = g.MinBet
	g.LastRaise = g.MinBet
	g.LastAggressor = bigBlind
	g.Phase = PhasePreflop
	g.CurrentTurn = g.nextSeatFrom(bigBlind, (*Seat).canAct)

	events := []Emitted{{Kind: KindHandStarted, Seat: g.Dealer, Phase: PhasePreflop}}

	// blinds may have put everyone all-in already
	if g.roundComplete() {
		more, err := g.advancePhase()
		if err != nil {
			return nil, err
		}
		events = append(events, more...)
	}

	return events, nil
}

func (g *Game) forceEnd() ([]Emitted, error) {
	if g.Status == StatusFinished {
		return nil, ErrTableFinished
	}

	var events []Emitted
	if g.InHand() {
		var err error
		if g.countInHand() <= 1 {
			events, err = g.endHandSingleWinner(false)
		} else {
			if err = g.dealRemainingBoard(); err != nil {
				return nil, err
			}
			events, err = g.showdown(false)
		}

		if err != nil {
			return nil, err
		}
	}

	g.Status = StatusFinished
	return events, nil
}
