package holdem

import (
	"pokerroom-server/pkg/poker/action"
)

func (g *Game) playerAction(ev PlayerAction) ([]Emitted, error) {
	if !g.Phase.IsBettingRound() {
		return nil, ErrWrongPhase
	}

	if ev.Seat < 0 || ev.Seat >= len(g.Seats) {
		return nil, newRuleError("no such seat")
	}

	seat := g.Seats[ev.Seat]
	if seat.Folded {
		return nil, newRuleError("you have already folded")
	}

	// an all-in seat owes no action, but may still surrender its claim on
	// the pot by folding out of turn
	if seat.AllIn {
		if ev.Action != action.Fold {
			return nil, newRuleError("you are all-in")
		}

		return g.foldSeat(ev.Seat)
	}

	if ev.Seat != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}

	switch ev.Action {
	case action.Fold:
		return g.foldSeat(ev.Seat)
	case action.Check:
		return g.check(ev.Seat)
	case action.Call:
		return g.call(ev.Seat)
	case action.Bet:
		return g.bet(ev.Seat, ev.Amount)
	case action.Raise:
		return g.raise(ev.Seat, ev.Amount)
	case action.AllIn:
		return g.allIn(ev.Seat)
	}

	return nil, newRuleError("unknown action: %s", ev.Action)
}

// foldSeat marks the seat folded. Money already committed stays in the pot.
func (g *Game) foldSeat(idx int) ([]Emitted, error) {
	seat := g.Seats[idx]
	seat.Folded = true
	seat.Acted = true

	return g.afterAction(idx, action.Fold, 0)
}

func (g *Game) check(idx int) ([]Emitted, error) {
	seat := g.Seats[idx]
	if seat.Bet != g.CurrentBet {
		return nil, ErrCannotCheck
	}

	seat.Acted = true
	return g.afterAction(idx, action.Check, 0)
}

func (g *Game) call(idx int) ([]Emitted, error) {
	seat := g.Seats[idx]
	if g.CurrentBet <= seat.Bet {
		return nil, ErrCannotCall
	}

	paid := seat.commit(g.CurrentBet - seat.Bet)
	g.Pot += paid

	seat.Acted = true
	return g.afterAction(idx, action.Call, paid)
}

func (g *Game) bet(idx, amount int) ([]Emitted, error) {
	if g.CurrentBet != 0 {
		return nil, newRuleError("there is already a bet; raise instead")
	}

	seat := g.Seats[idx]
	if amount < g.MinBet {
		return nil, newRuleError("bet must be at least %d", g.MinBet)
	}

	if g.MaxBet > 0 && amount > g.MaxBet {
		return nil, newRuleError("bet cannot exceed %d", g.MaxBet)
	}

	if amount > seat.Chips {
		return nil, newRuleError("bet of %d exceeds your stack of %d", amount, seat.Chips)
	}

	g.Pot += seat.commit(amount)
	g.CurrentBet = seat.Bet
	g.LastRaise = amount
	g.LastAggressor = idx
	g.resetActedExcept(idx)

	return g.afterAction(idx, action.Bet, amount)
}

// minRaise is the smallest legal raise increment: the previous bet or raise
// increment on this street, or the big blind before any raise
func (g *Game) minRaise() int {
	if g.LastRaise < g.MinBet {
		return g.MinBet
	}

	return g.LastRaise
}

func (g *Game) raise(idx, amount int) ([]Emitted, error) {
	if g.CurrentBet == 0 {
		return nil, newRuleError("there is no bet to raise; bet instead")
	}

	seat := g.Seats[idx]
	if amount < g.minRaise() {
		return nil, newRuleError("raise must be at least %d", g.minRaise())
	}

	target := g.CurrentBet + amount
	if g.MaxBet > 0 && target > g.MaxBet {
		return nil, newRuleError("bet cannot exceed %d", g.MaxBet)
	}

	// the cap binds: the seat cannot fund the full raise, so the action
	// becomes an all-in
	if target-seat.Bet >= seat.Chips {
		return g.allIn(idx)
	}

	g.Pot += seat.commit(target - seat.Bet)
	g.CurrentBet = seat.Bet
	g.LastRaise = amount
	g.LastAggressor = idx
	g.resetActedExcept(idx)

	return g.afterAction(idx, action.Raise, amount)
}

func (g *Game) allIn(idx int) ([]Emitted, error) {
	seat := g.Seats[idx]
	if seat.Chips == 0 {
		return nil, newRuleError("you have no chips")
	}

	required := g.minRaise()
	previousBet := g.CurrentBet

	paid := seat.commit(seat.Chips)
	g.Pot += paid

	if seat.Bet > previousBet {
		g.CurrentBet = seat.Bet

		// a short all-in below the minimum raise does not re-open the
		// betting to seats that already acted
		if increment := seat.Bet - previousBet; increment >= required {
			g.LastRaise = increment
			g.LastAggressor = idx
			g.resetActedExcept(idx)
		}
	}

	seat.Acted = true
	return g.afterAction(idx, action.AllIn, paid)
}

// resetActedExcept clears the has-acted set down to the aggressor
func (g *Game) resetActedExcept(idx int) {
	for i, seat := range g.Seats {
		seat.Acted = i == idx
	}
}

// afterAction advances the hand after any applied action: it either ends
// the hand, completes the betting round, or passes the turn
func (g *Game) afterAction(idx int, act action.Action, amount int) ([]Emitted, error) {
	events := []Emitted{{
		Kind:   KindActionApplied,
		Seat:   idx,
		Action: act,
		Amount: amount,
		Phase:  g.Phase,
	}}

	if g.countInHand() == 1 {
		more, err := g.endHandSingleWinner(true)
		if err != nil {
			return nil, err
		}

		return append(events, more...), nil
	}

	if g.roundComplete() {
		more, err := g.advancePhase()
		if err != nil {
			return nil, err
		}

		return append(events, more...), nil
	}

	// out-of-turn folds by all-in seats do not move the turn
	if idx == g.CurrentTurn {
		g.CurrentTurn = g.nextSeatFrom(idx, (*Seat).canAct)
	}

	return events, nil
}

// roundComplete reports whether the current betting round is finished:
// every non-folded, non-all-in seat has acted and matched the current bet,
// or at most one such seat remains with nothing left to decide
func (g *Game) roundComplete() bool {
	canAct := 0
	for _, seat := range g.Seats {
		if seat.canAct() {
			canAct++
		}
	}

	if canAct == 0 {
		return true
	}

	for _, seat := range g.Seats {
		if !seat.canAct() {
			continue
		}

		if seat.Bet != g.CurrentBet {
			return false
		}

		if !seat.Acted && canAct > 1 {
			return false
		}
	}

	return true
}

// advancePhase moves to the next street, dealing community cards with a
// burn between streets. If no further decisions are possible it keeps
// dealing until showdown.
func (g *Game) advancePhase() ([]Emitted, error) {
	events := make([]Emitted, 0, 4)

	for {
		if g.Phase == PhaseRiver {
			more, err := g.showdown(true)
			if err != nil {
				return nil, err
			}

			return append(events, more...), nil
		}

		for _, seat := range g.Seats {
			seat.resetForRound()
		}
		g.CurrentBet = 0
		g.LastRaise = 0
		g.LastAggressor = -1

		if err := g.dealStreet(); err != nil {
			return nil, err
		}

		g.Phase = g.Phase.next()
		events = append(events, Emitted{Kind: KindPhaseAdvanced, Seat: -1, Phase: g.Phase})

		if g.roundComplete() {
			// no seat owes action; run out the board
			g.CurrentTurn = -1
			continue
		}

		g.CurrentTurn = g.nextSeatFrom(g.Dealer, (*Seat).canAct)
		return events, nil
	}
}

// dealStreet burns one card and deals the next street's community cards
func (g *Game) dealStreet() error {
	if err := g.Deck.Burn(); err != nil {
		return newInvariantError("deck underflow on burn")
	}
	g.Burned++

	count := 1
	if g.Phase == PhasePreflop {
		count = 3
	}

	for i := 0; i < count; i++ {
		card, err := g.Deck.Draw()
		if err != nil {
			return newInvariantError("deck underflow on community card")
		}

		g.Community = append(g.Community, card)
	}

	return nil
}

// dealRemainingBoard deals out any missing community cards, burning
// between streets, so a forced showdown can be evaluated
func (g *Game) dealRemainingBoard() error {
	for g.Phase.IsBettingRound() && g.Phase != PhaseRiver {
		if err := g.dealStreet(); err != nil {
			return err
		}

		g.Phase = g.Phase.next()
	}

	return nil
}
