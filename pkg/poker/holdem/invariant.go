package holdem

// checkInvariants verifies the table state after an applied event.
// A failure here is a bug, not a caller mistake; the coordinator must not
// persist the resulting state.
func (g *Game) checkInvariants() error {
	for i, seat := range g.Seats {
		if seat.Chips < 0 {
			return newInvariantError("seat %d has negative chips", i)
		}

		if seat.Bet < 0 || seat.TotalBet < 0 || seat.Bet > seat.TotalBet {
			return newInvariantError("seat %d has inconsistent bets (%d round, %d total)", i, seat.Bet, seat.TotalBet)
		}
	}

	switch len(g.Community) {
	case 0, 3, 4, 5:
	default:
		return newInvariantError("%d community cards", len(g.Community))
	}

	if g.CurrentTurn >= len(g.Seats) {
		return newInvariantError("turn points past the seat list")
	}

	if !g.Phase.IsBettingRound() {
		return nil
	}

	// the remaining checks only hold while a hand is being played

	totalCommitted := 0
	holeCards := 0
	for i, seat := range g.Seats {
		totalCommitted += seat.TotalBet

		if seat.Chips+seat.TotalBet != seat.StartChips {
			return newInvariantError("seat %d chips do not reconcile with hand start", i)
		}

		holeCards += len(seat.Cards)
	}

	if g.Pot != totalCommitted {
		return newInvariantError("pot %d != committed total %d", g.Pot, totalCommitted)
	}

	if g.CurrentTurn >= 0 {
		seat := g.Seats[g.CurrentTurn]
		if seat.Folded || seat.AllIn {
			return newInvariantError("turn points at a seat that cannot act")
		}
	}

	if g.Deck != nil {
		if total := holeCards + len(g.Community) + g.Deck.Remaining() + g.Burned; total != 52 {
			return newInvariantError("card census %d != 52", total)
		}
	}

	return nil
}
