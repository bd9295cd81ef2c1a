package holdem

import (
	"sort"

	"pokerroom-server/pkg/poker/handrank"
)

// sidePots splits the pot by distinct committed levels. Folded seats'
// contributions stay in but confer no eligibility; anything a folded seat
// committed beyond the deepest live stack folds into the last pot.
func (g *Game) sidePots() []SidePot {
	levels := make([]int, 0, len(g.Seats))
	seen := make(map[int]bool)
	for _, seat := range g.Seats {
		if seat.inHand() && seat.TotalBet > 0 && !seen[seat.TotalBet] {
			seen[seat.TotalBet] = true
			levels = append(levels, seat.TotalBet)
		}
	}
	sort.Ints(levels)

	if len(levels) == 0 {
		return nil
	}

	pots := make([]SidePot, 0, len(levels))
	prev := 0
	for _, level := range levels {
		pot := SidePot{}
		for i, seat := range g.Seats {
			contribution := min(seat.TotalBet, level) - min(seat.TotalBet, prev)
			pot.Amount += contribution

			if seat.inHand() && seat.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, i)
			}
		}

		pots = append(pots, pot)
		prev = level
	}

	// folded contributions above the deepest live commitment
	for _, seat := range g.Seats {
		if seat.TotalBet > prev {
			pots[len(pots)-1].Amount += seat.TotalBet - prev
		}
	}

	return pots
}

// showdown evaluates every eligible seat against the full board, awards
// each pot to its best hand(s), and settles the hand
func (g *Game) showdown(continueAfter bool) ([]Emitted, error) {
	if len(g.Community) != 5 {
		return nil, newInvariantError("showdown with %d community cards", len(g.Community))
	}

	g.Phase = PhaseShowdown
	g.CurrentTurn = -1

	scores := make(map[int]handrank.Result, len(g.Seats))
	for i, seat := range g.Seats {
		if seat.inHand() {
			scores[i] = handrank.Evaluate(seat.Cards, g.Community)
		}
	}

	pots := g.sidePots()
	results := make([]PotResult, 0, len(pots))
	payouts := make(map[int]int)

	for _, pot := range pots {
		best := -1
		winners := make([]int, 0, 1)
		for _, idx := range pot.Eligible {
			switch s := scores[idx].Score; {
			case s > best:
				best = s
				winners = winners[:0]
				winners = append(winners, idx)
			case s == best:
				winners = append(winners, idx)
			}
		}

		g.payPot(pot.Amount, winners, payouts)
		results = append(results, PotResult{SidePot: pot, Winners: winners})
	}

	events := []Emitted{
		{Kind: KindShowdown, Seat: -1, Phase: PhaseShowdown, Pots: results, Payouts: payouts},
		{Kind: KindHandEnded, Seat: -1, Payouts: payouts},
	}

	more := g.concludeHand(continueAfter, false)
	return append(events, more...), nil
}

// payPot splits an award among the winning seats. Any chips that do not
// divide evenly go one at a time to the winners closest clockwise from
// the dealer.
func (g *Game) payPot(amount int, winners []int, payouts map[int]int) {
	if len(winners) == 0 {
		return
	}

	byPosition := make([]int, len(winners))
	copy(byPosition, winners)
	sort.Slice(byPosition, func(i, j int) bool {
		return g.clockwiseFromDealer(byPosition[i]) < g.clockwiseFromDealer(byPosition[j])
	})

	share := amount / len(winners)
	odd := amount % len(winners)

	for i, idx := range byPosition {
		won := share
		if i < odd {
			won++
		}

		g.Seats[idx].Chips += won
		payouts[idx] += won
	}
}

// clockwiseFromDealer orders seats by distance left of the dealer
func (g *Game) clockwiseFromDealer(idx int) int {
	n := len(g.Seats)
	return ((idx-g.Dealer-1)%n + n) % n
}

// endHandSingleWinner awards the whole pot to the only seat left in the
// hand. No cards are revealed.
func (g *Game) endHandSingleWinner(continueAfter bool) ([]Emitted, error) {
	winner := -1
	for i, seat := range g.Seats {
		if seat.inHand() {
			winner = i
			break
		}
	}

	if winner < 0 {
		return nil, newInvariantError("no seats left in hand")
	}

	payouts := map[int]int{winner: g.Pot}
	g.Seats[winner].Chips += g.Pot

	events := []Emitted{{Kind: KindHandEnded, Seat: winner, Payouts: payouts}}

	more := g.concludeHand(continueAfter, true)
	return append(events, more...), nil
}

// concludeHand settles the between-hands state: betting fields reset, the
// dealer cursor rotates to the next funded seat, and the table either
// waits for another hand or finishes. After a showdown the hole cards stay
// visible until the next deal; a single-winner end hides them.
func (g *Game) concludeHand(continueAfter, hideCards bool) []Emitted {
	for _, seat := range g.Seats {
		seat.Bet = 0
		seat.TotalBet = 0
		seat.StartChips = 0
		seat.Acted = false

		if hideCards {
			seat.resetForHand()
		}
	}

	if hideCards {
		g.Phase = PhaseIdle
	}

	g.Pot = 0
	g.CurrentBet = 0
	g.LastRaise = 0
	g.CurrentTurn = -1
	g.LastAggressor = -1
	g.Deck = nil
	g.Burned = 0

	if hideCards {
		g.Community = nil
	}

	g.Dealer = g.nextSeatFrom(g.Dealer, func(s *Seat) bool { return s.Chips > 0 })

	if !continueAfter {
		return nil
	}

	if g.chippedCount() >= 2 {
		g.Status = StatusWaiting
		return []Emitted{{Kind: KindWaitingForPlayers, Seat: -1}}
	}

	g.Status = StatusFinished
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}
