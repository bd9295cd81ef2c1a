package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerroom-server/pkg/poker/action"
)

func TestGame_sidePots(t *testing.T) {
	g := NewGame(10, 10, 0)
	g.Seats = []*Seat{
		{PlayerID: "p1", TotalBet: 50},
		{PlayerID: "p2", TotalBet: 110},
		{PlayerID: "p3", TotalBet: 110},
	}

	pots := g.sidePots()
	require.Len(t, pots, 2)

	assert.Equal(t, 150, pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	assert.Equal(t, 120, pots[1].Amount)
	assert.Equal(t, []int{1, 2}, pots[1].Eligible)
}

func TestGame_sidePots_foldedMoneyStaysIn(t *testing.T) {
	g := NewGame(10, 10, 0)
	g.Seats = []*Seat{
		{PlayerID: "p1", TotalBet: 30, Folded: true},
		{PlayerID: "p2", TotalBet: 100},
		{PlayerID: "p3", TotalBet: 100},
	}

	pots := g.sidePots()
	require.Len(t, pots, 1)
	assert.Equal(t, 230, pots[0].Amount)
	assert.Equal(t, []int{1, 2}, pots[0].Eligible)
}

func TestGame_sidePots_foldedAboveDeepestLiveStack(t *testing.T) {
	g := NewGame(10, 10, 0)
	g.Seats = []*Seat{
		{PlayerID: "p1", TotalBet: 200, Folded: true},
		{PlayerID: "p2", TotalBet: 60},
		{PlayerID: "p3", TotalBet: 120},
	}

	pots := g.sidePots()
	require.Len(t, pots, 2)

	// 60 x 3 in the main pot
	assert.Equal(t, 180, pots[0].Amount)
	assert.Equal(t, []int{1, 2}, pots[0].Eligible)

	// 60 each from p1 and p3, plus the folded seat's overage of 80
	assert.Equal(t, 60+60+80, pots[1].Amount)
	assert.Equal(t, []int{2}, pots[1].Eligible)

	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	assert.Equal(t, 380, total)
}

func TestGame_sidePots_eligibilityIsMonotone(t *testing.T) {
	g := NewGame(10, 10, 0)
	g.Seats = []*Seat{
		{PlayerID: "p1", TotalBet: 25},
		{PlayerID: "p2", TotalBet: 75},
		{PlayerID: "p3", TotalBet: 150},
		{PlayerID: "p4", TotalBet: 150},
	}

	pots := g.sidePots()
	require.Len(t, pots, 3)

	for i := 1; i < len(pots); i++ {
		for _, seat := range pots[i].Eligible {
			assert.Contains(t, pots[i-1].Eligible, seat, "eligibility for pot %d must imply pot %d", i, i-1)
		}
	}
}

func TestGame_payPot_oddChipGoesLeftOfDealer(t *testing.T) {
	g := NewGame(10, 10, 0)
	g.Seats = []*Seat{
		{PlayerID: "p1"},
		{PlayerID: "p2"},
		{PlayerID: "p3"},
	}
	g.Dealer = 2

	payouts := make(map[int]int)
	g.payPot(101, []int{0, 1}, payouts)

	// seat 0 is closest clockwise from the dealer
	assert.Equal(t, 51, payouts[0])
	assert.Equal(t, 50, payouts[1])
	assert.Equal(t, 51, g.Seats[0].Chips)
	assert.Equal(t, 50, g.Seats[1].Chips)
}

func TestGame_bothAllInPreflopRunsOutBoard(t *testing.T) {
	g := startedHand(t, 10, 500, 500)

	g, _ = act(t, g, 0, action.AllIn)
	g, events := act(t, g, 1, action.AllIn)

	// the board is dealt street by street with burns, then showdown
	require.GreaterOrEqual(t, len(events), 6)
	assert.Equal(t, []Kind{
		KindActionApplied,
		KindPhaseAdvanced,
		KindPhaseAdvanced,
		KindPhaseAdvanced,
		KindShowdown,
		KindHandEnded,
	}, kinds(events)[:6])

	assert.Equal(t, PhaseShowdown, g.Phase)
	assert.Len(t, g.Community, 5)

	// one winner holds all the chips, or a split put both back to even
	total := g.Seats[0].Chips + g.Seats[1].Chips
	assert.Equal(t, 1000, total)
	assert.Equal(t, 0, g.Pot)
}

func TestGame_showdownChipConservation(t *testing.T) {
	g := startedHand(t, 10, 300, 300, 300)

	g, _ = act(t, g, 0, action.AllIn)
	g, _ = act(t, g, 1, action.AllIn)
	g, _ = act(t, g, 2, action.AllIn)

	total := 0
	for _, seat := range g.Seats {
		total += seat.Chips
		assert.GreaterOrEqual(t, seat.Chips, 0)
	}

	assert.Equal(t, 900, total)
	assert.Equal(t, 0, g.Pot)
	assert.Equal(t, PhaseShowdown, g.Phase)
}

func TestGame_forceEnd_singleSeat(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)
	g, _ = act(t, g, 0, action.Fold)
	g, _ = act(t, g, 1, action.Fold)

	// the hand already ended; force end just finishes the table
	g, events, err := g.Apply(ForceEnd{})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, StatusFinished, g.Status)
}

func TestGame_forceEnd_midHandRunsShowdown(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)
	g, _ = act(t, g, 0, action.Call)

	g, events, err := g.Apply(ForceEnd{})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindShowdown, KindHandEnded}, kinds(events))
	assert.Equal(t, StatusFinished, g.Status)
	assert.Len(t, g.Community, 5)

	// the pot was distributed
	total := 0
	for _, seat := range g.Seats {
		total += seat.Chips
	}
	assert.Equal(t, 3000, total)

	_, _, err = g.Apply(ForceEnd{})
	assert.Equal(t, ErrTableFinished, err)
}

func TestGame_forceEnd_afterOneFoldRunsShowdown(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)
	g, _ = act(t, g, 0, action.Fold)

	g, events, err := g.Apply(ForceEnd{})
	require.NoError(t, err)

	// two seats remain; board runs out and the better hand takes the pot
	assert.Equal(t, []Kind{KindShowdown, KindHandEnded}, kinds(events))
	assert.Equal(t, StatusFinished, g.Status)
}
