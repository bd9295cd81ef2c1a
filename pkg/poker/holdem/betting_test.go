package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/poker/action"
)

func startedHand(t *testing.T, minBet int, chips ...int) *Game {
	t.Helper()

	g := table(t, minBet, chips...)
	g, _, err := g.Apply(StartHand{Deck: deck.New(rng.NewSeeded(1))})
	require.NoError(t, err)
	return g
}

func TestGame_actionLegality(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)

	// dealer (seat 0) is first to act
	_, _, err := g.Apply(PlayerAction{Seat: 1, Action: action.Call})
	assert.Equal(t, ErrNotYourTurn, err)

	// cannot check facing the big blind
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: action.Check})
	assert.Equal(t, ErrCannotCheck, err)

	// cannot bet while a bet is live
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: action.Bet, Amount: 50})
	assert.True(t, IsRuleError(err))

	// unknown action
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: "discard"})
	assert.True(t, IsRuleError(err))

	// all errors leave the turn in place
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: action.Raise, Amount: 5})
	assert.EqualError(t, err, "raise must be at least 10")
	assert.Equal(t, 0, g.CurrentTurn)
}

func TestGame_checkCall(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)

	g, events := act(t, g, 0, action.Call)
	assert.Equal(t, []Kind{KindActionApplied}, kinds(events))
	assert.Equal(t, 10, events[0].Amount)
	assert.Equal(t, 25, g.Pot)
	assert.Equal(t, 1, g.CurrentTurn)

	g, _ = act(t, g, 1, action.Call)
	assert.Equal(t, 30, g.Pot)

	// big blind has the option and closes the round with a check
	g, events = act(t, g, 2, action.Check)
	assert.Equal(t, []Kind{KindActionApplied, KindPhaseAdvanced}, kinds(events))
	assert.Equal(t, PhaseFlop, g.Phase)
	assert.Len(t, g.Community, 3)

	// committed amounts reset between streets; the pot does not
	assert.Equal(t, 30, g.Pot)
	assert.Equal(t, 0, g.CurrentBet)
	for _, seat := range g.Seats {
		assert.Equal(t, 0, seat.Bet)
	}

	// first to act after the flop is left of the dealer
	assert.Equal(t, 1, g.CurrentTurn)

	// cannot call without a live bet
	_, _, err := g.Apply(PlayerAction{Seat: 1, Action: action.Call})
	assert.Equal(t, ErrCannotCall, err)
}

func TestGame_betAndRaiseDiscipline(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)

	// flop: seat 1 first to act
	_, _, err := g.Apply(PlayerAction{Seat: 1, Action: action.Bet, Amount: 5})
	assert.EqualError(t, err, "bet must be at least 10")

	_, _, err = g.Apply(PlayerAction{Seat: 1, Action: action.Bet, Amount: 1500})
	assert.EqualError(t, err, "bet of 1500 exceeds your stack of 990")

	_, _, err = g.Apply(PlayerAction{Seat: 1, Action: action.Raise, Amount: 20})
	assert.EqualError(t, err, "there is no bet to raise; bet instead")

	g, _ = act(t, g, 1, action.Bet, 20)
	assert.Equal(t, 20, g.CurrentBet)
	assert.Equal(t, 1, g.LastAggressor)
	assert.Equal(t, 50, g.Pot)

	// a raise must be at least the previous bet
	_, _, err = g.Apply(PlayerAction{Seat: 2, Action: action.Raise, Amount: 15})
	assert.EqualError(t, err, "raise must be at least 20")

	g, _ = act(t, g, 2, action.Raise, 30)
	assert.Equal(t, 50, g.CurrentBet)
	assert.Equal(t, 2, g.LastAggressor)
	assert.Equal(t, 100, g.Pot)

	// the next raise must be at least the previous increment
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: action.Raise, Amount: 25})
	assert.EqualError(t, err, "raise must be at least 30")

	// the aggressor owes nothing once action returns with only calls behind
	g, _ = act(t, g, 0, action.Call)
	g, events := act(t, g, 1, action.Call)
	assert.Equal(t, []Kind{KindActionApplied, KindPhaseAdvanced}, kinds(events))
	assert.Equal(t, PhaseTurn, g.Phase)
}

func TestGame_raiseReopensAction(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)

	// big blind raises; the callers owe action again
	g, _ = act(t, g, 2, action.Raise, 40)
	assert.Equal(t, 50, g.CurrentBet)
	assert.Equal(t, 0, g.CurrentTurn)

	g, _ = act(t, g, 0, action.Call)
	g, events := act(t, g, 1, action.Call)
	assert.Equal(t, []Kind{KindActionApplied, KindPhaseAdvanced}, kinds(events))
	assert.Equal(t, PhaseFlop, g.Phase)
	assert.Equal(t, 150, g.Pot)
}

func TestGame_foldMonotonicity(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)

	g, _ = act(t, g, 0, action.Fold)
	committed := g.Seats[0].TotalBet
	assert.Equal(t, 0, committed)
	assert.True(t, g.Seats[0].Folded)

	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)
	g, _ = act(t, g, 1, action.Bet, 50)
	g, _ = act(t, g, 2, action.Call)

	// the folded seat never puts in another chip
	assert.Equal(t, committed, g.Seats[0].TotalBet)
}

func TestGame_allInForLessIsACall(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 30)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)

	// flop: seat 1 bets 100, the short big blind can only get in 20 more
	g, _ = act(t, g, 1, action.Bet, 100)

	g, events := act(t, g, 2, action.AllIn)
	assert.Equal(t, 20, events[0].Amount)
	assert.True(t, g.Seats[2].AllIn)
	assert.Equal(t, 0, g.Seats[2].Chips)

	// a call for less does not move the current bet or re-open action
	assert.Equal(t, 100, g.CurrentBet)
	assert.Equal(t, 1, g.LastAggressor)
	assert.Equal(t, 0, g.CurrentTurn)
}

func TestGame_shortAllInRaiseDoesNotReopen(t *testing.T) {
	g := startedHand(t, 10, 1000, 150, 1000)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)

	// flop: seat 1 checks, seat 2 bets 100, seat 0 calls
	g, _ = act(t, g, 1, action.Check)
	g, _ = act(t, g, 2, action.Bet, 100)
	g, _ = act(t, g, 0, action.Call)

	// seat 1 shoves 140: only 40 above the bet, less than the 100 minimum
	g, _ = act(t, g, 1, action.AllIn)
	assert.Equal(t, 140, g.CurrentBet)
	assert.True(t, g.Seats[1].AllIn)

	// no re-open: the original aggressor stands and acted flags survive
	assert.Equal(t, 2, g.LastAggressor)
	assert.True(t, g.Seats[0].Acted)
	assert.True(t, g.Seats[2].Acted)

	// seats 2 and 0 only owe the difference
	g, _ = act(t, g, 2, action.Call)
	g, events := act(t, g, 0, action.Call)
	assert.Equal(t, []Kind{KindActionApplied, KindPhaseAdvanced}, kinds(events))
	assert.Equal(t, PhaseTurn, g.Phase)
}

func TestGame_fullAllInRaiseReopens(t *testing.T) {
	g := startedHand(t, 10, 1000, 500, 1000)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)

	g, _ = act(t, g, 1, action.Check)
	g, _ = act(t, g, 2, action.Bet, 100)
	g, _ = act(t, g, 0, action.Call)

	// seat 1 shoves 490, a full raise of 390
	g, _ = act(t, g, 1, action.AllIn)
	assert.Equal(t, 490, g.CurrentBet)
	assert.Equal(t, 1, g.LastAggressor)
	assert.Equal(t, 390, g.LastRaise)

	// action is re-opened for the other seats
	assert.False(t, g.Seats[0].Acted)
	assert.False(t, g.Seats[2].Acted)
}

func TestGame_raiseCappedByStackBecomesAllIn(t *testing.T) {
	g := startedHand(t, 10, 1000, 120, 1000)
	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Call)
	g, _ = act(t, g, 2, action.Check)

	g, _ = act(t, g, 1, action.Check)
	g, _ = act(t, g, 2, action.Bet, 100)
	g, _ = act(t, g, 0, action.Call)

	// seat 1 raises 100 but holds only 110: the cap binds, it is an all-in
	g, events := act(t, g, 1, action.Raise, 100)
	assert.Equal(t, action.AllIn, events[0].Action)
	assert.True(t, g.Seats[1].AllIn)
	assert.Equal(t, 110, g.Seats[1].Bet)
	assert.Equal(t, 110, g.CurrentBet)
}

func TestGame_timeoutFoldsOnTurn(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)

	g, events, err := g.Apply(Timeout{Seat: 0})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindActionApplied}, kinds(events))
	assert.Equal(t, action.Fold, events[0].Action)
	assert.True(t, g.Seats[0].Folded)
	assert.Equal(t, 1, g.CurrentTurn)
}

func TestGame_lateTimeoutIsANoOp(t *testing.T) {
	g := startedHand(t, 10, 1000, 1000, 1000)

	// seat 1 is not on the clock
	next, events, err := g.Apply(Timeout{Seat: 1})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, g, next)

	// a timeout races the action it was guarding against
	g, _ = act(t, g, 0, action.Fold)
	next, events, err = g.Apply(Timeout{Seat: 0})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, g, next)
}

func TestGame_maxBetCapsAction(t *testing.T) {
	g := table(t, 10, 1000, 1000)
	g.MaxBet = 50

	g, _, err := g.Apply(StartHand{Deck: deck.New(rng.NewSeeded(1))})
	require.NoError(t, err)

	g, _ = act(t, g, 0, action.Call)
	g, _ = act(t, g, 1, action.Check)

	_, _, err = g.Apply(PlayerAction{Seat: 1, Action: action.Bet, Amount: 60})
	assert.EqualError(t, err, "bet cannot exceed 50")

	g, _ = act(t, g, 1, action.Bet, 30)
	_, _, err = g.Apply(PlayerAction{Seat: 0, Action: action.Raise, Amount: 30})
	assert.EqualError(t, err, "bet cannot exceed 50")
}
