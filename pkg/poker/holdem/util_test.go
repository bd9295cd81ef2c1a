package holdem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"pokerroom-server/internal/rng"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/poker/action"
)

// riggedDeck builds a full 52-card deck that deals the named cards first
func riggedDeck(t *testing.T, first string) *deck.Deck {
	t.Helper()

	cards := deck.CardsFromString(first)
	used := make(map[string]bool, len(cards))
	for _, c := range cards {
		key := deck.CardToString(c)
		require.False(t, used[key], "rigged deck repeats %s", key)
		used[key] = true
	}

	for _, c := range deck.New(rng.NewSeeded(0)).Cards {
		if !used[deck.CardToString(c)] {
			cards = append(cards, c)
		}
	}

	require.Len(t, cards, 52)
	return &deck.Deck{Cards: cards}
}

// table creates a waiting game with the named players seated
func table(t *testing.T, minBet int, chips ...int) *Game {
	t.Helper()

	g := NewGame(10, minBet, 0)
	for i, c := range chips {
		next, _, err := g.Apply(SeatJoin{
			PlayerID: playerID(i),
			Username: playerID(i),
			Chips:    c,
		})
		require.NoError(t, err)
		g = next
	}

	return g
}

func playerID(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

// act applies a player action and requires success
func act(t *testing.T, g *Game, seat int, a action.Action, amount ...int) (*Game, []Emitted) {
	t.Helper()

	amt := 0
	if len(amount) > 0 {
		amt = amount[0]
	}

	next, events, err := g.Apply(PlayerAction{Seat: seat, Action: a, Amount: amt})
	require.NoError(t, err)
	return next, events
}

// assertCards compares cards against their canonical comma-separated form
func assertCards(t *testing.T, expected string, cards []*deck.Card) {
	t.Helper()
	require.Equal(t, deck.CardsToString(deck.CardsFromString(expected)), deck.CardsToString(cards))
}

// kinds extracts the event kinds in order
func kinds(events []Emitted) []Kind {
	out := make([]Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}

	return out
}
