package room

import (
	"time"

	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/poker/holdem"
)

// PlayerView is the per-player slice of a room snapshot
type PlayerView struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Chips        int          `json:"chips"`
	Bet          int          `json:"bet"`
	TotalBet     int          `json:"totalBet"`
	Folded       bool         `json:"folded"`
	AllIn        bool         `json:"allIn"`
	Connected    bool         `json:"connected"`
	IsDealer     bool         `json:"isDealer"`
	IsSmallBlind bool         `json:"isSmallBlind"`
	IsBigBlind   bool         `json:"isBigBlind"`
	Hand         []*deck.Card `json:"hand"`
}

// View is the redacted room snapshot pushed to a subscriber
type View struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Creator     string        `json:"creator"`
	Status      holdem.Status `json:"status"`
	Phase       holdem.Phase  `json:"phase"`
	Pot         int           `json:"pot"`
	CurrentBet  int           `json:"currentBet"`
	CurrentTurn string        `json:"currentTurn"`
	Community   []*deck.Card  `json:"community"`
	Players     []*PlayerView `json:"players"`
	MinBet      int           `json:"minBet"`
	MaxBet      int           `json:"maxBet"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// RenderView builds the snapshot visible to the given player. Other seats'
// hole cards are replaced with face-down placeholders unless the hand
// reached showdown with the seat unfolded; the deck remainder is never
// included.
func RenderView(r *Room, playerID string) *View {
	g := r.Game

	currentTurn := ""
	if g.CurrentTurn >= 0 && g.CurrentTurn < len(g.Seats) {
		currentTurn = g.Seats[g.CurrentTurn].PlayerID
	}

	players := make([]*PlayerView, len(g.Seats))
	for i, seat := range g.Seats {
		players[i] = &PlayerView{
			ID:           seat.PlayerID,
			Username:     seat.Username,
			Chips:        seat.Chips,
			Bet:          seat.Bet,
			TotalBet:     seat.TotalBet,
			Folded:       seat.Folded,
			AllIn:        seat.AllIn,
			Connected:    seat.Connected,
			IsDealer:     seat.IsDealer,
			IsSmallBlind: seat.IsSmallBlind,
			IsBigBlind:   seat.IsBigBlind,
			Hand:         visibleHand(g, seat, playerID),
		}
	}

	community := make([]*deck.Card, len(g.Community))
	copy(community, g.Community)

	return &View{
		ID:          r.ID,
		Name:        r.Name,
		Creator:     r.Creator,
		Status:      g.Status,
		Phase:       g.Phase,
		Pot:         g.Pot,
		CurrentBet:  g.CurrentBet,
		CurrentTurn: currentTurn,
		Community:   community,
		Players:     players,
		MinBet:      g.MinBet,
		MaxBet:      g.MaxBet,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// visibleHand applies the hole-card redaction rules
func visibleHand(g *holdem.Game, seat *holdem.Seat, viewerID string) []*deck.Card {
	if len(seat.Cards) == 0 {
		return nil
	}

	show := seat.PlayerID == viewerID ||
		(g.Phase == holdem.PhaseShowdown && !seat.Folded)

	hand := make([]*deck.Card, len(seat.Cards))
	for i, card := range seat.Cards {
		if show {
			c := *card
			hand[i] = &c
		} else {
			// face-down placeholder
			hand[i] = &deck.Card{}
		}
	}

	return hand
}
