package deck

import (
	"errors"

	"pokerroom-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck represents the shuffled 52-card sequence for a single hand
type Deck struct {
	Cards []*Card `json:"cards"`
}

// New returns a new, shuffled deck of cards.
// The shuffle is a Fisher-Yates driven by the provided generator, so a
// seeded generator yields a deterministic deal order.
func New(r rng.Generator) *Deck {
	d := &Deck{Cards: buildCards()}
	d.shuffle(r)
	return d
}

func buildCards() []*Card {
	cards := make([]*Card, 0, 52)
	for _, suit := range Suits {
		for rank := 2; rank <= Ace; rank++ {
			cards = append(cards, &Card{
				Rank: rank,
				Suit: suit,
			})
		}
	}

	return cards
}

func (d *Deck) shuffle(r rng.Generator) {
	for j := len(d.Cards) - 1; j > 0; j-- {
		i := r.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw will draw the next card
// If there are no more cards, an ErrEndOfDeck is returned along with a nil card.
func (d *Deck) Draw() (*Card, error) {
	if len(d.Cards) == 0 {
		return nil, ErrEndOfDeck
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]

	return card, nil
}

// Burn discards the top card face-down
func (d *Deck) Burn() error {
	if _, err := d.Draw(); err != nil {
		return err
	}

	return nil
}

// Remaining returns how many cards are left in the deck
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}
