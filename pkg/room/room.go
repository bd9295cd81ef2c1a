// Package room coordinates access to poker tables: every mutation of a room
// flows through its coordinator's run loop, which persists a snapshot and
// fans redacted state out to subscribers after each applied event.
package room

import (
	"encoding/json"
	"time"

	"pokerroom-server/pkg/poker/holdem"
)

// KeyPrefix namespaces room snapshots in the store
const KeyPrefix = "room:"

// Room is the persisted container for one table
type Room struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Creator   string       `json:"creator"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Game      *holdem.Game `json:"game"`
}

// Key returns the room's snapshot store key
func (r *Room) Key() string {
	return KeyPrefix + r.ID
}

// MarshalSnapshot encodes the room for the snapshot store
func (r *Room) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalSnapshot decodes a room from the snapshot store
func UnmarshalSnapshot(b []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// Summary is a lobby listing entry
type Summary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Creator        string    `json:"creator"`
	CurrentPlayers int       `json:"currentPlayers"`
	SeatLimit      int       `json:"seatLimit"`
	MinBet         int       `json:"minBet"`
	MaxBet         int       `json:"maxBet"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summarize produces the lobby listing entry for the room
func (r *Room) Summarize() Summary {
	return Summary{
		ID:             r.ID,
		Name:           r.Name,
		Creator:        r.Creator,
		CurrentPlayers: len(r.Game.Seats),
		SeatLimit:      r.Game.SeatLimit,
		MinBet:         r.Game.MinBet,
		MaxBet:         r.Game.MaxBet,
		CreatedAt:      r.CreatedAt,
	}
}

// HasOpenSeats returns true if the room accepts more players
func (r *Room) HasOpenSeats() bool {
	return len(r.Game.Seats) < r.Game.SeatLimit
}
