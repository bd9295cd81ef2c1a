package room

import "pokerroom-server/pkg/poker/holdem"

// caller mistakes surfaced with the same error kind as the state machine's
// rule errors so the HTTP layer maps them uniformly
var (
	ErrRoomNotFound  = holdem.RuleError("room not found")
	ErrNotCreator    = holdem.RuleError("only the room's creator can do that")
	ErrNotInRoom     = holdem.RuleError("player is not in the room")
	ErrRoomDegraded  = holdem.RuleError("the room is temporarily unavailable")
	ErrRoomCorrupted = holdem.RuleError("the room has been quarantined")
	ErrRoomClosed    = holdem.RuleError("the room is closed")
)
