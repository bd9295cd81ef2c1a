package holdem

import (
	"errors"
	"fmt"
)

// RuleError is an error caused by a caller violating a precondition.
// The table state is unchanged; the error is surfaced to the caller and is
// not logged as a server fault.
type RuleError string

func (e RuleError) Error() string {
	return string(e)
}

func newRuleError(format string, a ...interface{}) RuleError {
	return RuleError(fmt.Sprintf(format, a...))
}

// common rule errors
var (
	ErrNotYourTurn      = RuleError("it is not your turn")
	ErrWrongPhase       = RuleError("that action is not allowed in the current phase")
	ErrCannotCheck      = RuleError("cannot check when there is a bet to call")
	ErrCannotCall       = RuleError("cannot call without an active bet")
	ErrTableFull        = RuleError("the table is full")
	ErrAlreadySeated    = RuleError("player is already at the table")
	ErrNotEnoughPlayers = RuleError("at least two players with chips are required")
	ErrHandInProgress   = RuleError("a hand is already in progress")
	ErrTableFinished    = RuleError("the table is finished")
)

// IsRuleError returns true if err is a caller mistake rather than a fault
func IsRuleError(err error) bool {
	var re RuleError
	return errors.As(err, &re)
}

// InvariantError is a bug: the table reached a state that must not exist.
// The coordinator quarantines the room and preserves the last good snapshot.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}

func newInvariantError(format string, a ...interface{}) *InvariantError {
	return &InvariantError{Reason: fmt.Sprintf(format, a...)}
}

// IsInvariantError returns true if err indicates corrupted table state
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
