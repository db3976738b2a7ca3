// internal/dating/lifecycle.go
// Relationship state machine. The transition table below is the single
// source of truth for which moves are legal.

package dating

import "errors"

var ErrInvalidTransition = errors.New("invalid relationship transition")

// State is the lifecycle state of a match
type State string

const (
	StateActive       State = "ACTIVE"
	StateFriends      State = "FRIENDS"
	StateUnmatched    State = "UNMATCHED"
	StateGracefulExit State = "GRACEFUL_EXIT"
	StateBlocked      State = "BLOCKED"
)

// Event is a lifecycle transition request
type Event string

const (
	EventMoveToFriends Event = "MOVE_TO_FRIENDS"
	EventUnmatch       Event = "UNMATCH"
	EventGracefulExit  Event = "GRACEFUL_EXIT"
	EventBlock         Event = "BLOCK"
)

var transitions = map[State]map[Event]State{
	StateActive: {
		EventMoveToFriends: StateFriends,
		EventUnmatch:       StateUnmatched,
		EventGracefulExit:  StateGracefulExit,
		EventBlock:         StateBlocked,
	},
	StateFriends: {
		EventUnmatch:      StateUnmatched,
		EventGracefulExit: StateGracefulExit,
		EventBlock:        StateBlocked,
	},
	// Terminal states absorb everything except BLOCK, handled below
	StateUnmatched:    {},
	StateGracefulExit: {},
	StateBlocked:      {},
}

// Transition resolves an event against the current state. BLOCK is the
// defensive override: legal from every state, including terminals, and a
// no-op on an already blocked match.
func Transition(current State, event Event) (State, error) {
	if event == EventBlock {
		return StateBlocked, nil
	}

	legal, ok := transitions[current]
	if !ok {
		return "", ErrInvalidTransition
	}
	next, ok := legal[event]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// IsTerminal reports whether the state absorbs further events
func IsTerminal(s State) bool {
	return s == StateUnmatched || s == StateGracefulExit || s == StateBlocked
}

// CanMessage reports whether the pair may exchange messages
func CanMessage(s State) bool {
	return s == StateActive || s == StateFriends
}

// ValidState reports whether s is a known lifecycle state
func ValidState(s State) bool {
	_, ok := transitions[s]
	return ok
}
