package slotline

import "github.com/pkg/errors"

// SlotAction is the closed set of moves a bound vehicle can be ordered to make. The
// integer values double as the wire format of the action space exposed to the
// environment wrapper.
type SlotAction uint8

const (
	ACTION_STAY = SlotAction(iota)
	ACTION_ADVANCE
	ACTION_RETREAT
	ACTION_CHANGE_LEFT
	ACTION_CHANGE_RIGHT
)

func (action SlotAction) String() string {
	return [...]string{"stay", "advance", "retreat", "change_left", "change_right"}[action]
}

// SlotActionFromID converts a wire action id into a SlotAction. Ids outside 0-4 are
// rejected here so the state machine itself only ever sees valid actions.
func SlotActionFromID(id int) (SlotAction, error) {
	if id < int(ACTION_STAY) || id > int(ACTION_CHANGE_RIGHT) {
		return ACTION_STAY, errors.Errorf("unrecognized slot action id %d", id)
	}
	return SlotAction(id), nil
}
