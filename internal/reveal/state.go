package reveal

// State is the controller's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateShuffling State = "shuffling"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// CanTransitionTo reports whether the controller may move from s to target.
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateIdle:
		return target == StateShuffling
	case StateShuffling:
		return target == StateIdle
	default:
		return false
	}
}
