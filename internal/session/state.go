package session

// State is a stage of the load chain. States only move forward, except that
// any stage may fail.
type State int

const (
	StateIdle State = iota
	StateAuthChecked
	StateProfileLoaded
	StateCurriculumLoaded
	StateScheduleLoaded
	StateReady
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateAuthChecked:      "auth-checked",
	StateProfileLoaded:    "profile-loaded",
	StateCurriculumLoaded: "curriculum-loaded",
	StateScheduleLoaded:   "schedule-loaded",
	StateReady:            "ready",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// canAdvance reports whether to is a legal successor of from.
func canAdvance(from, to State) bool {
	if to == StateFailed {
		return from != StateReady && from != StateFailed
	}
	return to == from+1 && to <= StateReady
}
