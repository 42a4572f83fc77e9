package entity

// ImportStatus is the lifecycle status of a sales import.
// The integer values are stored in the database and must stay stable.
type ImportStatus int

const (
	StatusPending    ImportStatus = 0 // created, waiting for processing
	StatusProcessing ImportStatus = 1 // pipeline started
	StatusCompleted  ImportStatus = 2 // terminal success, revenue set
	StatusFailed     ImportStatus = 3 // terminal failure, reachable from any non-terminal state
)

// String returns the lowercase name used in API responses and logs.
func (s ImportStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s ImportStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Transitions are forward-only: pending → processing → completed, with
// failed reachable from every non-terminal state.
func (s ImportStatus) CanTransition(next ImportStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StatusProcessing:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusProcessing
	case StatusFailed:
		return true
	default:
		return false
	}
}
