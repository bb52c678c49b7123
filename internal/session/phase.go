package session

// Phase is the controller's position in the quiz lifecycle.
type Phase int

const (
	PhaseUninitialized Phase = iota // No reference data loaded
	PhaseLoading                    // Reference data fetch in flight
	PhaseReady                      // Reference data loaded, no active quiz
	PhaseInProgress                 // Quiz created, selections being recorded
	PhaseCompleted                  // Quiz finalized and persisted
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
