package session

import "fmt"

// DataUnavailableError indicates no state records exist even after a bulk
// import attempt. Quiz functionality is blocked until data is provided.
type DataUnavailableError struct {
	Source string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no state data available after import from %s", e.Source)
}

// PhaseError indicates an operation was invoked in a phase that does not
// allow it.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: not allowed while %s", e.Op, e.Phase)
}
