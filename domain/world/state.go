package world

// ActionState is the lifecycle tag for an action node. Exactly four states
// exist; Success and Failure are terminal. Cancelled is a request to the
// action's own logic to wind down, not an immediate stop: the driving logic
// observes Cancelled and must itself transition to Success or Failure once
// cleanup is complete.
type ActionState uint8

const (
	// Executing is the initial state: the action has ongoing execution and
	// keeps running as-is until it resolves or is cancelled.
	Executing ActionState = iota

	// Cancelled asks the action to wind down. Long-running actions must
	// check for it and resolve to Success or Failure on their own schedule;
	// owners wait on Cancelled actions before tearing them down.
	Cancelled

	// Success is terminal. Composite actions use it to decide whether to
	// continue.
	Success

	// Failure is terminal. Composite actions use it to decide whether to
	// halt.
	Failure
)

// IsTerminal returns true for Success and Failure.
func (s ActionState) IsTerminal() bool {
	return s == Success || s == Failure
}

// IsSuccess returns true for Success.
func (s ActionState) IsSuccess() bool {
	return s == Success
}

// IsFailure returns true for Failure.
func (s ActionState) IsFailure() bool {
	return s == Failure
}

// String returns the string representation of the state.
func (s ActionState) String() string {
	switch s {
	case Executing:
		return "executing"
	case Cancelled:
		return "cancelled"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}
