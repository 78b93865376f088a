// Package core contains the business logic of the lifecycle automation
// engine: the work item and group state machines, the numbering allocator,
// the status directory layout, and configuration.
package core

import "fmt"

// ValidationError reports that a precondition for the requested operation
// was not met: wrong current status, missing required reason, missing
// required document section, or an unknown ID. It is raised before any
// side effect and is recoverable by correcting the input; the engine never
// retries it.
type ValidationError struct {
	Op     string // attempted operation, e.g. "complete-work-item"
	Reason string // the unmet precondition
	Remedy string // exact remedial subcommand to run next, when one exists
}

func (e *ValidationError) Error() string {
	msg := e.Reason
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Remedy != "" {
		msg += fmt.Sprintf(" (run `%s` first)", e.Remedy)
	}
	return msg
}

func validationErr(op, remedy, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...), Remedy: remedy}
}
