package agent

import "fmt"

// RejectedError is returned when a guard refuses the input.
type RejectedError struct {
	Agent  string
	Guard  string
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("agent %s: input rejected by %s", e.Agent, e.Guard)
	}
	return fmt.Sprintf("agent %s: input rejected by %s: %s", e.Agent, e.Guard, e.Reason)
}
