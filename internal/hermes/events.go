package hermes

import "time"

type RunStartedEvent struct {
	RunID          string    `json:"run_id"`
	Hierarchy      string    `json:"hierarchy"`
	NrScenarios    int       `json:"nr_scenarios"`
	NrAlternatives int       `json:"nr_alternatives"`
	Timestamp      time.Time `json:"timestamp"`
}

type RunCompletedEvent struct {
	RunID        string            `json:"run_id"`
	Status       string            `json:"status"`
	Stakeholders []string          `json:"stakeholders"`
	Best         map[string][]int  `json:"best,omitempty"` // stakeholder -> top alternative per scenario
	Failures     int               `json:"failures"`
	DurationMs   int64             `json:"duration_ms"`
	Outputs      map[string]string `json:"outputs,omitempty"`
}

// RunFailureEvent reports one isolated failure; the run continues.
type RunFailureEvent struct {
	RunID       string `json:"run_id"`
	Stakeholder string `json:"stakeholder,omitempty"`
	Scenario    int    `json:"scenario,omitempty"`
	Error       string `json:"error"`
}

type RunRequestEvent struct {
	Reason string `json:"reason,omitempty"`
}
