package harness

import "github.com/roach88/plandeck/internal/doc"

// StepRecord is the outcome of one step.
type StepRecord struct {
	Seq     int64
	Op      string
	Outcome string    // OutcomeOK or an error code
	Value   doc.Value // nil when the step yields nothing to record
}

// OutcomeOK marks a step that succeeded.
const OutcomeOK = "ok"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool

	// Steps records every step in order.
	Steps []StepRecord

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string

	// Snapshot is the canonical JSON of the final state, for golden
	// comparison.
	Snapshot []byte
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Steps: []StepRecord{}, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
