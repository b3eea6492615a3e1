package workflow

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

type StepState int

const (
	StepPending StepState = iota
	StepSucceeded
	StepFailed
)

func (s StepState) String() string {
	switch s {
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return "pending"
	}
}

type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	// OutcomeNothingToCommit is a successful early finish of the push workflow.
	OutcomeNothingToCommit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeNothingToCommit:
		return "nothing to commit"
	default:
		return "running"
	}
}

type StepResult struct {
	Name  string
	State StepState
	Err   error
}

// Report records how far a workflow got. Steps after a failure stay pending.
type Report struct {
	Steps   []StepResult
	Outcome Outcome
}

func (r *Report) State(name string) StepState {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.State
		}
	}
	return StepPending
}

// Failed returns the failed step, if any.
func (r *Report) Failed() (StepResult, bool) {
	for _, s := range r.Steps {
		if s.State == StepFailed {
			return s, true
		}
	}
	return StepResult{}, false
}

// errFinished lets a step end the chain successfully without running the rest.
var errFinished = errors.New("workflow finished early")

type step struct {
	name    string
	okMsg   string
	failMsg string
	run     func(ctx context.Context) error
}

// runSteps executes steps in order, stopping at the first failure. No step is retried
// and completed steps are not undone.
func runSteps(ctx context.Context, logger *log.Logger, steps []step) (*Report, error) {
	report := &Report{Steps: make([]StepResult, len(steps))}
	for i, s := range steps {
		report.Steps[i] = StepResult{Name: s.name, State: StepPending}
	}

	for i, s := range steps {
		err := s.run(ctx)
		switch {
		case errors.Is(err, errFinished):
			report.Steps[i].State = StepSucceeded
			report.Outcome = OutcomeNothingToCommit
			return report, nil
		case err != nil:
			report.Steps[i].State = StepFailed
			report.Steps[i].Err = err
			report.Outcome = OutcomeFailed
			logger.Error(s.failMsg, "err", err)
			return report, err
		}

		report.Steps[i].State = StepSucceeded
		if s.okMsg != "" {
			logger.Info(s.okMsg)
		}
	}

	report.Outcome = OutcomeSucceeded
	return report, nil
}
