package model

import "time"

// RunStatus is the outcome of a pipeline run or a single matrix leg.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailure RunStatus = "failure"
)

// LegResult is the outcome of one matrix leg. Legs are independent: a
// failing leg carries its error here without affecting its siblings.
type LegResult struct {
	Target      Target
	Status      RunStatus
	ArchiveName string
	ArchivePath string
	Error       string
	Duration    time.Duration
}

// PipelineRun aggregates the matrix legs of one pipeline execution.
type PipelineRun struct {
	ID         string
	Owner      string
	Repo       string
	Tag        string
	CommitSHA  string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     RunStatus
	Legs       []LegResult
}

// FailedLegs returns the legs that did not succeed.
func (r *PipelineRun) FailedLegs() []LegResult {
	var failed []LegResult
	for _, leg := range r.Legs {
		if leg.Status != RunStatusSuccess {
			failed = append(failed, leg)
		}
	}
	return failed
}
