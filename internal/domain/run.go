package domain

import "time"

// RunStatus enumerates pipeline run outcomes recorded in the journal.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunRejected  RunStatus = "rejected"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one processed submission, persisted for idempotent re-runs
// and audit.
type RunRecord struct {
	RunID       string
	IssueNumber int
	EventID     string
	EventType   string
	Status      RunStatus
	Detail      string
	CreatedAt   time.Time
}
