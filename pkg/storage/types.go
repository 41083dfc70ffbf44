package storage

import "time"

// Run is one invocation of the fleet extraction for a target date.
type Run struct {
	ID         int64
	TargetDate string
	StartedAt  time.Time
	FinishedAt time.Time
	Artifacts  int
}

// Outcome is what happened for one (account, mode) pair within a run.
type Outcome struct {
	RunID      int64
	Account    string
	Dealer     string
	Mode       string
	Status     string // extracted | empty | failed
	Artifact   string
	Reason     string
	OccurredAt time.Time
}
