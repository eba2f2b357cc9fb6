package journal

import "time"

// Status is the outcome of one pipeline run.
type Status string

const (
	Skipped   Status = "skipped"
	Failed    Status = "failed"
	Succeeded Status = "succeeded"
)

// Run records one settled batch and what became of it.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Category   string
	Status     Status
	Reason     string // skip reason or error text
	Archive    string
	Entries    int
	Bytes      int64
	Pruned     int
}
