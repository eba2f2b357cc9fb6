package worker

import (
	"context"

	"github.com/raoulx24/atlas-archive/internal/journal"
	"github.com/raoulx24/atlas-archive/internal/retention"
)

// Retention prunes old archives after a successful backup.
type Retention interface {
	Apply(ctx context.Context, dir, source string, policy retention.Policy) ([]string, error)
}

// Recorder keeps a history of pipeline runs.
type Recorder interface {
	Record(ctx context.Context, r journal.Run) error
}

// WithRecorder attaches a run history. Without one, runs are only logged.
func (w *Worker) WithRecorder(r Recorder) *Worker {
	w.recorder = r
	return w
}
