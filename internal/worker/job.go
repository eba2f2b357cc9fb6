package worker

import (
	"github.com/raoulx24/atlas-archive/internal/classify"
	"github.com/raoulx24/atlas-archive/internal/event"
)

// Job is one settled batch waiting for the pipeline. Each burst is its own
// job and is classified and gated on its own.
type Job struct {
	Batch event.Batch
	// Descriptor, when set, skips classification (manual backups).
	Descriptor *classify.Descriptor
}
