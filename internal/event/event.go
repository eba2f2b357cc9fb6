// Package event defines the filesystem change records consumed by the debouncer.
package event

// Kind is the type of change reported by the watch subsystem.
type Kind int

const (
	Created Kind = iota
	Modified
	Deleted
	Moved
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Moved:
		return "moved"
	default:
		return "unknown"
	}
}

// ChangeEvent is a single change under the watched tree.
type ChangeEvent struct {
	Kind  Kind
	Path  string
	IsDir bool
}

// Batch is the ordered set of file events collected during one debounce window.
type Batch []ChangeEvent

// Paths returns every path in the batch, in order.
func (b Batch) Paths() []string {
	out := make([]string, 0, len(b))
	for _, ev := range b {
		out = append(out, ev.Path)
	}
	return out
}

// PathsOf returns the paths of events with the given kind.
func (b Batch) PathsOf(kind Kind) []string {
	var out []string
	for _, ev := range b {
		if ev.Kind == kind {
			out = append(out, ev.Path)
		}
	}
	return out
}
