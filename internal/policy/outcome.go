package policy

import (
	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// OutcomeKind classifies one script run
type OutcomeKind int

const (
	Completed OutcomeKind = iota
	Failed
	ClasspathRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case ClasspathRejected:
		return "classpath_rejected"
	default:
		return "unknown"
	}
}

// Outcome is the transient result of one script run
type Outcome struct {
	Kind     OutcomeKind
	Cause    error
	Rejected []domain.ClasspathEntry
}

// Failed reports whether the outcome counts as a script failure
func (o Outcome) Failed() bool {
	return o.Kind == Failed || o.Kind == ClasspathRejected
}
