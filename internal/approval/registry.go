// Package approval implements the classpath approval gate and the registries
// backing it. A registry is process-wide shared state; implementations are
// safe for concurrent use and treat pending registration as idempotent.
package approval

import (
	"errors"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// State is the approval state of a registry record
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
)

// ErrNotPending is returned when approving or denying a hash that has no
// pending record
var ErrNotPending = errors.New("no pending classpath entry with that hash")

// Record is one classpath entry known to a registry
type Record struct {
	Hash       string     `json:"hash"`
	URL        string     `json:"url"`
	State      State      `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// Registry stores classpath approval state keyed by content hash
type Registry interface {
	IsApproved(hash string) (bool, error)
	// RegisterPending is idempotent; created reports whether this call
	// added the record
	RegisterPending(entry domain.ClasspathEntry, hash string) (created bool, err error)
	ListPending() ([]Record, error)
	ListApproved() ([]Record, error)
	Approve(hash string) error
	Deny(hash string) error
}
