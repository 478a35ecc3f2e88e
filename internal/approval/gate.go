package approval

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// ApprovedEntry is a classpath entry cleared for loading
type ApprovedEntry struct {
	Entry domain.ClasspathEntry
	Path  string
	Hash  string
}

// Gate checks classpath entries against a registry before a script runs.
// It only reads approvals and requests new ones; approving is done by an
// administrator through the registry.
type Gate struct {
	registry Registry
	// OnPending, if set, is called when an entry is registered for the
	// first time
	OnPending func(entry domain.ClasspathEntry, hash string)
	Debug     bool
}

// NewGate creates a gate backed by registry
func NewGate(registry Registry) *Gate {
	return &Gate{registry: registry}
}

// Check returns the approved entries in order, or a *RejectionError if any
// entry is not approved. Unapproved file entries are registered as pending;
// directories are refused without touching the registry.
func (g *Gate) Check(entries []domain.ClasspathEntry) ([]ApprovedEntry, error) {
	approved := make([]ApprovedEntry, 0, len(entries))
	var rejection RejectionError

	for _, entry := range entries {
		ae, err := g.check(entry)
		if err != nil {
			if g.Debug {
				log.Printf("[gate] rejected %s: %v", entry.URL, err)
			}
			rejection.Entries = append(rejection.Entries, entry)
			rejection.Errs = append(rejection.Errs, err)
			continue
		}
		approved = append(approved, ae)
	}

	if len(rejection.Errs) > 0 {
		return nil, &rejection
	}
	return approved, nil
}

func (g *Gate) check(entry domain.ClasspathEntry) (ApprovedEntry, error) {
	path, ok := entry.LocalPath()
	if !ok {
		return ApprovedEntry{}, fmt.Errorf("classpath entry %s: only file entries are supported", entry.URL)
	}

	if strings.HasSuffix(entry.URL, "/") {
		return ApprovedEntry{}, &DirectoryClasspathError{Entry: entry}
	}
	info, err := os.Stat(path)
	if err != nil {
		return ApprovedEntry{}, fmt.Errorf("classpath entry %s: %w", entry.URL, err)
	}
	if info.IsDir() {
		return ApprovedEntry{}, &DirectoryClasspathError{Entry: entry}
	}

	hash, err := HashFile(path)
	if err != nil {
		return ApprovedEntry{}, fmt.Errorf("hashing classpath entry %s: %w", entry.URL, err)
	}

	isApproved, err := g.registry.IsApproved(hash)
	if err != nil {
		return ApprovedEntry{}, fmt.Errorf("checking approval of %s: %w", entry.URL, err)
	}
	if !isApproved {
		created, err := g.registry.RegisterPending(entry, hash)
		if err != nil {
			return ApprovedEntry{}, fmt.Errorf("registering %s for approval: %w", entry.URL, err)
		}
		if created && g.OnPending != nil {
			g.OnPending(entry, hash)
		}
		return ApprovedEntry{}, &UnapprovedClasspathError{Entry: entry, Hash: hash}
	}

	return ApprovedEntry{Entry: entry, Path: path, Hash: hash}, nil
}
