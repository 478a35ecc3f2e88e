package approval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

var (
	// ErrUnapprovedClasspath matches entries waiting for administrator approval
	ErrUnapprovedClasspath = errors.New("classpath entry not yet approved")
	// ErrDirectoryClasspath matches directory entries, which are never approvable
	ErrDirectoryClasspath = errors.New("classpath directories are not allowed")
)

// UnapprovedClasspathError names a file entry that has been registered as pending
type UnapprovedClasspathError struct {
	Entry domain.ClasspathEntry
	Hash  string
}

func (e *UnapprovedClasspathError) Error() string {
	return fmt.Sprintf("classpath entry %s (%s) not yet approved for use", e.Entry.URL, e.Hash)
}

func (e *UnapprovedClasspathError) Is(target error) bool {
	return target == ErrUnapprovedClasspath
}

// DirectoryClasspathError is a permanent rejection of a directory entry
type DirectoryClasspathError struct {
	Entry domain.ClasspathEntry
}

func (e *DirectoryClasspathError) Error() string {
	return fmt.Sprintf("classpath entry %s is a directory and cannot be approved", e.Entry.URL)
}

func (e *DirectoryClasspathError) Is(target error) bool {
	return target == ErrDirectoryClasspath
}

// RejectionError collects every entry the gate refused in one check
type RejectionError struct {
	Entries []domain.ClasspathEntry
	Errs    []error
}

func (e *RejectionError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "classpath rejected: " + strings.Join(msgs, "; ")
}

func (e *RejectionError) Unwrap() []error {
	return e.Errs
}
