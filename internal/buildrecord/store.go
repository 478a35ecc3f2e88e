package buildrecord

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

var (
	// ErrNotFound is returned when no record exists for a build
	ErrNotFound = errors.New("build record not found")
	// ErrInvalidJob is returned for job names that would leave the records dir
	ErrInvalidJob = errors.New("invalid job name")
)

// Store keeps records as <dir>/<job>/<number>.yaml
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating records dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns where the record for job and number lives
func (s *Store) Path(job string, number int) (string, error) {
	dir, err := s.jobDir(job)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strconv.Itoa(number)+".yaml"), nil
}

// jobDir maps job to its directory. Child jobs ("parent/axis=value") nest
// under the parent; absolute names and ".." segments are rejected.
func (s *Store) jobDir(job string) (string, error) {
	if job == "" || strings.HasPrefix(job, "/") || filepath.IsAbs(job) || filepath.VolumeName(job) != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidJob, job)
	}
	for _, seg := range strings.Split(filepath.ToSlash(job), "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidJob, job)
		}
	}
	return filepath.Join(s.dir, filepath.FromSlash(job)), nil
}

// Load reads the record for job and number
func (s *Store) Load(job string, number int) (*Record, error) {
	path, err := s.Path(job, number)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s#%d: %w", job, number, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s#%d: %w", job, number, err)
	}
	return r, nil
}

// Save writes r, replacing any previous record for the same build
func (s *Store) Save(r *Record) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	path, err := s.Path(r.Job, r.Number)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating job dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SaveBuild saves a snapshot of b and, for aggregate builds, its children
func (s *Store) SaveBuild(b domain.Build, children ...domain.Build) error {
	for _, child := range children {
		if err := s.Save(FromBuild(child)); err != nil {
			return err
		}
	}
	return s.Save(FromBuild(b))
}

// Numbers lists the build numbers recorded for job, ascending
func (s *Store) Numbers(job string) ([]int, error) {
	dir, err := s.jobDir(job)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var numbers []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers, nil
}

// Latest loads the highest-numbered record for job
func (s *Store) Latest(job string) (*Record, error) {
	numbers, err := s.Numbers(job)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%s: %w", job, ErrNotFound)
	}
	return s.Load(job, numbers[len(numbers)-1])
}
