// Package buildhost is a minimal in-process build host: builds with an
// environment, a console log and optional aggregate children, plus a runner
// that notifies the recorder when builds finish.
package buildhost

import (
	"fmt"
	"io"
	"sync"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// BuildSpec describes a build to create
type BuildSpec struct {
	Job    string
	Number int
	Result domain.Result
	Env    map[string]string
	Tags   []string
	// Echo, if set, receives a copy of console output
	Echo io.Writer
}

// Build implements domain.Build
type Build struct {
	job      string
	number   int
	env      map[string]string
	tags     []string
	console  *Console
	echo     io.Writer
	children []*Build

	result    domain.Result
	badges    []domain.Badge
	summaries []domain.Summary
	mu        sync.Mutex
}

var _ domain.Build = (*Build)(nil)

// NewBuild creates a build from spec
func NewBuild(spec BuildSpec) *Build {
	env := make(map[string]string, len(spec.Env))
	for k, v := range spec.Env {
		env[k] = v
	}
	echo := lockEcho(spec.Echo)
	return &Build{
		job:     spec.Job,
		number:  spec.Number,
		env:     env,
		tags:    append([]string(nil), spec.Tags...),
		console: NewConsole(echo),
		echo:    echo,
		result:  spec.Result,
	}
}

// AddChild adds a child build for one axis combination. The child inherits
// the parent's environment plus the combination's values, and the parent
// becomes an aggregate.
func (b *Build) AddChild(combination map[string]string, keys ...string) *Build {
	env := make(map[string]string, len(b.env)+len(combination))
	for k, v := range b.env {
		env[k] = v
	}
	name := ""
	for _, k := range keys {
		env[k] = combination[k]
		if name != "" {
			name += ","
		}
		name += fmt.Sprintf("%s=%s", k, combination[k])
	}

	child := NewBuild(BuildSpec{
		Job:    b.job + "/" + name,
		Number: b.number,
		Env:    env,
		Tags:   []string{domain.TagChild},
		Echo:   b.echo,
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasTag(domain.TagAggregate) {
		b.tags = append(b.tags, domain.TagAggregate)
	}
	b.children = append(b.children, child)
	return child
}

// NewAggregate creates a parent build with one child per value of axis
func NewAggregate(spec BuildSpec, axis string, values []string) *Build {
	parent := NewBuild(spec)
	for _, v := range values {
		parent.AddChild(map[string]string{axis: v}, axis)
	}
	return parent
}

func (b *Build) Job() string { return b.job }
func (b *Build) Number() int { return b.number }

func (b *Build) Result() domain.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

func (b *Build) SetResult(r domain.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.result = r
}

func (b *Build) Getenv(name string) (string, bool) {
	v, ok := b.env[name]
	return v, ok
}

func (b *Build) Console() domain.Console { return b.console }

// Log returns the concrete console, for hosts that need Lines or Stream
func (b *Build) Log() *Console { return b.console }

func (b *Build) IsA(tag string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasTag(tag)
}

func (b *Build) hasTag(tag string) bool {
	for _, t := range b.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsAggregate reports whether the build has children
func (b *Build) IsAggregate() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.children) > 0
}

// Children returns the child builds in creation order
func (b *Build) Children() []*Build {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Build(nil), b.children...)
}

func (b *Build) Annotations() ([]domain.Badge, []domain.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Badge(nil), b.badges...), append([]domain.Summary(nil), b.summaries...)
}

func (b *Build) SetAnnotations(badges []domain.Badge, summaries []domain.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.badges = append([]domain.Badge(nil), badges...)
	b.summaries = append([]domain.Summary(nil), summaries...)
}
