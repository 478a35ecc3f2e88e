package domain

import (
	"fmt"
	"io"
	"regexp"
)

// Type tags understood by Build.IsA
const (
	TagAggregate = "aggregate"
	TagChild     = "aggregate-child"
)

// Console is a build's append-only console log. Contains must see every
// line written before the call returns.
type Console interface {
	io.Writer
	Contains(re *regexp.Regexp) bool
}

// Build is the host's view of one build. The engine reads it and writes back
// Result and annotations; identity and lifecycle belong to the host.
type Build interface {
	Job() string
	Number() int
	Result() Result
	SetResult(Result)
	Getenv(name string) (string, bool)
	Console() Console
	IsA(tag string) bool
	Annotations() ([]Badge, []Summary)
	SetAnnotations([]Badge, []Summary)
}

// BuildKey returns the canonical job#number identifier
func BuildKey(b Build) string {
	return fmt.Sprintf("%s#%d", b.Job(), b.Number())
}
