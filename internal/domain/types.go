package domain

import (
	"fmt"
	"strings"
)

// Result is the outcome of a build. Values are ordered by severity:
// Success < Unstable < Failure < Aborted.
type Result int

const (
	ResultSuccess Result = iota
	ResultUnstable
	ResultFailure
	ResultAborted
)

var resultNames = [...]string{
	ResultSuccess:  "SUCCESS",
	ResultUnstable: "UNSTABLE",
	ResultFailure:  "FAILURE",
	ResultAborted:  "ABORTED",
}

// String returns the canonical upper-case name
func (r Result) String() string {
	if r < ResultSuccess || r > ResultAborted {
		return fmt.Sprintf("Result(%d)", int(r))
	}
	return resultNames[r]
}

// ParseResult parses a result name, case-insensitively
func ParseResult(s string) (Result, error) {
	for i, name := range resultNames {
		if strings.EqualFold(s, name) {
			return Result(i), nil
		}
	}
	return ResultSuccess, fmt.Errorf("unknown build result: %q", s)
}

// IsWorseThan reports whether r is strictly more severe than other
func (r Result) IsWorseThan(other Result) bool {
	return r > other
}

// Combine returns the more severe of r and other
func (r Result) Combine(other Result) Result {
	if other > r {
		return other
	}
	return r
}

// WorstOf returns the most severe of the given results, or Success for none
func WorstOf(results ...Result) Result {
	worst := ResultSuccess
	for _, r := range results {
		worst = worst.Combine(r)
	}
	return worst
}

// MarshalText implements encoding.TextMarshaler
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Result) UnmarshalText(text []byte) error {
	parsed, err := ParseResult(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
