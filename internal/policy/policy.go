// Package policy maps a post-build script's outcome to a build result.
package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

// Policy selects what a failing script does to the build result
type Policy int

// Values match the legacy numeric behavior codes 0, 1 and 2.
const (
	DoNothing Policy = iota
	MarkUnstable
	MarkFailed
)

var policyNames = [...]string{
	DoNothing:    "do_nothing",
	MarkUnstable: "mark_unstable",
	MarkFailed:   "mark_failed",
}

func (p Policy) String() string {
	if p < DoNothing || p > MarkFailed {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// FromCode converts a legacy behavior code
func FromCode(code int) (Policy, error) {
	if code < int(DoNothing) || code > int(MarkFailed) {
		return DoNothing, fmt.Errorf("unknown behavior code: %d", code)
	}
	return Policy(code), nil
}

// Parse accepts a policy name (do_nothing, mark-unstable, MarkFailed, ...)
// or a legacy numeric code
func Parse(s string) (Policy, error) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		return FromCode(code)
	}
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for i, name := range policyNames {
		if norm == strings.ReplaceAll(name, "_", "") {
			return Policy(i), nil
		}
	}
	return DoNothing, fmt.Errorf("unknown behavior: %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Target returns the result the policy asks for given an outcome. Success
// means "unchanged": it is the identity of the severity maximum.
func (p Policy) Target(o Outcome) domain.Result {
	if !o.Failed() {
		return domain.ResultSuccess
	}
	switch p {
	case MarkUnstable:
		return domain.ResultUnstable
	case MarkFailed:
		return domain.ResultFailure
	default:
		return domain.ResultSuccess
	}
}

// Reconcile computes the committed result: the most severe of the build's
// current result, what the script explicitly requested, and the policy
// target. The result never improves.
func Reconcile(current, requested domain.Result, p Policy, o Outcome) domain.Result {
	return domain.WorstOf(current, requested, p.Target(o))
}
