package policy

import (
	"errors"
	"testing"

	"github.com/hochfrequenz/build-annotator/internal/domain"
)

var (
	completed = Outcome{Kind: Completed}
	failed    = Outcome{Kind: Failed, Cause: errors.New("blahblahblah")}
	rejected  = Outcome{Kind: ClasspathRejected, Rejected: []domain.ClasspathEntry{{URL: "/tmp/lib"}}}
)

func TestReconcile_CompletedNeverChangesResult(t *testing.T) {
	for _, p := range []Policy{DoNothing, MarkUnstable, MarkFailed} {
		for _, r := range []domain.Result{domain.ResultSuccess, domain.ResultUnstable, domain.ResultFailure, domain.ResultAborted} {
			if got := Reconcile(r, domain.ResultSuccess, p, completed); got != r {
				t.Errorf("policy %s, start %s: got %s, want unchanged", p, r, got)
			}
		}
	}
}

func TestReconcile_FailureTable(t *testing.T) {
	tests := []struct {
		policy Policy
		start  domain.Result
		want   domain.Result
	}{
		{DoNothing, domain.ResultSuccess, domain.ResultSuccess},
		{DoNothing, domain.ResultUnstable, domain.ResultUnstable},
		{DoNothing, domain.ResultFailure, domain.ResultFailure},
		{MarkUnstable, domain.ResultSuccess, domain.ResultUnstable},
		{MarkUnstable, domain.ResultUnstable, domain.ResultUnstable},
		{MarkUnstable, domain.ResultFailure, domain.ResultFailure},
		{MarkFailed, domain.ResultSuccess, domain.ResultFailure},
		{MarkFailed, domain.ResultUnstable, domain.ResultFailure},
		{MarkFailed, domain.ResultFailure, domain.ResultFailure},
		{MarkFailed, domain.ResultAborted, domain.ResultAborted},
	}

	for _, tt := range tests {
		for _, o := range []Outcome{failed, rejected} {
			if got := Reconcile(tt.start, domain.ResultSuccess, tt.policy, o); got != tt.want {
				t.Errorf("%s/%s/%s: got %s, want %s", tt.policy, tt.start, o.Kind, got, tt.want)
			}
		}
	}
}

func TestReconcile_ExplicitRequests(t *testing.T) {
	// an explicit request composes with the policy by severity maximum
	if got := Reconcile(domain.ResultSuccess, domain.ResultFailure, DoNothing, completed); got != domain.ResultFailure {
		t.Errorf("got %s, want FAILURE", got)
	}
	if got := Reconcile(domain.ResultSuccess, domain.ResultUnstable, MarkFailed, failed); got != domain.ResultFailure {
		t.Errorf("got %s, want FAILURE", got)
	}
	if got := Reconcile(domain.ResultFailure, domain.ResultUnstable, DoNothing, completed); got != domain.ResultFailure {
		t.Errorf("request improved the result: got %s", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Policy
		wantErr bool
	}{
		{"0", DoNothing, false},
		{"1", MarkUnstable, false},
		{"2", MarkFailed, false},
		{"3", DoNothing, true},
		{"do_nothing", DoNothing, false},
		{"mark-unstable", MarkUnstable, false},
		{"MarkFailed", MarkFailed, false},
		{"explode", DoNothing, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestOutcome_Failed(t *testing.T) {
	if completed.Failed() {
		t.Error("completed outcome reported as failed")
	}
	if !failed.Failed() || !rejected.Failed() {
		t.Error("failed and rejected outcomes must count as failures")
	}
}
