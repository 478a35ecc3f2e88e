// Package recorder runs a post-build script against a finished build and
// commits the resulting annotations and status. One notification per build
// walks Idle -> Deciding -> Executing -> Reconciling -> Committed, or
// Deciding -> Committed when the build is skipped.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/hochfrequenz/build-annotator/internal/annotation"
	"github.com/hochfrequenz/build-annotator/internal/approval"
	"github.com/hochfrequenz/build-annotator/internal/badge"
	"github.com/hochfrequenz/build-annotator/internal/domain"
	"github.com/hochfrequenz/build-annotator/internal/policy"
)

// FailureBadgeText labels the badge added when the script fails
const FailureBadgeText = "Groovy"

// FailureBadgeStyle is the look of the failure badge
var FailureBadgeStyle = domain.BadgeStyle{
	Color:       "#000000",
	Background:  "#FFB0B0",
	Border:      "1px",
	BorderColor: "#FF0000",
}

var (
	// ErrScriptRuntime wraps anything the script runtime raised
	ErrScriptRuntime = errors.New("script execution failed")
	// ErrAlreadyCommitted is returned for a second notification of one build
	ErrAlreadyCommitted = errors.New("build already committed")
)

// Script is what the runtime is asked to execute
type Script struct {
	Text      string
	Sandbox   bool
	Classpath []approval.ApprovedEntry
	// Log receives the script's own output; it is the build console
	Log io.Writer
}

// Runtime executes scripts. The manager is the only capability the script
// receives. Execute blocks until the script finishes.
type Runtime interface {
	Execute(ctx context.Context, script Script, api badge.API) error
}

// Config is fixed for the lifetime of a recorder
type Config struct {
	Script                string
	Sandbox               bool
	Classpath             []domain.ClasspathEntry
	Policy                policy.Policy
	RunForAggregateParent bool
	Debug                 bool
}

// Report describes one notification after it committed
type Report struct {
	ExecutionID string
	Build       string
	Skipped     bool
	Outcome     policy.Outcome
	Result      domain.Result
	Path        []State
}

// Recorder is safe for concurrent use across different builds. It remembers
// every build it committed so that a repeat notification is rejected; that
// set is never pruned, so a Recorder is meant to live for one host session
// (one CLI run), not for the lifetime of a long-running host.
type Recorder struct {
	config  Config
	runtime Runtime
	gate    *approval.Gate

	committed map[string]bool
	mu        sync.Mutex
}

// New creates a recorder
func New(config Config, runtime Runtime, gate *approval.Gate) *Recorder {
	return &Recorder{
		config:    config,
		runtime:   runtime,
		gate:      gate,
		committed: make(map[string]bool),
	}
}

// NotifyBuildPhaseComplete runs the configured script against build and
// commits the outcome. Script failures never surface as an error here; the
// only errors are a nil build and a repeated notification.
func (r *Recorder) NotifyBuildPhaseComplete(ctx context.Context, build domain.Build, isAggregateParent bool) (*Report, error) {
	if build == nil {
		return nil, errors.New("nil build")
	}
	key := domain.BuildKey(build)
	if !r.claim(key) {
		return nil, fmt.Errorf("%s: %w", key, ErrAlreadyCommitted)
	}

	exec := newExecution()
	report := &Report{ExecutionID: uuid.NewString(), Build: key}

	exec.transition(StateDeciding)
	if isAggregateParent && !r.config.RunForAggregateParent {
		if r.config.Debug {
			log.Printf("[recorder] %s skipping aggregate parent %s", report.ExecutionID, key)
		}
		exec.transition(StateCommitted)
		report.Skipped = true
		report.Result = build.Result()
		report.Path = exec.path
		return report, nil
	}

	exec.transition(StateExecuting)
	badges, summaries := build.Annotations()
	store := annotation.Load(badges, summaries)
	mgr := badge.NewManager(build, store)
	if r.config.Debug {
		log.Printf("[recorder] %s executing script for %s (sandbox=%v, classpath=%d)",
			report.ExecutionID, key, r.config.Sandbox, len(r.config.Classpath))
	}
	outcome := r.execute(ctx, build, mgr)

	exec.transition(StateReconciling)
	if outcome.Failed() {
		style := FailureBadgeStyle
		store.AppendBadge(domain.Badge{
			Kind:  domain.BadgeShortText,
			Text:  FailureBadgeText,
			Style: &style,
		})
	}
	final := policy.Reconcile(build.Result(), mgr.Requested(), r.config.Policy, outcome)
	build.SetResult(final)
	build.SetAnnotations(store.Badges(), store.Summaries())

	exec.transition(StateCommitted)
	if r.config.Debug {
		log.Printf("[recorder] %s committed %s: outcome=%s result=%s",
			report.ExecutionID, key, outcome.Kind, final)
	}

	report.Outcome = outcome
	report.Result = final
	report.Path = exec.path
	return report, nil
}

func (r *Recorder) claim(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed[key] {
		return false
	}
	r.committed[key] = true
	return true
}

func (r *Recorder) execute(ctx context.Context, build domain.Build, mgr *badge.Manager) policy.Outcome {
	console := build.Console()

	var classpath []approval.ApprovedEntry
	if len(r.config.Classpath) > 0 {
		if r.gate == nil {
			err := errors.New("classpath entries configured without an approval gate")
			fmt.Fprintf(console, "ERROR: %v\n", err)
			return policy.Outcome{Kind: policy.ClasspathRejected, Cause: err, Rejected: r.config.Classpath}
		}
		approved, err := r.gate.Check(r.config.Classpath)
		if err != nil {
			fmt.Fprintf(console, "ERROR: %v\n", err)
			outcome := policy.Outcome{Kind: policy.ClasspathRejected, Cause: err}
			var rejection *approval.RejectionError
			if errors.As(err, &rejection) {
				outcome.Rejected = rejection.Entries
			}
			return outcome
		}
		classpath = approved
	}

	err := r.run(ctx, Script{
		Text:      r.config.Script,
		Sandbox:   r.config.Sandbox,
		Classpath: classpath,
		Log:       console,
	}, mgr)
	if err != nil {
		fmt.Fprintf(console, "ERROR: Failed to evaluate post-build script: %v\n", err)
		return policy.Outcome{Kind: policy.Failed, Cause: err}
	}
	return policy.Outcome{Kind: policy.Completed}
}

// run calls the runtime, converting errors and panics into ErrScriptRuntime
func (r *Recorder) run(ctx context.Context, script Script, mgr *badge.Manager) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic: %v", ErrScriptRuntime, p)
		}
	}()

	if r.runtime == nil {
		return fmt.Errorf("%w: no script runtime configured", ErrScriptRuntime)
	}
	if err := r.runtime.Execute(ctx, script, mgr); err != nil {
		return fmt.Errorf("%w: %w", ErrScriptRuntime, err)
	}
	return nil
}
