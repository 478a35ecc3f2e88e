package buildhost

import (
	"context"
	"log"

	"github.com/hochfrequenz/build-annotator/internal/domain"
	"github.com/hochfrequenz/build-annotator/internal/recorder"
	"golang.org/x/sync/errgroup"
)

// Notifier is told when a build's main phase has finished
type Notifier interface {
	NotifyBuildPhaseComplete(ctx context.Context, build domain.Build, isAggregateParent bool) (*recorder.Report, error)
}

// Runner drives builds through a notifier
type Runner struct {
	notifier Notifier
	Debug    bool
}

// NewRunner creates a runner
func NewRunner(notifier Notifier) *Runner {
	return &Runner{notifier: notifier}
}

// Run notifies for b. For an aggregate build the children are notified
// concurrently first, then the parent. Reports come back children first,
// in child order, then the parent.
func (r *Runner) Run(ctx context.Context, b *Build) ([]*recorder.Report, error) {
	children := b.Children()
	if len(children) == 0 {
		report, err := r.notifier.NotifyBuildPhaseComplete(ctx, b, false)
		if err != nil {
			return nil, err
		}
		return []*recorder.Report{report}, nil
	}

	reports := make([]*recorder.Report, len(children)+1)
	g, gctx := errgroup.WithContext(ctx)
	for i, child := range children {
		g.Go(func() error {
			if r.Debug {
				log.Printf("[host] child %s finished", domain.BuildKey(child))
			}
			report, err := r.notifier.NotifyBuildPhaseComplete(gctx, child, false)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := r.notifier.NotifyBuildPhaseComplete(ctx, b, true)
	if err != nil {
		return nil, err
	}
	reports[len(children)] = report
	return reports, nil
}
