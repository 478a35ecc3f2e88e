// Package notify tells administrators about approval requests and failed
// post-build scripts
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/hochfrequenz/build-annotator/internal/domain"
	"github.com/hochfrequenz/build-annotator/internal/recorder"
)

// Level orders notifications by urgency
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Field is one labelled value attached to a notification
type Field struct {
	Name  string
	Value string
}

// Notification is one event worth telling an administrator about
type Notification struct {
	Title   string
	Message string
	Level   Level
	Build   string // job#number, empty for events not tied to a build
	Fields  []Field
}

// Notifier delivers notifications
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Fanout delivers to every notifier and joins their errors
type Fanout []Notifier

// Send delivers n to all notifiers, continuing past failures
func (f Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every notification
type Discard struct{}

func (Discard) Send(context.Context, Notification) error { return nil }

// ApprovalRequested describes a classpath entry that was just registered as
// pending
func ApprovalRequested(entry domain.ClasspathEntry, hash string) Notification {
	return Notification{
		Title:   "Classpath approval requested",
		Message: fmt.Sprintf("%s is waiting for approval", entry.URL),
		Level:   LevelWarning,
		Fields: []Field{
			{Name: "Entry", Value: entry.URL},
			{Name: "Hash", Value: hash},
		},
	}
}

// ScriptFailed describes a post-build script run that did not complete.
// ok is false for reports that need no notification.
func ScriptFailed(report *recorder.Report) (n Notification, ok bool) {
	if report == nil || report.Skipped || !report.Outcome.Failed() {
		return Notification{}, false
	}
	msg := fmt.Sprintf("Post-build script %s, build is %s", report.Outcome.Kind, report.Result)
	if report.Outcome.Cause != nil {
		msg += ": " + report.Outcome.Cause.Error()
	}
	n = Notification{
		Title:   "Post-build script failed",
		Message: msg,
		Level:   LevelError,
		Build:   report.Build,
		Fields: []Field{
			{Name: "Outcome", Value: report.Outcome.Kind.String()},
			{Name: "Result", Value: report.Result.String()},
		},
	}
	for _, entry := range report.Outcome.Rejected {
		n.Fields = append(n.Fields, Field{Name: "Rejected", Value: entry.URL})
	}
	return n, true
}
