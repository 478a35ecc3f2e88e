package notify

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
)

// Desktop shows notifications through the platform's notification tool
type Desktop struct {
	goos string
}

// NewDesktop creates a desktop notifier for the current platform
func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS}
}

// Send shows n. Platforms without a known tool are ignored.
func (d *Desktop) Send(ctx context.Context, n Notification) error {
	name, args := d.command(n)
	if name == "" {
		return nil
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

func (d *Desktop) command(n Notification) (string, []string) {
	title := n.Title
	if n.Build != "" {
		title += " (" + n.Build + ")"
	}
	switch d.goos {
	case "darwin":
		script := `display notification "` + quote(n.Message) + `" with title "` + quote(title) + `"`
		return "osascript", []string{"-e", script}
	case "linux":
		return "notify-send", []string{"--icon", icon(n.Level), title, n.Message}
	default:
		return "", nil
	}
}

// quote escapes s for an AppleScript string literal
func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func icon(l Level) string {
	switch l {
	case LevelWarning:
		return "dialog-warning"
	case LevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}
