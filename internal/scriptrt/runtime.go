// Package scriptrt runs post-build scripts written in the rsc.io/script
// language. The badge API is exposed as script commands and conditions;
// sandboxed scripts get nothing else apart from a few output and flow
// commands.
package scriptrt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hochfrequenz/build-annotator/internal/badge"
	"github.com/hochfrequenz/build-annotator/internal/recorder"
	"rsc.io/script"
)

// Runtime implements recorder.Runtime
type Runtime struct {
	// WorkDir is the directory unsandboxed scripts start in. Sandboxed
	// scripts always get a fresh temporary directory.
	WorkDir string
	// Timeout bounds one execution; zero means no limit
	Timeout time.Duration
	Debug   bool
}

var _ recorder.Runtime = (*Runtime)(nil)

// New creates a runtime
func New(workDir string, timeout time.Duration) *Runtime {
	return &Runtime{WorkDir: workDir, Timeout: timeout}
}

// Execute runs the approved classpath scripts in order, then the main script,
// all in one script state
func (r *Runtime) Execute(ctx context.Context, s recorder.Script, api badge.API) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	logw := s.Log
	if logw == nil {
		logw = io.Discard
	}

	workDir, env := r.WorkDir, os.Environ()
	if s.Sandbox || workDir == "" {
		dir, err := os.MkdirTemp("", "build-annotate-*")
		if err != nil {
			return fmt.Errorf("creating script work dir: %w", err)
		}
		defer os.RemoveAll(dir)
		workDir = dir
	}
	if s.Sandbox {
		env = nil
	}

	state, err := script.NewState(ctx, workDir, env)
	if err != nil {
		return fmt.Errorf("creating script state: %w", err)
	}

	engine := r.engine(s.Sandbox, api)
	err = r.executeAll(engine, state, s, logw)
	if closeErr := state.CloseAndWait(logw); err == nil {
		err = closeErr
	}
	return err
}

func (r *Runtime) executeAll(engine *script.Engine, state *script.State, s recorder.Script, logw io.Writer) error {
	for _, lib := range s.Classpath {
		content, err := os.ReadFile(lib.Path)
		if err != nil {
			return fmt.Errorf("reading classpath entry %s: %w", lib.Entry.URL, err)
		}
		if r.Debug {
			log.Printf("[scriptrt] loading %s (%s)", lib.Path, lib.Hash)
		}
		if err := execute(engine, state, filepath.Base(lib.Path), string(content), logw); err != nil {
			return err
		}
	}
	return execute(engine, state, "postbuild", s.Text, logw)
}

func execute(engine *script.Engine, state *script.State, name, text string, logw io.Writer) error {
	return engine.Execute(state, name, bufio.NewReader(strings.NewReader(text)), logw)
}

func (r *Runtime) engine(sandbox bool, api badge.API) *script.Engine {
	cmds := map[string]script.Cmd{
		"echo":   script.Echo(),
		"stdout": script.Stdout(),
		"stderr": script.Stderr(),
		"stop":   script.Stop(),
		"wait":   script.Wait(),
		"help":   script.Help(),
	}
	conds := Conditions(api)
	if !sandbox {
		for name, cmd := range script.DefaultCmds() {
			cmds[name] = cmd
		}
		for name, cond := range script.DefaultConds() {
			if _, taken := conds[name]; !taken {
				conds[name] = cond
			}
		}
	}
	for name, cmd := range Commands(api) {
		cmds[name] = cmd
	}
	return &script.Engine{Cmds: cmds, Conds: conds, Quiet: !r.Debug}
}
