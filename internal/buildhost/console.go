package buildhost

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// Console is an append-only, line-oriented build log. Writers may run
// concurrently with readers; Contains sees everything written before it
// was called, including an unterminated last line.
type Console struct {
	lines   []string
	partial bytes.Buffer
	echo    io.Writer
	mu      sync.Mutex
}

// NewConsole creates a console. If echo is non-nil every Write is copied to it.
func NewConsole(echo io.Writer) *Console {
	return &Console{echo: echo}
}

// Write appends p to the log
func (c *Console) Write(p []byte) (int, error) {
	return c.write(p, true)
}

func (c *Console) write(p []byte, echo bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rest := p
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			c.partial.Write(rest)
			break
		}
		c.partial.Write(rest[:i])
		c.lines = append(c.lines, strings.TrimSuffix(c.partial.String(), "\r"))
		c.partial.Reset()
		rest = rest[i+1:]
	}

	if echo && c.echo != nil {
		c.echo.Write(p)
	}
	return len(p), nil
}

// Stream copies already captured output from r into the console line by
// line until EOF. It is not echoed.
func (c *Console) Stream(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		c.write([]byte(scanner.Text()+"\n"), false)
	}
	return scanner.Err()
}

// Contains reports whether any line matches re
func (c *Console) Contains(re *regexp.Regexp) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, line := range c.lines {
		if re.MatchString(line) {
			return true
		}
	}
	return c.partial.Len() > 0 && re.MatchString(c.partial.String())
}

// Lines returns a copy of the complete lines written so far
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// String returns the whole log
func (c *Console) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sb strings.Builder
	for _, line := range c.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.Write(c.partial.Bytes())
	return sb.String()
}

// lockedWriter serializes writes from the consoles of concurrently running
// children that echo to the same writer
type lockedWriter struct {
	w  io.Writer
	mu sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func lockEcho(w io.Writer) io.Writer {
	if w == nil {
		return nil
	}
	if _, ok := w.(*lockedWriter); ok {
		return w
	}
	return &lockedWriter{w: w}
}
