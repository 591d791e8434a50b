package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "exiftool"

const stderrTail = 2048

// ExitError reports an exiftool run that exited non-zero.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("exiftool exited with status %d", e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Tool invokes exiftool as a child process, one call at a time.
type Tool struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the tool with args and waits for it to exit.
func (t Tool) Run(ctx context.Context, args []string) error {
	binary := strings.TrimSpace(t.Binary)
	if binary == "" {
		binary = DefaultBinary
	}

	var captured tailBuffer
	cmd := exec.CommandContext(ctx, binary, args...)
	if t.Stdout != nil {
		cmd.Stdout = t.Stdout
	}
	if t.Stderr != nil {
		cmd.Stderr = io.MultiWriter(t.Stderr, &captured)
	} else {
		cmd.Stderr = &captured
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Args:     append([]string(nil), args...),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(captured.String()),
		}
	}
	return fmt.Errorf("run %s: %w", binary, err)
}

// tailBuffer keeps the last stderrTail bytes written to it.
type tailBuffer struct {
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	b.buf.Write(p)
	if extra := b.buf.Len() - stderrTail; extra > 0 {
		b.buf.Next(extra)
	}
	return n, nil
}

func (b *tailBuffer) String() string {
	return b.buf.String()
}
