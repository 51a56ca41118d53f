package tools

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	maxStdoutBytes = 16 << 20
	maxStderrBytes = 64 << 10
	maxLineBytes   = 64 << 10
	waitDelay      = 2 * time.Second
)

// ExecRun spawns inv as a real process. Stdout is retained up to 16 MiB so
// JSON metadata dumps survive intact; stderr is retained up to 64 KiB.
func ExecRun(ctx context.Context, inv Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay

	var mu sync.Mutex
	stdout := &limitedBuffer{limit: maxStdoutBytes}
	stderr := &limitedBuffer{limit: maxStderrBytes}
	stdoutLines := &lineWriter{stream: StreamStdout, emit: inv.OnLine, mu: &mu}
	stderrLines := &lineWriter{stream: StreamStderr, emit: inv.OnLine, mu: &mu}
	cmd.Stdout = io.MultiWriter(stdout, stdoutLines)
	cmd.Stderr = io.MultiWriter(stderr, stderrLines)

	err := cmd.Run()
	stdoutLines.flush()
	stderrLines.flush()
	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, err
}

// limitedBuffer keeps the first limit bytes written and discards the rest.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if remain := b.limit - b.buf.Len(); remain > 0 {
		if len(p) > remain {
			b.buf.Write(p[:remain])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

// lineWriter splits output on newlines or carriage returns and forwards each
// non-empty line to emit.
type lineWriter struct {
	stream  Stream
	emit    func(Stream, string)
	mu      *sync.Mutex
	partial []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.emit == nil {
		return len(p), nil
	}
	for _, c := range p {
		if c == '\n' || c == '\r' {
			w.flush()
			continue
		}
		w.partial = append(w.partial, c)
		if len(w.partial) >= maxLineBytes {
			w.flush()
		}
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	if w.emit == nil || len(w.partial) == 0 {
		return
	}
	line := strings.TrimSpace(string(w.partial))
	w.partial = w.partial[:0]
	if line == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.emit(w.stream, line)
}
