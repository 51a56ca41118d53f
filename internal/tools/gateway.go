package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/logging"
)

// Stream identifies which pipe produced a line of output.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// Invocation describes one subprocess call.
type Invocation struct {
	Name string
	Args []string
	// Dir is the working directory; empty inherits the caller's.
	Dir string
	// OnLine receives each output line as it arrives. Carriage returns
	// terminate lines so progress bars are observed incrementally.
	OnLine func(stream Stream, line string)
}

// Output carries the captured pipes of a finished subprocess.
type Output struct {
	Stdout string
	Stderr string
}

// RunFunc spawns a subprocess and waits for it. A non-nil error means the
// process could not be started or exited unsuccessfully.
type RunFunc func(ctx context.Context, inv Invocation) (Output, error)

// Result is the outcome of a single invocation.
type Result struct {
	ExitSucceeded bool
	Stdout        string
	Stderr        string
	TimedOut      bool
	Elapsed       time.Duration
}

// Gateway invokes external tools.
type Gateway struct {
	run     RunFunc
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRunFunc overrides the subprocess spawner (primarily for tests).
func WithRunFunc(fn RunFunc) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.run = fn
		}
	}
}

// WithTimeout bounds every invocation. Zero or negative disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

// WithLogger attaches a logger for invocation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGateway constructs a Gateway that spawns real processes unless overridden.
func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{run: ExecRun, logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.logger = logging.NewComponentLogger(g.logger, "tools")
	return g
}

// Run invokes name with args and reports the outcome. It never returns an error.
func (g *Gateway) Run(ctx context.Context, name string, args ...string) Result {
	return g.Invoke(ctx, Invocation{Name: name, Args: args})
}

// Invoke runs a fully described invocation.
func (g *Gateway) Invoke(ctx context.Context, inv Invocation) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, g.logger)
	started := time.Now()
	out, err := g.run(runCtx, inv)
	result := Result{
		ExitSucceeded: err == nil,
		Stdout:        out.Stdout,
		Stderr:        out.Stderr,
		Elapsed:       time.Since(started),
	}

	if err != nil {
		if g.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			result.TimedOut = true
			result.Stderr = appendNote(result.Stderr, fmt.Sprintf("%s timed out after %s", toolLabel(inv.Name), g.timeout))
		} else {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || strings.TrimSpace(result.Stderr) == "" {
				result.Stderr = appendNote(result.Stderr, err.Error())
			}
		}
	}

	logger.Debug("tool invocation finished",
		logging.String(logging.FieldTool, toolLabel(inv.Name)),
		logging.Int("arg_count", len(inv.Args)),
		logging.Bool("succeeded", result.ExitSucceeded),
		logging.Bool("timed_out", result.TimedOut),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result
}

// Probe reports whether name can be invoked with the given version arguments.
func (g *Gateway) Probe(ctx context.Context, name string, versionArgs ...string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return g.Run(ctx, name, versionArgs...).ExitSucceeded
}

func appendNote(stderr, note string) string {
	stderr = strings.TrimRight(stderr, "\n")
	if stderr == "" {
		return note
	}
	return stderr + "\n" + note
}

func toolLabel(name string) string {
	return filepath.Base(strings.TrimSpace(name))
}
