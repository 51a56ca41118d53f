package testsupport

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"

	"clipper/internal/tools"
)

// ToolCall records one scripted invocation.
type ToolCall struct {
	Name string
	Args []string
	Dir  string
}

// ToolHandler scripts the response of a tool.
type ToolHandler func(inv tools.Invocation) (tools.Output, error)

// ErrToolMissing is returned for tools without a handler.
var ErrToolMissing = errors.New("exec: executable file not found in $PATH")

// ToolScript is a tools.RunFunc that dispatches on the binary base name and
// records every call. Unscripted tools behave like missing binaries.
type ToolScript struct {
	mu       sync.Mutex
	handlers map[string]ToolHandler
	calls    []ToolCall
}

// NewToolScript returns an empty script.
func NewToolScript() *ToolScript {
	return &ToolScript{handlers: make(map[string]ToolHandler)}
}

// On registers the handler for a tool, keyed by base name.
func (s *ToolScript) On(name string, handler ToolHandler) *ToolScript {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[filepath.Base(name)] = handler
	return s
}

// Run satisfies tools.RunFunc.
func (s *ToolScript) Run(_ context.Context, inv tools.Invocation) (tools.Output, error) {
	s.mu.Lock()
	s.calls = append(s.calls, ToolCall{Name: inv.Name, Args: slices.Clone(inv.Args), Dir: inv.Dir})
	handler := s.handlers[filepath.Base(inv.Name)]
	s.mu.Unlock()
	if handler == nil {
		return tools.Output{Stderr: ErrToolMissing.Error()}, ErrToolMissing
	}
	return handler(inv)
}

// Gateway returns a gateway wired to the script.
func (s *ToolScript) Gateway(opts ...tools.Option) *tools.Gateway {
	return tools.NewGateway(append([]tools.Option{tools.WithRunFunc(s.Run)}, opts...)...)
}

// Calls returns a copy of every recorded call.
func (s *ToolScript) Calls() []ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded calls for one tool.
func (s *ToolScript) CallsTo(name string) []ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ToolCall
	for _, call := range s.calls {
		if filepath.Base(call.Name) == filepath.Base(name) {
			out = append(out, call)
		}
	}
	return out
}

// Succeed returns a handler that exits zero with stdout.
func Succeed(stdout string) ToolHandler {
	return func(tools.Invocation) (tools.Output, error) {
		return tools.Output{Stdout: stdout}, nil
	}
}

// Fail returns a handler that exits nonzero with stderr.
func Fail(stderr string) ToolHandler {
	return func(tools.Invocation) (tools.Output, error) {
		return tools.Output{Stderr: stderr}, errors.New("exit status 1")
	}
}

// ArgAfter returns the argument following flag, or "".
func ArgAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// HasArg reports whether args contains value.
func HasArg(args []string, value string) bool {
	return slices.Contains(args, value)
}

// LastArg returns the final argument, or "".
func LastArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}
