package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
)

// ErrUnknownAction is returned when the model names a tool that is not
// registered. It fails the run.
var ErrUnknownAction = errors.New("unknown action")

// ToolResult is what a tool hands back to the loop. Observation goes to the
// model verbatim; Sources are kept for attribution.
type ToolResult struct {
	Observation string
	Sources     []attribution.SourceRecord
}

// Tool is something the model can call by name with a single string input.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, input string) (ToolResult, error)
}

// Permanent marks a tool error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// ToolError reports a tool that kept failing after its retries.
type ToolError struct {
	Tool     string
	Input    string
	Attempts int
	Err      error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed after %d attempt(s): %v", e.Tool, e.Attempts, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Registry maps tool names to tools, keeping registration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry registers tools. Names must be unique and non-empty.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := strings.TrimSpace(t.Name())
		if name == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Lookup returns the named tool or an error wrapping ErrUnknownAction.
func (r *Registry) Lookup(name string) (Tool, error) {
	if t, ok := r.tools[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownAction, name, r.Names())
}

// Names is the comma separated list of tool names.
func (r *Registry) Names() string {
	return strings.Join(r.order, ", ")
}

// Describe renders one "name: description" line per tool.
func (r *Registry) Describe() string {
	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		lines = append(lines, name+": "+r.tools[name].Description())
	}
	return strings.Join(lines, "\n")
}
