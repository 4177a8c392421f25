package core

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
)

type scriptedLLM struct {
	mu      sync.Mutex
	outputs []string
	prompts []string
	stops   [][]string
	err     error
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Generate(_ context.Context, prompt string, stop []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.stops = append(s.stops, stop)
	if s.err != nil {
		return "", s.err
	}
	if len(s.outputs) == 0 {
		return "", errors.New("script exhausted")
	}
	out := s.outputs[0]
	s.outputs = s.outputs[1:]
	return out, nil
}

type fakeTool struct {
	name  string
	calls []string
	fn    func(call int, input string) (ToolResult, error)
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }

func (f *fakeTool) Invoke(_ context.Context, input string) (ToolResult, error) {
	f.calls = append(f.calls, input)
	return f.fn(len(f.calls), input)
}

func staticTool(name, observation string) *fakeTool {
	return &fakeTool{name: name, fn: func(int, string) (ToolResult, error) {
		return ToolResult{Observation: observation}, nil
	}}
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func act(name, input string) string {
	return "I should look this up</Thought>\n<Action>" + name + "</Action>\n<Action Input>" + input + "</Action Input>"
}

func finish(answer string) string {
	return "I now know the final answer</Thought>\n<Final Answer>" + answer + "</Final Answer>"
}
