package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/protocol"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/telemetry"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInconclusive is returned when the step budget runs out before the model
// produces a final answer.
var ErrInconclusive = errors.New("agent stopped before reaching a final answer")

// InconclusiveError carries the steps taken by an inconclusive run.
type InconclusiveError struct {
	MaxSteps int
	Steps    []protocol.Step
}

func (e *InconclusiveError) Error() string {
	return fmt.Sprintf("%v (max_steps=%d)", ErrInconclusive, e.MaxSteps)
}

func (e *InconclusiveError) Unwrap() error { return ErrInconclusive }

// ExecutorOptions bounds one run of the loop.
type ExecutorOptions struct {
	MaxSteps     int
	ToolRetries  int
	RetryBackoff time.Duration
	Stop         []string
	Debug        bool
}

// Outcome is what a finished loop produced.
type Outcome struct {
	Output  string
	Steps   []protocol.Step
	Sources []attribution.SourceRecord
}

// Executor drives the reason/act/observe loop: one model call and at most one
// tool call per step, strictly sequential.
type Executor struct {
	llm       LLMProvider
	tools     *Registry
	opts      ExecutorOptions
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

var executorTracer trace.Tracer = otel.Tracer("newsdesk/internal/agent/executor")

// NewExecutor builds an executor. A nil logger discards debug output.
func NewExecutor(llm LLMProvider, tools *Registry, opts ExecutorOptions, logger *log.Logger, tel *telemetry.Telemetry) *Executor {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 15
	}
	if opts.ToolRetries < 0 {
		opts.ToolRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	if len(opts.Stop) == 0 {
		opts.Stop = []string{protocol.StopSequence}
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[AGENT] ", log.LstdFlags)
	}
	return &Executor{llm: llm, tools: tools, opts: opts, logger: logger, telemetry: tel}
}

// Run loops until the model finishes, a hard error occurs or MaxSteps model
// turns have been spent. Partial steps are returned alongside errors.
func (e *Executor) Run(ctx context.Context, profile Profile, topic string) (Outcome, error) {
	ctx, span := executorTracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("agent.profile", profile.Name),
		attribute.Int("agent.max_steps", e.opts.MaxSteps),
	))
	defer span.End()

	var out Outcome
	for turn := 0; turn < e.opts.MaxSteps; turn++ {
		if err := ctx.Err(); err != nil {
			return e.fail(span, out, err)
		}
		prompt := profile.Render(topic, e.tools, protocol.RenderScratchpad(out.Steps))
		if e.opts.Debug {
			e.logger.Printf("turn %d prompt:\n%s", turn, prompt)
		}
		raw, err := e.generate(ctx, prompt)
		if err != nil {
			return e.fail(span, out, fmt.Errorf("model call: %w", err))
		}
		e.telemetry.RecordStep()

		instr, err := protocol.Parse(raw)
		if err != nil {
			var perr *protocol.ParseError
			if !errors.As(err, &perr) {
				return e.fail(span, out, err)
			}
			if perr.Reason == protocol.AmbiguousBothActionAndFinish {
				e.logger.Printf("warn: %v", perr)
			}
			e.telemetry.RecordParseError(perr.Reason.String())
			out.Steps = append(out.Steps, protocol.Step{
				Action:      protocol.Act{Name: protocol.ExceptionAction, Input: "Invalid or incomplete response", Log: raw},
				Observation: perr.Observation(),
			})
			continue
		}

		switch in := instr.(type) {
		case protocol.Finish:
			out.Output = in.Output
			span.SetAttributes(attribute.Int("agent.steps", len(out.Steps)))
			return out, nil
		case protocol.Act:
			tool, err := e.tools.Lookup(in.Name)
			if err != nil {
				return e.fail(span, out, err)
			}
			res, err := e.invoke(ctx, tool, in.Input)
			if err != nil {
				return e.fail(span, out, err)
			}
			out.Steps = append(out.Steps, protocol.Step{Action: in, Observation: res.Observation})
			out.Sources = append(out.Sources, res.Sources...)
		}
	}
	err := &InconclusiveError{MaxSteps: e.opts.MaxSteps, Steps: out.Steps}
	return e.fail(span, out, err)
}

func (e *Executor) fail(span trace.Span, out Outcome, err error) (Outcome, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return out, err
}

// generate calls the model and truncates at the first stop sequence in case
// the provider ignored it.
func (e *Executor) generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := executorTracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", e.llm.Name()),
		attribute.Int("llm.prompt_chars", len(prompt)),
	))
	defer span.End()

	start := time.Now()
	raw, err := e.llm.Generate(ctx, prompt, e.opts.Stop)
	e.telemetry.RecordModelCall(e.llm.Name(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	for _, stop := range e.opts.Stop {
		if i := strings.Index(raw, stop); stop != "" && i >= 0 {
			raw = raw[:i]
		}
	}
	return raw, nil
}

// invoke runs a tool with exponential backoff between attempts.
func (e *Executor) invoke(ctx context.Context, tool Tool, input string) (ToolResult, error) {
	ctx, span := executorTracer.Start(ctx, "tool.invoke", trace.WithAttributes(
		attribute.String("tool.name", tool.Name()),
	))
	defer span.End()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = e.opts.RetryBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(e.opts.ToolRetries)), ctx)

	var (
		res      ToolResult
		attempts int
	)
	err := backoff.Retry(func() error {
		attempts++
		start := time.Now()
		r, err := tool.Invoke(ctx, input)
		e.telemetry.RecordToolCall(tool.Name(), time.Since(start), err)
		if err != nil {
			e.logger.Printf("tool %s attempt %d failed: %v", tool.Name(), attempts, err)
			return err
		}
		res = r
		return nil
	}, policy)
	span.SetAttributes(attribute.Int("tool.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ToolResult{}, &ToolError{Tool: tool.Name(), Input: input, Attempts: attempts, Err: err}
	}
	return res, nil
}
