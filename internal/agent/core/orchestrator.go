package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/telemetry"
	"github.com/mohammad-safakhou/newsdesk/internal/attribution"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Orchestrator runs the research pipeline: loop, cleanup, attribution,
// optional translation, then persistence.
type Orchestrator struct {
	config    *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	llm       LLMProvider
	executor  *Executor

	store ReportStore
	index ReportIndex
}

var orchestratorTracer trace.Tracer = otel.Tracer("newsdesk/internal/agent/orchestrator")

// NewOrchestrator wires an executor over the given model and tools.
func NewOrchestrator(cfg *config.Config, llm LLMProvider, tools *Registry, logger *log.Logger, tel *telemetry.Telemetry) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if llm == nil {
		return nil, errors.New("llm provider is nil")
	}
	if tools == nil {
		return nil, errors.New("tool registry is nil")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	exec := NewExecutor(llm, tools, ExecutorOptions{
		MaxSteps:     cfg.Agent.MaxSteps,
		ToolRetries:  cfg.Agent.ToolRetries,
		RetryBackoff: cfg.Agent.RetryBackoff,
		Stop:         cfg.Agent.StopSequences,
		Debug:        cfg.General.Debug,
	}, logger, tel)
	return &Orchestrator{config: cfg, logger: logger, telemetry: tel, llm: llm, executor: exec}, nil
}

// AttachStore persists every finished report.
func (o *Orchestrator) AttachStore(s ReportStore) { o.store = s }

// AttachIndex indexes every finished report for search.
func (o *Orchestrator) AttachIndex(idx ReportIndex) { o.index = idx }

// LLM exposes the orchestrator's underlying model provider.
func (o *Orchestrator) LLM() LLMProvider { return o.llm }

// ProcessTopic researches req.Topic and returns the attributed report. On
// failure the partial report (steps so far) is returned with the error.
func (o *Orchestrator) ProcessTopic(ctx context.Context, req Request) (Report, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return Report{}, errors.New("topic is required")
	}
	if req.Assistant == "" {
		req.Assistant = o.config.Agent.DefaultProfile
	}
	profile, err := LookupProfile(req.Assistant)
	if err != nil {
		return Report{}, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	report := Report{ID: req.ID, Topic: req.Topic, Assistant: profile.Name, StartedAt: time.Now().UTC()}
	ctx, span := orchestratorTracer.Start(ctx, "agent.process_topic", trace.WithAttributes(
		attribute.String("run.id", report.ID),
		attribute.String("run.assistant", report.Assistant),
	))
	defer span.End()

	o.logger.Printf("run %s: researching %q with %s assistant", report.ID, req.Topic, profile.Name)
	outcome, err := o.executor.Run(ctx, profile, req.Topic)
	report.Steps = outcome.Steps
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		result := telemetry.OutcomeFailed
		if errors.Is(err, ErrInconclusive) {
			result = telemetry.OutcomeInconclusive
		}
		report.Status, report.Error = result, err.Error()
		o.telemetry.RecordRun(result, report.Duration())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Printf("run %s: %s after %d step(s): %v", report.ID, result, len(report.Steps), err)
		o.saveFailed(ctx, report)
		return report, err
	}

	report.Output = helpers.HTMLToText(helpers.CleanOutput(outcome.Output))
	mode := attribution.DetectMode(report.Output)
	_, attrSpan := orchestratorTracer.Start(ctx, "attribution.attribute", trace.WithAttributes(
		attribute.String("attribution.mode", mode.String()),
		attribute.Int("attribution.records", len(outcome.Sources)),
	))
	res, err := attribution.Attribute(report.Output, outcome.Sources, mode)
	attrSpan.End()
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		err = fmt.Errorf("attribute output: %w", err)
		report.Status, report.Error = telemetry.OutcomeFailed, err.Error()
		o.telemetry.RecordRun(telemetry.OutcomeFailed, report.Duration())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.saveFailed(ctx, report)
		return report, err
	}
	report.Attribution = res
	report.Coverage = res.Coverage()
	o.telemetry.RecordCoverage(report.Coverage)

	if req.Translate {
		report.Translation = o.translate(ctx, report.ID, report.Output, mode)
	}

	report.FinishedAt = time.Now().UTC()
	report.Status = telemetry.OutcomeFinished
	o.telemetry.RecordRun(telemetry.OutcomeFinished, report.Duration())
	o.logger.Printf("run %s: finished in %d step(s), %d/%d sources used, coverage %.2f",
		report.ID, len(report.Steps), len(res.SourcesUsed), len(res.Sources), report.Coverage)

	if o.store != nil {
		if err := o.store.SaveReport(ctx, report); err != nil {
			span.RecordError(err)
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	if o.index != nil {
		if err := o.index.IndexReport(report); err != nil {
			o.logger.Printf("warn: run %s: index report: %v", report.ID, err)
		}
	}
	return report, nil
}

// saveFailed keeps a record of runs that did not finish. Errors are logged.
func (o *Orchestrator) saveFailed(ctx context.Context, report Report) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveReport(ctx, report); err != nil {
		o.logger.Printf("warn: run %s: save failed report: %v", report.ID, err)
	}
}

// translate renders space-delimited output in Japanese. Failures are logged
// and yield an empty translation.
func (o *Orchestrator) translate(ctx context.Context, runID, output string, mode attribution.Mode) string {
	if mode != attribution.WordMode {
		return ""
	}
	ctx, span := orchestratorTracer.Start(ctx, "agent.translate")
	defer span.End()
	start := time.Now()
	raw, err := o.llm.Generate(ctx, TranslationPrompt(output), nil)
	o.telemetry.RecordModelCall(o.llm.Name(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		o.logger.Printf("warn: run %s: translation failed: %v", runID, err)
		return ""
	}
	return helpers.CleanOutput(raw)
}
