package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/telemetry"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxBroadcastTitle is the longest on-screen title, in characters.
const MaxBroadcastTitle = 20

var (
	// ErrEmptyArticle is returned when there is no article to work on.
	ErrEmptyArticle = errors.New("article is required")
	// ErrMalformedOutput is returned when the model reply is not the JSON
	// list the prompt asked for.
	ErrMalformedOutput = errors.New("malformed model output")
)

// InterviewPlan is one person to interview about an article.
type InterviewPlan struct {
	Who            string `json:"who"`
	EmailMessage   string `json:"email_message"`
	InterviewGuide string `json:"interview_guide"`
}

// Feedback is an editor comment on one excerpt of an article.
type Feedback struct {
	Excerpt  string `json:"excerpt"`
	Feedback string `json:"feedback"`
}

// Headline is a proposed article title.
type Headline struct {
	Title string `json:"title"`
}

// Editorial is the editor review of an article.
type Editorial struct {
	Feedback  []Feedback `json:"feedback"`
	Headlines []Headline `json:"headlines"`
}

// BroadcastRequest is an article to turn into an announcer script. Date is
// the broadcast day; empty means today.
type BroadcastRequest struct {
	Title   string `json:"title"`
	Article string `json:"article"`
	Date    string `json:"date"`
}

// Broadcast is the on-screen title and the script read on air.
type Broadcast struct {
	Title  string `json:"title"`
	Script string `json:"script"`
}

// Desk runs the single-call assistants that work on a written article
// instead of researching a topic.
type Desk struct {
	llm       LLMProvider
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	now       func() time.Time
}

var deskTracer trace.Tracer = otel.Tracer("newsdesk/internal/agent/desk")

func NewDesk(llm LLMProvider, logger *log.Logger, tel *telemetry.Telemetry) (*Desk, error) {
	if llm == nil {
		return nil, errors.New("llm provider is nil")
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[DESK] ", log.LstdFlags)
	}
	return &Desk{llm: llm, logger: logger, telemetry: tel, now: time.Now}, nil
}

// Interview proposes people to interview, with an appointment email and an
// interview guide for each.
func (d *Desk) Interview(ctx context.Context, article string) ([]InterviewPlan, error) {
	article = strings.TrimSpace(article)
	if article == "" {
		return nil, ErrEmptyArticle
	}
	raw, err := d.generate(ctx, "interview", InterviewPrompt(article))
	if err != nil {
		return nil, err
	}
	var plans []InterviewPlan
	if err := decodeList(raw, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Edit reviews article against sources and proposes headlines.
func (d *Desk) Edit(ctx context.Context, article, sources string) (Editorial, error) {
	article = strings.TrimSpace(article)
	if article == "" {
		return Editorial{}, ErrEmptyArticle
	}
	var out Editorial
	raw, err := d.generate(ctx, "editorial", EditorialPrompt(article, strings.TrimSpace(sources)))
	if err != nil {
		return Editorial{}, err
	}
	if err := decodeList(raw, &out.Feedback); err != nil {
		return Editorial{}, fmt.Errorf("feedback: %w", err)
	}
	raw, err = d.generate(ctx, "headlines", HeadlinePrompt(article))
	if err != nil {
		return Editorial{}, err
	}
	if err := decodeList(raw, &out.Headlines); err != nil {
		return Editorial{}, fmt.Errorf("headlines: %w", err)
	}
	return out, nil
}

// Broadcast writes a short on-screen title and an announcer script.
func (d *Desk) Broadcast(ctx context.Context, req BroadcastRequest) (Broadcast, error) {
	req.Article = strings.TrimSpace(req.Article)
	if req.Article == "" {
		return Broadcast{}, ErrEmptyArticle
	}
	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		req.Date = d.now().Format("2006-01-02")
	}
	title, err := d.generate(ctx, "broadcast_title", BroadcastTitlePrompt(strings.TrimSpace(req.Title), req.Article))
	if err != nil {
		return Broadcast{}, err
	}
	script, err := d.generate(ctx, "broadcast_script", BroadcastScriptPrompt(req.Article, req.Date))
	if err != nil {
		return Broadcast{}, err
	}
	return Broadcast{Title: clipTitle(title), Script: script}, nil
}

// generate makes one model call and returns the cleaned reply.
func (d *Desk) generate(ctx context.Context, task, prompt string) (string, error) {
	ctx, span := deskTracer.Start(ctx, "desk."+task, trace.WithAttributes(
		attribute.String("llm.provider", d.llm.Name()),
	))
	defer span.End()
	start := time.Now()
	raw, err := d.llm.Generate(ctx, prompt, nil)
	d.telemetry.RecordModelCall(d.llm.Name(), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Printf("%s: generate: %v", task, err)
		return "", fmt.Errorf("%s: %w", task, err)
	}
	return helpers.CleanOutput(raw), nil
}

// decodeList unmarshals the outermost JSON array in s into out. Text outside
// the brackets is ignored.
func decodeList(s string, out any) error {
	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON list in %q", ErrMalformedOutput, helpers.Truncate(s, 80))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

// clipTitle keeps the first line of title, cut to MaxBroadcastTitle runes.
func clipTitle(title string) string {
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if r := []rune(title); len(r) > MaxBroadcastTitle {
		title = string(r[:MaxBroadcastTitle])
	}
	return title
}
