package archive

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
)

// document is what gets indexed per report.
type document struct {
	Topic       string `json:"topic"`
	Assistant   string `json:"assistant"`
	Status      string `json:"status"`
	Output      string `json:"output"`
	Translation string `json:"translation"`
	Sources     string `json:"sources"`
	StartedAt   string `json:"started_at"`
}

// Hit is one search result.
type Hit struct {
	ID        string   `json:"id"`
	Score     float64  `json:"score"`
	Topic     string   `json:"topic"`
	Assistant string   `json:"assistant"`
	StartedAt string   `json:"started_at"`
	Fragments []string `json:"fragments,omitempty"`
}

// Archive is a full-text index over finished reports.
type Archive struct {
	index bleve.Index
}

// Open opens the archive at cfg.Path, creating it when missing. An empty path
// gives an in-memory archive.
func Open(cfg config.ArchiveConfig) (*Archive, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
		return &Archive{index: idx}, nil
	}
	if _, err := os.Stat(path); err == nil {
		idx, err := bleve.Open(path)
		if err != nil {
			return nil, err
		}
		return &Archive{index: idx}, nil
	}
	idx, err := bleve.New(path, bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Archive{index: idx}, nil
}

func (a *Archive) Close() error { return a.index.Close() }

// IndexReport adds or replaces the report's document.
func (a *Archive) IndexReport(r core.Report) error {
	if r.ID == "" {
		return errors.New("archive: report has no id")
	}
	var sources []string
	for _, s := range r.Attribution.Sources {
		sources = append(sources, s.Title+" "+s.Link)
	}
	return a.index.Index(r.ID, document{
		Topic:       r.Topic,
		Assistant:   r.Assistant,
		Status:      r.Status,
		Output:      r.Output,
		Translation: r.Translation,
		Sources:     strings.Join(sources, "\n"),
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
	})
}

// Search runs a match query over all indexed text.
func (a *Archive) Search(q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, errors.New("archive: empty query")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(q), limit, 0, false)
	req.Fields = []string{"topic", "assistant", "started_at"}
	req.Highlight = bleve.NewHighlight()
	res, err := a.index.Search(req)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{
			ID:        h.ID,
			Score:     h.Score,
			Topic:     field(h.Fields, "topic"),
			Assistant: field(h.Fields, "assistant"),
			StartedAt: field(h.Fields, "started_at"),
		}
		for _, frags := range h.Fragments {
			hit.Fragments = append(hit.Fragments, frags...)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count is the number of indexed reports.
func (a *Archive) Count() (uint64, error) { return a.index.DocCount() }

func field(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
