package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Store struct {
	DB *sql.DB
}

// ReportSummary is the listing view of a report.
type ReportSummary struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Assistant  string     `json:"assistant"`
	Status     string     `json:"status"`
	Coverage   float64    `json:"coverage"`
	Sources    []string   `json:"sources"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

var tracer = otel.Tracer("newsdesk/internal/store")

// New opens the database described by cfg.
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	return NewWithDSN(ctx, cfg.DSN())
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

const saveReportSQL = `
INSERT INTO reports (id, topic, assistant, status, error, output, translation, steps, attribution, source_links, sources_used, coverage, started_at, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  error = EXCLUDED.error,
  output = EXCLUDED.output,
  translation = EXCLUDED.translation,
  steps = EXCLUDED.steps,
  attribution = EXCLUDED.attribution,
  source_links = EXCLUDED.source_links,
  sources_used = EXCLUDED.sources_used,
  coverage = EXCLUDED.coverage,
  finished_at = EXCLUDED.finished_at;
`

// SaveReport upserts a report by id.
func (s *Store) SaveReport(ctx context.Context, r core.Report) error {
	ctx, span := tracer.Start(ctx, "store.save_report")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", r.ID), attribute.String("run.status", r.Status))

	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	attr, err := json.Marshal(r.Attribution)
	if err != nil {
		return fmt.Errorf("marshal attribution: %w", err)
	}
	links := make([]string, len(r.Attribution.Sources))
	for i, src := range r.Attribution.Sources {
		links[i] = src.Link
	}
	used := make([]int64, len(r.Attribution.SourcesUsed))
	for i, u := range r.Attribution.SourcesUsed {
		used[i] = int64(u)
	}

	_, err = s.DB.ExecContext(ctx, saveReportSQL,
		r.ID, r.Topic, r.Assistant, r.Status, r.Error, r.Output, r.Translation,
		steps, attr, pq.Array(links), pq.Array(used), r.Coverage,
		r.StartedAt, nullTime(r.FinishedAt),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// GetReport loads a full report. The bool is false when no row matches.
func (s *Store) GetReport(ctx context.Context, id string) (core.Report, bool, error) {
	var (
		r          core.Report
		steps      []byte
		attr       []byte
		finishedAt sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, `
SELECT id, topic, assistant, status, error, output, translation, steps, attribution, coverage, started_at, finished_at
FROM reports WHERE id = $1`, id).Scan(
		&r.ID, &r.Topic, &r.Assistant, &r.Status, &r.Error, &r.Output, &r.Translation,
		&steps, &attr, &r.Coverage, &r.StartedAt, &finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Report{}, false, nil
	}
	if err != nil {
		return core.Report{}, false, err
	}
	if err := json.Unmarshal(steps, &r.Steps); err != nil {
		return core.Report{}, false, fmt.Errorf("decode steps: %w", err)
	}
	if err := json.Unmarshal(attr, &r.Attribution); err != nil {
		return core.Report{}, false, fmt.Errorf("decode attribution: %w", err)
	}
	if finishedAt.Valid {
		r.FinishedAt = finishedAt.Time
	}
	return r, true, nil
}

// ListReports returns the most recent reports first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, topic, assistant, status, coverage, source_links, started_at, finished_at
FROM reports ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReportSummary
	for rows.Next() {
		var (
			rs         ReportSummary
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&rs.ID, &rs.Topic, &rs.Assistant, &rs.Status, &rs.Coverage, pq.Array(&rs.Sources), &rs.StartedAt, &finishedAt); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			rs.FinishedAt = &t
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LatestReportTime is the start time of the newest report for topic and
// assistant, or nil when there is none.
func (s *Store) LatestReportTime(ctx context.Context, topic, assistant string) (*time.Time, error) {
	var t sql.NullTime
	err := s.DB.QueryRowContext(ctx,
		`SELECT MAX(started_at) FROM reports WHERE topic = $1 AND assistant = $2`, topic, assistant).Scan(&t)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
