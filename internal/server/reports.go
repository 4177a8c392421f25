package server

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/render"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
)

// ReportsHandler serves research requests and stored reports.
type ReportsHandler struct {
	cfg      *config.Config
	research Researcher
	reports  ReportReader
	archive  ArchiveSearcher
	logger   *log.Logger
}

func (h *ReportsHandler) Register(g *echo.Group) {
	g.POST("/research", h.start, runtime.RequireScopes(runtime.ScopeResearch))
	read := runtime.RequireScopes(runtime.ScopeRead)
	g.GET("/runs", h.list, read)
	g.GET("/runs/search", h.search, read)
	g.GET("/runs/:id", h.get, read)
	g.GET("/runs/:id/html", h.html, read)
}

type researchRequest struct {
	Topic     string `json:"topic"`
	Assistant string `json:"assistant"`
	Translate bool   `json:"translate"`
}

// start runs a research request and returns its report. Inconclusive runs
// are returned with status 200 and their status field set.
func (h *ReportsHandler) start(c echo.Context) error {
	var body researchRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	body.Topic = strings.TrimSpace(body.Topic)
	if body.Topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}
	if body.Assistant == "" {
		body.Assistant = h.cfg.Agent.DefaultProfile
	}
	if _, err := core.LookupProfile(body.Assistant); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.cfg.Server.RequestTimeout)
	defer cancel()
	if sub, ok := runtime.SubjectFromContext(ctx); ok {
		h.logger.Printf("research %q requested by %s", body.Topic, sub)
	}
	report, err := h.research.ProcessTopic(ctx, core.Request{
		Topic:     body.Topic,
		Assistant: body.Assistant,
		Translate: body.Translate,
	})
	switch {
	case err == nil, errors.Is(err, core.ErrInconclusive):
		return c.JSON(http.StatusOK, report)
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	default:
		h.logger.Printf("research %q failed: %v", body.Topic, err)
		return c.JSON(http.StatusBadGateway, map[string]interface{}{"error": err.Error(), "report": report})
	}
}

func (h *ReportsHandler) list(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.reports.ListReports(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		return c.JSON(http.StatusOK, []interface{}{})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ReportsHandler) get(c echo.Context) error {
	report, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *ReportsHandler) html(c echo.Context) error {
	report, err := h.load(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.Page(&buf, report, h.cfg.Highlight.Palette); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *ReportsHandler) search(c echo.Context) error {
	if h.archive == nil {
		return echo.NewHTTPError(http.StatusNotFound, "archive disabled")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	hits, err := h.archive.Search(q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hits)
}

func (h *ReportsHandler) load(c echo.Context) (core.Report, error) {
	report, ok, err := h.reports.GetReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return core.Report{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return core.Report{}, echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return report, nil
}
