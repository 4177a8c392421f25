package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
)

// Assistant runs the article assistants.
type Assistant interface {
	Interview(ctx context.Context, article string) ([]core.InterviewPlan, error)
	Edit(ctx context.Context, article, sources string) (core.Editorial, error)
	Broadcast(ctx context.Context, req core.BroadcastRequest) (core.Broadcast, error)
}

// AssistHandler serves the interview, editorial and broadcast assistants.
type AssistHandler struct {
	desk    Assistant
	timeout time.Duration
	logger  *log.Logger
}

func (h *AssistHandler) Register(g *echo.Group) {
	write := runtime.RequireScopes(runtime.ScopeResearch)
	g.POST("/assist/interview", h.interview, write)
	g.POST("/assist/editorial", h.editorial, write)
	g.POST("/assist/broadcast", h.broadcast, write)
}

type articleRequest struct {
	Article string `json:"article"`
	Sources string `json:"sources"`
}

func (h *AssistHandler) interview(c echo.Context) error {
	var body articleRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := h.context(c)
	defer cancel()
	plans, err := h.desk.Interview(ctx, body.Article)
	if err != nil {
		return h.fail("interview", err)
	}
	if plans == nil {
		plans = []core.InterviewPlan{}
	}
	return c.JSON(http.StatusOK, plans)
}

func (h *AssistHandler) editorial(c echo.Context) error {
	var body articleRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := h.context(c)
	defer cancel()
	ed, err := h.desk.Edit(ctx, body.Article, body.Sources)
	if err != nil {
		return h.fail("editorial", err)
	}
	return c.JSON(http.StatusOK, ed)
}

func (h *AssistHandler) broadcast(c echo.Context) error {
	var body core.BroadcastRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := h.context(c)
	defer cancel()
	b, err := h.desk.Broadcast(ctx, body)
	if err != nil {
		return h.fail("broadcast", err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *AssistHandler) context(c echo.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.timeout)
}

func (h *AssistHandler) fail(task string, err error) error {
	switch {
	case errors.Is(err, core.ErrEmptyArticle):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	default:
		h.logger.Printf("%s failed: %v", task, err)
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}
