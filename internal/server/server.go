package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/archive"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
)

// Researcher runs one research request.
type Researcher interface {
	ProcessTopic(ctx context.Context, req core.Request) (core.Report, error)
}

// ReportReader loads persisted reports.
type ReportReader interface {
	GetReport(ctx context.Context, id string) (core.Report, bool, error)
	ListReports(ctx context.Context, limit int) ([]store.ReportSummary, error)
}

// ArchiveSearcher queries the report archive.
type ArchiveSearcher interface {
	Search(q string, limit int) ([]archive.Hit, error)
}

// Deps are the collaborators the HTTP API is built from. Archive, Desk,
// Metrics and Secret are optional.
type Deps struct {
	Config   *config.Config
	Research Researcher
	Reports  ReportReader
	Archive  ArchiveSearcher
	Desk     Assistant
	Metrics  http.Handler
	Secret   []byte
	Logger   *log.Logger
}

// New builds the echo instance serving the API.
func New(d Deps) (*echo.Echo, error) {
	if d.Config == nil {
		return nil, errors.New("config is nil")
	}
	if d.Research == nil {
		return nil, errors.New("researcher is nil")
	}
	if d.Reports == nil {
		return nil, errors.New("report reader is nil")
	}
	if d.Logger == nil {
		d.Logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		d.Logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	api := e.Group("/api")
	if len(d.Secret) > 0 {
		api.Use(runtime.EchoAuthMiddleware(d.Secret))
	} else {
		d.Logger.Printf("warn: server.jwt_secret not set, /api is unauthenticated")
	}
	h := &ReportsHandler{
		cfg:      d.Config,
		research: d.Research,
		reports:  d.Reports,
		archive:  d.Archive,
		logger:   d.Logger,
	}
	h.Register(api)
	if d.Desk != nil {
		assist := &AssistHandler{desk: d.Desk, timeout: d.Config.Server.RequestTimeout, logger: d.Logger}
		assist.Register(api)
	}
	return e, nil
}

// Run serves e on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
