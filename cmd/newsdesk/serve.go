package main

import (
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	srv "github.com/mohammad-safakhou/newsdesk/internal/server"
	"github.com/spf13/cobra"
)

func serveCMD(load configLoader) *cobra.Command {
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server and configured schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
			if !cfg.Storage.Postgres.Enabled() {
				return errors.New("postgres not configured (storage.postgres.url or host/dbname)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()

			desk, err := core.NewDesk(a.orch.LLM(), log.New(log.Writer(), "[DESK] ", log.LstdFlags), a.tel)
			if err != nil {
				return err
			}
			secret, err := runtime.LoadJWTSecret(cfg)
			if err != nil && !errors.Is(err, runtime.ErrNoJWTSecret) {
				return err
			}
			e, err := srv.New(srv.Deps{
				Config:   cfg,
				Research: a.orch,
				Reports:  a.store,
				Archive:  a.archive,
				Desk:     desk,
				Metrics:  a.tel.Handler(),
				Secret:   secret,
				Logger:   log.New(log.Writer(), "[HTTP] ", log.LstdFlags),
			})
			if err != nil {
				return err
			}
			if cfg.Telemetry.Enabled {
				metrics := runtime.ServeMetrics(cfg.Telemetry.MetricsPort, a.tel.Handler())
				defer metrics.Close()
			}

			sched := &srv.Scheduler{
				Schedules: cfg.Schedules,
				Research:  a.orch,
				Repo:      a.repos.Schedules,
				Latest:    a.store,
				Logger:    log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
			}
			sched.Start(ctx)
			defer sched.Wait()

			return srv.Run(ctx, e, cfg.Server.Address)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.address)")
	return serve
}
