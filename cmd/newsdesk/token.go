package main

import (
	"fmt"
	"time"

	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	"github.com/spf13/cobra"
)

func tokenCMD(load configLoader) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		scopes  []string
	)
	var token = &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with server.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			secret, err := runtime.LoadJWTSecret(cfg)
			if err != nil {
				return err
			}
			tok, err := runtime.SignJWT(subject, secret, ttl, scopes...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	token.Flags().StringVar(&subject, "subject", "cli", "token subject")
	token.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	token.Flags().StringSliceVar(&scopes, "scope", []string{runtime.ScopeRead, runtime.ScopeResearch}, "granted scopes")
	return token
}
