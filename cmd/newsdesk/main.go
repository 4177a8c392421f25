package main

import (
	"fmt"
	"os"

	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var cfgPath string
	var root = &cobra.Command{
		Use:           "newsdesk",
		Short:         "Research assistant with per-source attribution",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")
	load := func() (*config.Config, error) { return config.LoadConfig(cfgPath) }

	root.AddCommand(serveCMD(load), researchCMD(load), assistCMD(load), migrateCMD(load), tokenCMD(load))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type configLoader func() (*config.Config, error)
