package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/mohammad-safakhou/newsdesk/internal/helpers"
	"github.com/mohammad-safakhou/newsdesk/internal/render"
	"github.com/spf13/cobra"
)

func researchCMD(load configLoader) *cobra.Command {
	var (
		assistant string
		translate bool
		asJSON    bool
		htmlOut   string
	)
	var research = &cobra.Command{
		Use:   "research [topic]",
		Short: "Research a topic once and print the attributed answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			report, runErr := a.orch.ProcessTopic(cmd.Context(), core.Request{
				Topic:     strings.Join(args, " "),
				Assistant: assistant,
				Translate: translate,
			})
			if runErr != nil && !errors.Is(runErr, core.ErrInconclusive) {
				return runErr
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printReport(out, report, runErr)
			}
			if htmlOut != "" && runErr == nil {
				f, err := os.Create(htmlOut)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := render.Page(f, report, cfg.Highlight.Palette); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	research.Flags().StringVarP(&assistant, "assistant", "a", "", "assistant profile: writing or idea (default agent.default_profile)")
	research.Flags().BoolVar(&translate, "translate", false, "add a Japanese translation of English output")
	research.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	research.Flags().StringVar(&htmlOut, "html", "", "also write the highlighted report to this file")
	return research
}

// printReport writes the answer followed by the sources it drew from.
func printReport(w io.Writer, report core.Report, runErr error) {
	if runErr != nil {
		fmt.Fprintf(w, "run %s: %v\n", report.ID, runErr)
		return
	}
	fmt.Fprintf(w, "%s\n", report.Output)
	if report.Translation != "" {
		fmt.Fprintf(w, "\n%s\n", report.Translation)
	}
	res := report.Attribution
	citations := helpers.CitationsFromSources(res.Sources, res.SourcesUsed, report.FinishedAt)
	if len(citations) > 0 {
		fmt.Fprintf(w, "\nSources (%.0f%% attributed):\n", report.Coverage*100)
		for _, line := range helpers.FormatCitations(citations) {
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, "\nrun %s, %d step(s)\n", report.ID, len(report.Steps))
}
