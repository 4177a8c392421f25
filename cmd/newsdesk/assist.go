package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mohammad-safakhou/newsdesk/internal/agent/core"
	"github.com/spf13/cobra"
)

func assistCMD(load configLoader) *cobra.Command {
	var (
		articlePath string
		asJSON      bool
	)
	var assist = &cobra.Command{
		Use:   "assist",
		Short: "Run an article assistant: interview, editorial or broadcast",
	}
	assist.PersistentFlags().StringVarP(&articlePath, "file", "f", "-", "article file, - for stdin")
	assist.PersistentFlags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	// run loads the article and a desk, then hands both to fn.
	run := func(cmd *cobra.Command, fn func(d *core.Desk, article string) (any, error)) error {
		article, err := readArticle(cmd.InOrStdin(), articlePath)
		if err != nil {
			return err
		}
		cfg, err := load()
		if err != nil {
			return err
		}
		llm, err := core.NewLLMProvider(cfg.LLM)
		if err != nil {
			return err
		}
		desk, err := core.NewDesk(llm, log.New(log.Writer(), "[DESK] ", log.LstdFlags), nil)
		if err != nil {
			return err
		}
		result, err := fn(desk, article)
		if err != nil {
			return err
		}
		return printAssist(cmd.OutOrStdout(), result, asJSON)
	}

	interview := &cobra.Command{
		Use:   "interview",
		Short: "Propose interviews with appointment emails and guides",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *core.Desk, article string) (any, error) {
				return d.Interview(cmd.Context(), article)
			})
		},
	}

	var sourcesPath string
	editorial := &cobra.Command{
		Use:   "editorial",
		Short: "Review an article and propose headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			var sources string
			if sourcesPath != "" {
				b, err := os.ReadFile(sourcesPath)
				if err != nil {
					return err
				}
				sources = string(b)
			}
			return run(cmd, func(d *core.Desk, article string) (any, error) {
				return d.Edit(cmd.Context(), article, sources)
			})
		},
	}
	editorial.Flags().StringVar(&sourcesPath, "sources", "", "file with the sources the article was written from")

	var title, date string
	broadcast := &cobra.Command{
		Use:   "broadcast",
		Short: "Write an on-screen title and an announcer script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(d *core.Desk, article string) (any, error) {
				return d.Broadcast(cmd.Context(), core.BroadcastRequest{Title: title, Article: article, Date: date})
			})
		},
	}
	broadcast.Flags().StringVar(&title, "title", "", "article title")
	broadcast.Flags().StringVar(&date, "date", "", "broadcast date (default today)")

	assist.AddCommand(interview, editorial, broadcast)
	return assist
}

func readArticle(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "" || path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}
	return string(b), nil
}

// printAssist writes an assistant result as indented JSON or as plain text.
func printAssist(w io.Writer, result any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	switch r := result.(type) {
	case []core.InterviewPlan:
		for i, p := range r {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "## %s\n\n%s\n\n%s\n", p.Who, strings.TrimSpace(p.EmailMessage), strings.TrimSpace(p.InterviewGuide))
		}
	case core.Editorial:
		fmt.Fprintln(w, "Feedback:")
		for _, f := range r.Feedback {
			fmt.Fprintf(w, "- %q: %s\n", f.Excerpt, f.Feedback)
		}
		fmt.Fprintln(w, "\nHeadlines:")
		for _, h := range r.Headlines {
			fmt.Fprintf(w, "- %s\n", h.Title)
		}
	case core.Broadcast:
		fmt.Fprintf(w, "%s\n\n%s\n", r.Title, r.Script)
	default:
		return fmt.Errorf("unexpected result %T", result)
	}
	return nil
}
