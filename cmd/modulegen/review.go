// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Proofread text for spelling, grammar and clarity",
	Long: `Review sends text to the backend for a single revision pass and prints
the revised text. Text can come from --text, --file, or standard input when
neither is given. The revision is written in the configured language.`,
	Example: `  modulegen review --text "Their are many reason to study."
  modulegen review --file draft.docx --output revised.txt
  cat notes.txt | modulegen review --context "lecture notes"`,
	RunE: runReview,
}

func init() {
	f := reviewCmd.Flags()
	f.String("file", "", "document to review (.txt, .md, .html, .docx or .pdf)")
	f.String("text", "", "text to review")
	f.String("context", review.DefaultContext, "short label describing the text")
	f.String("output", "", "write the revised text to this file instead of stdout")
	f.Bool("force", false, "ignore cached results and regenerate")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	text, _ := cmd.Flags().GetString("text")
	label, _ := cmd.Flags().GetString("context")
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if file == "" && text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading standard input: %w", err)
		}
		text = string(data)
	}

	orch, err := newOrchestrator(ctx, cfg, catalog.Review())
	if err != nil {
		return err
	}
	reviser, err := review.New(orch, newLoader(cfg))
	if err != nil {
		return err
	}

	res, err := reviser.Review(ctx, review.Request{
		Text:     text,
		File:     file,
		Language: cfg.Language,
		Context:  label,
		Force:    force,
	})
	if errors.Is(err, review.ErrReviewFailed) {
		status(os.Stderr, errorStyle, "failed", res.Text)
		return err
	}
	if err != nil {
		return err
	}
	if res.Cached {
		status(os.Stderr, okStyle, "cached", "served from cache")
	}

	if output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return err
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(output, []byte(res.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	status(os.Stderr, okStyle, "wrote", output)
	return nil
}
