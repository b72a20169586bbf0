// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/modulegen/internal/batch"
	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/internal/pipeline"
	"github.com/pdiddy/modulegen/internal/render"
	"github.com/pdiddy/modulegen/internal/source"
	"github.com/pdiddy/modulegen/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an educational module from a file or a topic",
	Long: `Generate runs the selected sections against the configured backend and
writes the assembled module in the requested formats. A section whose backend
call fails is kept with a diagnostic body so the rest of the module is still
delivered.

Use --batch with a YAML job file to generate several modules in one process;
identical jobs are generated once.`,
	Example: `  modulegen generate --topic "Photosynthesis" --format pdf --format docx
  modulegen generate --file notes.docx --sections introduction,glossary
  modulegen generate --batch jobs.yaml --concurrency 4`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("file", "", "source document (.txt, .md, .html, .docx or .pdf)")
	f.String("topic", "", "general topic of the module")
	f.String("sections", "", `comma-separated section ids, "default" or "all" (see: modulegen sections)`)
	f.StringSlice("format", nil, "output format, repeatable: text, markdown, docx, pdf, json, yaml")
	f.String("output-dir", "", "directory for rendered files (default output)")
	f.String("name", "", "output file name stem (default derived from topic or file)")
	f.Bool("force", false, "ignore cached results and regenerate")
	f.Bool("preview", false, "print the module as rendered Markdown")
	f.Bool("quiet", false, "suppress the progress bar")
	f.String("batch", "", "YAML job file listing modules to generate")
	f.Int("concurrency", 2, "jobs generated in parallel with --batch")

	_ = viper.BindPFlag("render.output_dir", f.Lookup("output-dir"))
	_ = viper.BindPFlag("render.formats", f.Lookup("format"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orch, err := newOrchestrator(ctx, cfg, catalog.Module())
	if err != nil {
		return err
	}

	if jobFile, _ := cmd.Flags().GetString("batch"); jobFile != "" {
		return runBatch(ctx, cmd, cfg, orch, jobFile)
	}

	file, _ := cmd.Flags().GetString("file")
	topic, _ := cmd.Flags().GetString("topic")
	sections, _ := cmd.Flags().GetString("sections")
	name, _ := cmd.Flags().GetString("name")
	force, _ := cmd.Flags().GetBool("force")
	quiet, _ := cmd.Flags().GetBool("quiet")
	showPreview, _ := cmd.Flags().GetBool("preview")

	formats, err := render.ParseFormats(cfg.Render.Formats)
	if err != nil {
		return err
	}

	input := source.FromTopic(topic, cfg.Language)
	if file != "" {
		input, err = newLoader(cfg).Load(ctx, file, topic, cfg.Language)
		if err != nil {
			return err
		}
	}

	ids := orch.Catalog().Defaults()
	if sections != "" {
		ids = orch.Catalog().ParseTaskIDs(sections)
	}

	bar := newProgressLine(os.Stderr, "generating", quiet)
	doc, err := orch.Run(ctx, input, ids, pipeline.RunOptions{
		Force:      force,
		OnProgress: bar.Update,
		OnCacheHit: func() { status(os.Stderr, okStyle, "cached", "served from cache") },
	})
	if errors.Is(err, pipeline.ErrNoTasksSelected) {
		status(os.Stderr, warnStyle, "empty", "no sections selected; nothing to write")
		return nil
	}
	if err != nil {
		return err
	}

	if name == "" {
		name = outputName(topic, file)
	}
	meta := render.Meta{FooterLabel: cfg.Render.FooterLabel}
	paths, err := render.WriteFiles(cfg.Render.OutputDir, name, doc, meta, formats)
	if err != nil {
		return err
	}
	logger.Info("module written", zap.String("id", doc.ID), zap.Strings("paths", paths))

	for _, p := range paths {
		status(os.Stderr, okStyle, "wrote", p)
	}
	reportDiagnostics(doc)

	if showPreview {
		return preview(os.Stdout, render.Markdown(doc, meta))
	}
	return nil
}

func reportDiagnostics(doc *types.Document) {
	for _, s := range doc.Sections {
		if s.Diagnostic {
			status(os.Stderr, warnStyle, "failed", fmt.Sprintf("%s: %s", s.Title, strings.TrimPrefix(s.Body, pipeline.DiagnosticPrefix)))
		}
	}
}

func outputName(topic, file string) string {
	if strings.TrimSpace(topic) != "" {
		return render.Slug(topic)
	}
	if file != "" {
		return render.Slug(strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)))
	}
	return render.Slug("")
}

func runBatch(ctx context.Context, cmd *cobra.Command, cfg types.GenerationConfig, orch *pipeline.Orchestrator, jobFile string) error {
	jobs, err := batch.Load(jobFile)
	if err != nil {
		return err
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	force, _ := cmd.Flags().GetBool("force")

	runner := &batch.Runner{
		Orchestrator: orch,
		Loader:       newLoader(cfg),
		OutputDir:    cfg.Render.OutputDir,
		Meta:         render.Meta{FooterLabel: cfg.Render.FooterLabel},
		Language:     cfg.Language,
		Formats:      cfg.Render.Formats,
		Concurrency:  concurrency,
		Force:        force,
		Log:          logger.Named("batch"),
		OnDone: func(done, total int, r batch.Result) {
			progressTag := fmt.Sprintf("[%d/%d]", done, total)
			switch {
			case r.Err != nil:
				status(os.Stderr, errorStyle, progressTag, fmt.Sprintf("%s: %v", r.Job.Name, r.Err))
			case r.Diagnostics:
				status(os.Stderr, warnStyle, progressTag, fmt.Sprintf("%s: written with failed sections %s", r.Job.Name, strings.Join(r.Paths, ", ")))
			default:
				status(os.Stderr, okStyle, progressTag, fmt.Sprintf("%s: %s", r.Job.Name, strings.Join(r.Paths, ", ")))
			}
		},
	}
	_, err = runner.Run(ctx, jobs)
	return err
}
