// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch generates several modules from a YAML job file against one
// shared orchestrator, so identical jobs are generated once.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/modulegen/internal/pipeline"
	"github.com/pdiddy/modulegen/internal/render"
	"github.com/pdiddy/modulegen/internal/source"
	"github.com/pdiddy/modulegen/pkg/types"
)

// Job describes one module to generate.
type Job struct {
	Name     string   `yaml:"name,omitempty"`
	Topic    string   `yaml:"topic,omitempty"`
	File     string   `yaml:"file,omitempty"`
	Language string   `yaml:"language,omitempty"`
	Sections string   `yaml:"sections,omitempty"`
	Formats  []string `yaml:"formats,omitempty"`
}

// File is the job file layout. Defaults fill fields a job leaves empty.
type File struct {
	Defaults Job   `yaml:"defaults"`
	Jobs     []Job `yaml:"jobs"`
}

// Load reads a job file. Relative job file paths are resolved against the
// job file's directory.
func Load(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("job file %s lists no jobs", path)
	}

	base := filepath.Dir(path)
	jobs := make([]Job, len(f.Jobs))
	for i, j := range f.Jobs {
		j = j.withDefaults(f.Defaults)
		if j.File != "" && !filepath.IsAbs(j.File) {
			j.File = filepath.Join(base, j.File)
		}
		if j.File == "" && strings.TrimSpace(j.Topic) == "" {
			return nil, fmt.Errorf("job %d: needs a topic or a file", i+1)
		}
		if j.Name == "" {
			j.Name = defaultName(j)
		}
		jobs[i] = j
	}
	return jobs, nil
}

func (j Job) withDefaults(d Job) Job {
	if j.Language == "" {
		j.Language = d.Language
	}
	if j.Sections == "" {
		j.Sections = d.Sections
	}
	if len(j.Formats) == 0 {
		j.Formats = d.Formats
	}
	return j
}

func defaultName(j Job) string {
	if strings.TrimSpace(j.Topic) != "" {
		return render.Slug(j.Topic)
	}
	return render.Slug(strings.TrimSuffix(filepath.Base(j.File), filepath.Ext(j.File)))
}

// Result is the outcome of one job.
type Result struct {
	Job         Job
	Paths       []string
	Cached      bool
	Diagnostics bool
	Err         error
}

// Runner executes jobs.
type Runner struct {
	Orchestrator *pipeline.Orchestrator
	Loader       *source.Loader
	OutputDir    string
	Meta         render.Meta
	Language     string
	Formats      []string
	Concurrency  int
	Force        bool
	Log          *zap.Logger

	// OnDone is called after each job finishes, in completion order.
	OnDone func(done, total int, r Result)
}

// Run executes jobs with at most Concurrency in flight. A failing job does
// not stop the others; the returned error joins every job error.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	limit := r.Concurrency
	if limit <= 0 {
		limit = 1
	}

	results := make([]Result, len(jobs))
	var finished atomic.Int32
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			res := r.runJob(ctx, job)
			results[i] = res
			if res.Err != nil {
				log.Warn("job failed", zap.String("job", job.Name), zap.Error(res.Err))
			} else {
				log.Info("job done", zap.String("job", job.Name), zap.Bool("cached", res.Cached), zap.Strings("paths", res.Paths))
			}
			if r.OnDone != nil {
				r.OnDone(int(finished.Add(1)), len(jobs), res)
			}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("job %s: %w", res.Job.Name, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Runner) runJob(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	language := job.Language
	if language == "" {
		language = r.Language
	}
	if language == "" {
		language = types.DefaultLanguage
	}
	formats := job.Formats
	if len(formats) == 0 {
		formats = r.Formats
	}
	parsed, err := render.ParseFormats(formats)
	if err != nil {
		res.Err = err
		return res
	}
	if len(parsed) == 0 {
		parsed = []render.Format{render.FormatText}
	}

	var input types.NormalizedInput
	if job.File != "" {
		loader := r.Loader
		if loader == nil {
			loader = &source.Loader{}
		}
		input, err = loader.Load(ctx, job.File, job.Topic, language)
		if err != nil {
			res.Err = err
			return res
		}
	} else {
		input = source.FromTopic(job.Topic, language)
	}

	cat := r.Orchestrator.Catalog()
	ids := cat.Defaults()
	if job.Sections != "" {
		ids = cat.ParseTaskIDs(job.Sections)
	}

	doc, err := r.Orchestrator.Run(ctx, input, ids, pipeline.RunOptions{
		Force:      r.Force,
		OnCacheHit: func() { res.Cached = true },
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Diagnostics = doc.HasDiagnostics()

	meta := r.Meta
	meta.Language = language
	res.Paths, res.Err = render.WriteFiles(r.OutputDir, job.Name, doc, meta, parsed)
	return res
}
