// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the section tasks of one generation request against a
// backend, reusing cached Documents for identical requests.
package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/modulegen/internal/backend"
	"github.com/pdiddy/modulegen/internal/cache"
	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/internal/fingerprint"
	"github.com/pdiddy/modulegen/pkg/types"
)

// DiagnosticPrefix starts the body of every section whose backend call failed.
const DiagnosticPrefix = "Error communicating with the generation backend: "

var (
	// ErrNoInput is returned when a request carries neither a file, pasted
	// text nor a topic.
	ErrNoInput = errors.New("no input: provide a file, text or a topic")

	// ErrNoTasksSelected is returned alongside an empty Document when the
	// selection is empty.
	ErrNoTasksSelected = errors.New("no sections selected")
)

// InputError reports a request rejected before any work was done.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return "invalid input: " + e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// ProgressFunc receives the number of completed tasks and the run total.
type ProgressFunc func(done, total int)

// RunOptions tunes a single Run call.
type RunOptions struct {
	// Force skips the cache lookup and regenerates every section. The fresh
	// Document replaces the cached one. Concurrent forced runs for the same
	// request share one generation; they never join a plain run.
	Force bool

	// OnProgress is called after every task, or once with (total, total) when
	// the Document came from the cache.
	OnProgress ProgressFunc

	// OnCacheHit is called when the Document was served without invoking
	// the backend, either from the cache or from a concurrent identical run.
	OnCacheHit func()
}

// Orchestrator owns the cache and the backend for a process. It is safe for
// concurrent use.
type Orchestrator struct {
	catalog *catalog.Catalog
	backend backend.Backend
	cache   cache.ResultCache
	log     *zap.Logger
	now     func() time.Time
	newID   func(time.Time) string

	cacheDiagnostics bool
	group            singleflight.Group
	waiting          atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithClock replaces time.Now for Document timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDSource replaces the ULID generator for Document IDs.
func WithIDSource(newID func(time.Time) string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithDiagnosticCaching controls whether Documents holding failure
// placeholders are stored in the cache.
func WithDiagnosticCaching(enabled bool) Option {
	return func(o *Orchestrator) { o.cacheDiagnostics = enabled }
}

// New returns an Orchestrator running tasks from cat against b and caching
// results in c.
func New(cat *catalog.Catalog, b backend.Backend, c cache.ResultCache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog: cat,
		backend: b,
		cache:   c,
		log:     zap.NewNop(),
		now:     time.Now,
		newID:   ulidSource(rand.Reader),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Catalog returns the task catalogue the Orchestrator runs.
func (o *Orchestrator) Catalog() *catalog.Catalog { return o.catalog }

// Run produces the Document for input restricted to ids. Identical requests
// share one generation while in flight and reuse the cached Document after.
// A caller whose joined generation was cancelled by another caller runs it
// again under its own context.
func (o *Orchestrator) Run(ctx context.Context, input types.NormalizedInput, ids []catalog.TaskID, opts RunOptions) (*types.Document, error) {
	if !input.HasFile() && input.RawText == "" && strings.TrimSpace(input.Topic) == "" {
		return nil, &InputError{Err: ErrNoInput}
	}
	if len(ids) == 0 {
		return &types.Document{
			Topic:    strings.TrimSpace(input.Topic),
			Language: input.Language,
		}, ErrNoTasksSelected
	}
	tasks, err := o.catalog.Select(ids)
	if err != nil {
		return nil, err
	}

	selected := make([]catalog.TaskID, len(tasks))
	for i, t := range tasks {
		selected[i] = t.ID
	}
	fp := fingerprint.Build(input, selected)
	total := len(tasks)
	progress := opts.OnProgress
	if progress == nil {
		progress = func(int, int) {}
	}

	log := o.log.With(zap.String("fingerprint", fp.Short()))
	log.Info("run started", zap.Int("tasks", total), zap.Bool("force", opts.Force))

	// Forced runs never join a plain run, which may be answered from the cache.
	key := fp.String()
	if opts.Force {
		key += "#force"
	}

	o.waiting.Add(1)
	defer o.waiting.Add(-1)
	for {
		doc, generated, shared, err := o.flight(ctx, key, log, fp, input, tasks, opts.Force, progress)
		if err != nil {
			// A joined run aborted by its owner's cancellation is retried
			// while this caller's context is still live.
			if shared && !generated && isContextError(err) && ctx.Err() == nil {
				log.Debug("joined run was cancelled, retrying")
				continue
			}
			return nil, err
		}
		if !generated {
			progress(total, total)
			if opts.OnCacheHit != nil {
				opts.OnCacheHit()
			}
		}
		if shared {
			log.Debug("joined in-flight run")
		}
		return doc, nil
	}
}

// Waiting returns the number of Run calls currently waiting on a cache lookup
// or a generation.
func (o *Orchestrator) Waiting() int { return int(o.waiting.Load()) }

// flight runs or joins the generation registered under key. generated is true
// only for the caller whose closure produced the Document.
func (o *Orchestrator) flight(ctx context.Context, key string, log *zap.Logger, fp types.Fingerprint, input types.NormalizedInput, tasks []catalog.Descriptor, force bool, progress ProgressFunc) (doc *types.Document, generated, shared bool, err error) {
	v, err, shared := o.group.Do(key, func() (any, error) {
		if !force {
			doc, ok, err := o.cache.Get(ctx, fp)
			if err != nil {
				log.Warn("cache lookup failed", zap.Error(err))
			}
			if ok {
				log.Info("cache hit")
				return doc, nil
			}
			log.Debug("cache miss")
		}

		generated = true
		doc, err := o.generate(ctx, log, fp, input, tasks, progress)
		if err != nil {
			return nil, err
		}
		if doc.HasDiagnostics() && !o.cacheDiagnostics {
			log.Info("document not cached", zap.String("reason", "contains diagnostics"))
			return doc, nil
		}
		if err := o.cache.Put(ctx, fp, doc); err != nil {
			log.Warn("cache store failed", zap.Error(err))
		}
		return doc, nil
	})
	if err != nil {
		return nil, generated, shared, err
	}
	return v.(*types.Document), generated, shared, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (o *Orchestrator) generate(ctx context.Context, log *zap.Logger, fp types.Fingerprint, input types.NormalizedInput, tasks []catalog.Descriptor, progress ProgressFunc) (*types.Document, error) {
	topic := strings.TrimSpace(input.Topic)
	c := o.catalog.BuildContext(topic, input.Language, input.RawText)
	rc := backend.RequestContext{
		SystemPersona:  c.SystemPersona,
		OutputLanguage: c.OutputLanguage,
		GroundingText:  c.GroundingText,
	}

	produced := make(map[catalog.TaskID]types.SectionResult, len(tasks))
	sections := make([]types.SectionResult, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			log.Info("run cancelled", zap.Int("completed", i))
			return nil, err
		}

		prompt, err := task.BuildPrompt(catalog.PromptData{
			Topic:      topic,
			Language:   input.Language,
			SourceText: input.RawText,
			Prior:      priorSections(task, produced),
		})
		if err != nil {
			return nil, fmt.Errorf("building prompt for %s: %w", task.ID, err)
		}

		start := time.Now()
		text, err := o.backend.Complete(ctx, prompt, rc)
		res := types.SectionResult{TaskID: string(task.ID), Title: task.Title, Order: task.Order}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				log.Info("run cancelled", zap.Int("completed", i))
				return nil, ctxErr
			}
			be := backend.AsBackendError(err)
			res.Body = diagnosticBody(be)
			res.Diagnostic = true
			log.Warn("section failed",
				zap.String("task", string(task.ID)),
				zap.String("kind", string(be.Kind)),
				zap.Error(err))
		} else {
			res.Body = strings.TrimSpace(text)
			log.Debug("section done",
				zap.String("task", string(task.ID)),
				zap.Duration("took", time.Since(start)))
		}

		sections = append(sections, res)
		produced[task.ID] = res
		progress(i+1, len(tasks))
	}

	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	now := o.now().UTC()
	return &types.Document{
		ID:          o.newID(now),
		Fingerprint: fp,
		Topic:       topic,
		Language:    input.Language,
		Sections:    sections,
		CreatedAt:   now,
	}, nil
}

// priorSections returns the already produced sections task declares as
// dependencies. Placeholders are skipped.
func priorSections(task catalog.Descriptor, produced map[catalog.TaskID]types.SectionResult) []catalog.PriorSection {
	var prior []catalog.PriorSection
	for _, id := range task.DependsOn {
		res, ok := produced[id]
		if !ok || res.Diagnostic || res.Body == "" {
			continue
		}
		prior = append(prior, catalog.PriorSection{Title: res.Title, Body: res.Body})
	}
	return prior
}

func diagnosticBody(be *backend.BackendError) string {
	detail := be.Detail
	if be.Err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += be.Err.Error()
	}
	return fmt.Sprintf("%s[%s] %s", DiagnosticPrefix, be.Kind, detail)
}

// ulidSource returns a goroutine-safe monotonic ULID generator.
func ulidSource(r io.Reader) func(time.Time) string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(r, 0)
	return func(t time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Timestamp(t), entropy).String()
	}
}
