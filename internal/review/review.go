// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review proofreads text through the review catalogue. Reviews share
// the orchestrator's cache, so resubmitting the same text and language is
// answered without contacting the backend.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/internal/pipeline"
	"github.com/pdiddy/modulegen/internal/source"
	"github.com/pdiddy/modulegen/pkg/types"
)

// DefaultContext labels the grounding text of a review.
const DefaultContext = "text review"

// ErrReviewFailed is returned when the backend could not revise the text.
// The Result still carries the diagnostic body.
var ErrReviewFailed = errors.New("review failed")

// Request is one proofreading job. Exactly one of Text and File is set.
type Request struct {
	Text     string
	File     string
	Language string
	Context  string
	Force    bool
}

// Result is the revised text.
type Result struct {
	Text     string
	Cached   bool
	Document *types.Document
}

// Reviser runs review requests.
type Reviser struct {
	orch   *pipeline.Orchestrator
	loader *source.Loader
}

// New returns a Reviser. orch must run the review catalogue.
func New(orch *pipeline.Orchestrator, loader *source.Loader) (*Reviser, error) {
	if orch.Catalog().Kind() != catalog.KindReview {
		return nil, fmt.Errorf("review needs the review catalogue, got %s", orch.Catalog().Kind())
	}
	if loader == nil {
		loader = &source.Loader{}
	}
	return &Reviser{orch: orch, loader: loader}, nil
}

// Review revises the text or file in req.
func (r *Reviser) Review(ctx context.Context, req Request) (Result, error) {
	label := strings.TrimSpace(req.Context)
	if label == "" {
		label = DefaultContext
	}

	var input types.NormalizedInput
	switch {
	case req.File != "" && req.Text != "":
		return Result{}, errors.New("review: set either text or file, not both")
	case req.File != "":
		in, err := r.loader.Load(ctx, req.File, label, req.Language)
		if err != nil {
			return Result{}, err
		}
		input = in
	default:
		input = source.FromText(req.Text, label, req.Language)
	}
	if input.RawText == "" {
		return Result{}, &pipeline.InputError{Err: errors.New("nothing to review: the text is empty")}
	}

	var res Result
	doc, err := r.orch.Run(ctx, input, []catalog.TaskID{catalog.TaskRevision}, pipeline.RunOptions{
		Force:      req.Force,
		OnCacheHit: func() { res.Cached = true },
	})
	if err != nil {
		return Result{}, err
	}
	res.Document = doc

	section, ok := doc.Section(string(catalog.TaskRevision))
	if !ok {
		return res, fmt.Errorf("%w: no revised section produced", ErrReviewFailed)
	}
	res.Text = section.Body
	if section.Diagnostic {
		return res, fmt.Errorf("%w: %s", ErrReviewFailed, strings.TrimPrefix(section.Body, pipeline.DiagnosticPrefix))
	}
	return res, nil
}
