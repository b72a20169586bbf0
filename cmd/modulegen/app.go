// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/pdiddy/modulegen/internal/backend"
	"github.com/pdiddy/modulegen/internal/cache"
	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/internal/pipeline"
	"github.com/pdiddy/modulegen/internal/source"
	"github.com/pdiddy/modulegen/pkg/types"
)

// newOrchestrator wires the configured backend and cache to cat.
func newOrchestrator(ctx context.Context, cfg types.GenerationConfig, cat *catalog.Catalog) (*pipeline.Orchestrator, error) {
	b, err := backend.New(ctx, cfg.Backend, loadedSecrets, logger)
	if err != nil {
		return nil, err
	}
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}
	return pipeline.New(cat, b, c,
		pipeline.WithLogger(logger.Named(string(cat.Kind()))),
		pipeline.WithDiagnosticCaching(cfg.Cache.CacheDiagnostics),
	), nil
}

// newLoader returns a source loader whose PDF support starts a container on
// first use.
func newLoader(cfg types.GenerationConfig) *source.Loader {
	return &source.Loader{
		PDF: source.NewLazyPDFConverter(cfg.Source.PDFImage),
		Log: logger.Named("source"),
	}
}
