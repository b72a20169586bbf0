// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/modulegen/internal/container"
)

// PDFConverter turns PDF bytes into text.
type PDFConverter interface {
	Convert(ctx context.Context, pdf []byte) (string, error)
}

// ContainerPDFConverter pipes PDFs through a converter image (markitdown by
// default) run by docker or podman.
type ContainerPDFConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerPDFConverter checks that image exists in rt before returning.
func NewContainerPDFConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerPDFConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdf converter image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerPDFConverter{runtime: rt, image: image}, nil
}

// Convert streams pdf into the container and returns its stdout.
func (c *ContainerPDFConverter) Convert(ctx context.Context, pdf []byte) (string, error) {
	var out bytes.Buffer
	if err := c.runtime.Run(ctx, c.image, bytes.NewReader(pdf), &out); err != nil {
		return "", fmt.Errorf("converting pdf with %s: %w", c.image, err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("%s produced empty output", c.image)
	}
	return out.String(), nil
}

// LazyPDFConverter detects a container runtime on first use, so runs that
// never see a PDF do not require docker or podman.
type LazyPDFConverter struct {
	Image string

	detect func(context.Context) (container.Runtime, error)
	mu     sync.Mutex
	conv   PDFConverter
}

// NewLazyPDFConverter returns a converter that resolves its runtime on the
// first Convert call.
func NewLazyPDFConverter(image string) *LazyPDFConverter {
	return &LazyPDFConverter{Image: image, detect: container.Detect}
}

func (l *LazyPDFConverter) Convert(ctx context.Context, pdf []byte) (string, error) {
	conv, err := l.resolve(ctx)
	if err != nil {
		return "", err
	}
	return conv.Convert(ctx, pdf)
}

func (l *LazyPDFConverter) resolve(ctx context.Context) (PDFConverter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conv != nil {
		return l.conv, nil
	}
	rt, err := l.detect(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := NewContainerPDFConverter(ctx, rt, l.Image)
	if err != nil {
		return nil, err
	}
	l.conv = conv
	return conv, nil
}
