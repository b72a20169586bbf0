// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs one-shot converter images through docker or podman,
// streaming the input on stdin and collecting the result from stdout.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime is a container engine able to run a filter image.
type Runtime interface {
	// Name returns "docker" or "podman".
	Name() string

	// Available reports whether the binary is on PATH and the daemon answers.
	Available(ctx context.Context) bool

	// ImageExists returns nil when image is present locally.
	ImageExists(ctx context.Context, image string) error

	// Run starts image with networking disabled, pipes stdin into it and
	// copies its stdout to stdout. The container is removed afterwards.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts process execution for tests.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(ctx context.Context, name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// RunPiped attaches the last lines of stderr to the returned error.
func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := tail(stderr.String(), 400); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}

// engine implements Runtime. Docker and podman differ only in the binary
// and in the subcommand that checks for a local image.
type engine struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available(ctx context.Context) bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(ctx, e.bin, "info") == nil
}

func (e *engine) ImageExists(ctx context.Context, image string) error {
	args := append(append([]string{}, e.imageCheck...), image)
	if err := e.exec.RunSilent(ctx, e.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

func (e *engine) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", "--network", "none", image}
	if err := e.exec.RunPiped(ctx, e.bin, args, stdin, stdout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("running %s in %s: %w", image, e.bin, err)
	}
	return nil
}

func newDocker(x executor) *engine {
	return &engine{bin: binDocker, imageCheck: []string{"image", "inspect"}, exec: x}
}

func newPodman(x executor) *engine {
	return &engine{bin: binPodman, imageCheck: []string{"image", "exists"}, exec: x}
}

// Detect returns docker when it answers, podman otherwise.
func Detect(ctx context.Context) (Runtime, error) {
	return detect(ctx, osExecutor{})
}

func detect(ctx context.Context, x executor) (Runtime, error) {
	for _, e := range []*engine{newDocker(x), newPodman(x)} {
		if e.Available(ctx) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational", binDocker, binPodman)
}
