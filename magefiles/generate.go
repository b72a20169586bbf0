//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Generate builds a module from $TOPIC or $FILE with the default sections.
// $FORMATS (comma-separated) selects the output formats.
func Generate() error {
	mg.Deps(Build)
	args := []string{"generate"}
	if topic := os.Getenv("TOPIC"); topic != "" {
		args = append(args, "--topic", topic)
	}
	if file := os.Getenv("FILE"); file != "" {
		args = append(args, "--file", file)
	}
	if len(args) == 1 {
		return errors.New("set TOPIC or FILE")
	}
	if formats := os.Getenv("FORMATS"); formats != "" {
		args = append(args, "--format", formats)
	}
	return sh.RunV(binPath(), args...)
}

// Batch generates every job in $JOBS (default jobs.yaml).
func Batch() error {
	mg.Deps(Build)
	jobs := os.Getenv("JOBS")
	if jobs == "" {
		jobs = "jobs.yaml"
	}
	return sh.RunV(binPath(), "generate", "--batch", jobs, "--output-dir", "output/batch")
}

// Review proofreads $FILE and prints the revised text.
func Review() error {
	mg.Deps(Build)
	file := os.Getenv("FILE")
	if file == "" {
		return errors.New("set FILE")
	}
	return sh.RunV(binPath(), "review", "--file", file)
}
