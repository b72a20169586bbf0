// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// NormalizedInput is the decoded source for one generation run. It is built
// once by the source adapter and never modified afterwards.
type NormalizedInput struct {
	// RawText is the normalized text extracted from the uploaded file or the
	// pasted text. Empty when only a topic was supplied.
	RawText string `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`

	// Topic is the short description of the general theme.
	Topic string `json:"topic" yaml:"topic"`

	// Language is the output language directive (e.g. "Portuguese").
	Language string `json:"language" yaml:"language"`

	// FileDigest is the hex sha256 of the original bytes. Empty when no file
	// was supplied.
	FileDigest string `json:"file_digest,omitempty" yaml:"file_digest,omitempty"`
}

// HasFile reports whether the input came from an uploaded artifact.
func (in NormalizedInput) HasFile() bool {
	return in.FileDigest != ""
}

// Fingerprint is the content-addressed key of a generation run.
type Fingerprint string

// String returns the fingerprint as a plain string.
func (f Fingerprint) String() string { return string(f) }

// Short returns the first 12 characters, used in logs and file names.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

// SectionResult is the output of one section task.
type SectionResult struct {
	// TaskID is the catalogue identifier of the task that produced the section.
	TaskID string `json:"task_id" yaml:"task_id"`

	// Title is the human-readable heading.
	Title string `json:"title" yaml:"title"`

	// Body is the generated text, or a diagnostic placeholder when the
	// backend call failed. Never absent.
	Body string `json:"body" yaml:"body"`

	// Order is the fixed catalogue position of the task.
	Order int `json:"order" yaml:"order"`

	// Diagnostic is true when Body holds a failure placeholder.
	Diagnostic bool `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty"`
}

// Document is an assembled module: sections sorted by Order ascending.
// A Document is never mutated after assembly.
type Document struct {
	// ID is a ULID assigned when the Document was assembled.
	ID string `json:"id" yaml:"id"`

	// Fingerprint is the key the Document was generated (and cached) under.
	Fingerprint Fingerprint `json:"fingerprint" yaml:"fingerprint"`

	// Topic and Language echo the run input for renderers and exports.
	Topic    string `json:"topic" yaml:"topic"`
	Language string `json:"language" yaml:"language"`

	// Sections lists the produced sections in ascending Order.
	Sections []SectionResult `json:"sections" yaml:"sections"`

	// CreatedAt is the assembly time in UTC.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// HasDiagnostics reports whether any section holds a failure placeholder.
func (d *Document) HasDiagnostics() bool {
	for _, s := range d.Sections {
		if s.Diagnostic {
			return true
		}
	}
	return false
}

// Section returns the section produced by taskID, if present.
func (d *Document) Section(taskID string) (SectionResult, bool) {
	for _, s := range d.Sections {
		if s.TaskID == taskID {
			return s, true
		}
	}
	return SectionResult{}, false
}

// Empty reports whether the Document has no sections.
func (d *Document) Empty() bool {
	return d == nil || len(d.Sections) == 0
}

// CacheEntry is a cached Document with its key and insertion time.
type CacheEntry struct {
	Fingerprint Fingerprint `json:"fingerprint" yaml:"fingerprint"`
	Document    *Document   `json:"document" yaml:"document"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
}
