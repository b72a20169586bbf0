// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog holds the static table of section tasks a module is built
// from. Selection, ordering and fingerprinting all operate on the same TaskID
// values declared here.
package catalog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// TaskID identifies a section task. Values are stable across releases because
// they are part of every cache fingerprint.
type TaskID string

const (
	TaskSummary      TaskID = "summary"
	TaskIntroduction TaskID = "introduction"
	TaskUnits        TaskID = "units"
	TaskGlossary     TaskID = "glossary"
	TaskLinks        TaskID = "links"
	TaskConclusion   TaskID = "conclusion"
	TaskReferences   TaskID = "references"
	TaskRevision     TaskID = "revision"
)

// Kind selects the system persona used for a catalogue's requests.
type Kind string

const (
	KindModule Kind = "module"
	KindReview Kind = "review"
)

// Descriptor describes one section task. Descriptors are never mutated once
// a Catalog is built.
type Descriptor struct {
	ID    TaskID
	Order int
	Title string

	// DependsOnRawText embeds the extracted source text in the instruction
	// itself, in addition to the grounding context.
	DependsOnRawText bool

	// DependsOn lists earlier tasks whose bodies are embedded in the
	// instruction when they ran in the same Document.
	DependsOn []TaskID

	// DefaultEnabled marks tasks selected when the caller asks for defaults.
	DefaultEnabled bool

	prompt *template.Template
}

// PriorSection is an already-produced section passed to a dependent task.
type PriorSection struct {
	Title string
	Body  string
}

// PromptData is the template input for a task instruction.
type PromptData struct {
	Topic      string
	Language   string
	SourceText string
	Prior      []PriorSection
}

// BuildPrompt renders the task instruction.
func (d Descriptor) BuildPrompt(data PromptData) (string, error) {
	if !d.DependsOnRawText {
		data.SourceText = ""
	}
	var buf bytes.Buffer
	if err := d.prompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", d.ID, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// UnknownTaskError is returned when a selection names a task the catalogue
// does not contain.
type UnknownTaskError struct {
	ID TaskID
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown section %q", string(e.ID))
}

// Catalog is an immutable, order-carrying set of descriptors.
type Catalog struct {
	kind        Kind
	descriptors []Descriptor
	byID        map[TaskID]int
}

func newCatalog(kind Kind, descriptors []Descriptor) *Catalog {
	sorted := make([]Descriptor, len(descriptors))
	copy(sorted, descriptors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	byID := make(map[TaskID]int, len(sorted))
	seenOrder := make(map[int]TaskID, len(sorted))
	for i, d := range sorted {
		if _, dup := byID[d.ID]; dup {
			panic(fmt.Sprintf("catalog: duplicate task id %q", d.ID))
		}
		if other, dup := seenOrder[d.Order]; dup {
			panic(fmt.Sprintf("catalog: tasks %q and %q share order %d", other, d.ID, d.Order))
		}
		byID[d.ID] = i
		seenOrder[d.Order] = d.ID
	}
	return &Catalog{kind: kind, descriptors: sorted, byID: byID}
}

// Kind returns the persona kind of the catalogue.
func (c *Catalog) Kind() Kind { return c.kind }

// All returns every descriptor in ascending order.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Lookup returns the descriptor for id.
func (c *Catalog) Lookup(id TaskID) (Descriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return c.descriptors[i], true
}

// Defaults returns the ids of tasks enabled by default, in order.
func (c *Catalog) Defaults() []TaskID {
	var ids []TaskID
	for _, d := range c.descriptors {
		if d.DefaultEnabled {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// IDs returns every task id in order.
func (c *Catalog) IDs() []TaskID {
	ids := make([]TaskID, len(c.descriptors))
	for i, d := range c.descriptors {
		ids[i] = d.ID
	}
	return ids
}

// Select resolves ids into descriptors sorted by Order. Duplicate ids are
// collapsed; the order ids were given in is irrelevant.
func (c *Catalog) Select(ids []TaskID) ([]Descriptor, error) {
	seen := make(map[TaskID]bool, len(ids))
	var out []Descriptor
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		d, ok := c.Lookup(id)
		if !ok {
			return nil, &UnknownTaskError{ID: id}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// ParseTaskIDs splits a comma-separated selection. The keywords "all" and
// "default" expand to the catalogue's full and default sets.
func (c *Catalog) ParseTaskIDs(s string) []TaskID {
	var ids []TaskID
	for _, part := range strings.Split(s, ",") {
		p := strings.ToLower(strings.TrimSpace(part))
		switch p {
		case "":
			continue
		case "all":
			ids = append(ids, c.IDs()...)
		case "default":
			ids = append(ids, c.Defaults()...)
		default:
			ids = append(ids, TaskID(p))
		}
	}
	return ids
}

// Strings converts ids to plain strings.
func Strings(ids []TaskID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Module returns the educational module catalogue.
func Module() *Catalog {
	return moduleCatalog
}

// Review returns the proofreading catalogue.
func Review() *Catalog {
	return reviewCatalog
}

var moduleCatalog = newCatalog(KindModule, []Descriptor{
	{ID: TaskSummary, Order: 0, Title: "Summary", prompt: summaryPrompt},
	{ID: TaskIntroduction, Order: 1, Title: "Introduction", DefaultEnabled: true, prompt: introductionPrompt},
	{ID: TaskUnits, Order: 2, Title: "Learning Units", DefaultEnabled: true, prompt: unitsPrompt},
	{ID: TaskGlossary, Order: 3, Title: "Glossary", DependsOnRawText: true, DefaultEnabled: true, prompt: glossaryPrompt},
	{ID: TaskLinks, Order: 4, Title: "Links and Attachments", DependsOnRawText: true, DefaultEnabled: true, prompt: linksPrompt},
	{ID: TaskConclusion, Order: 5, Title: "Conclusion", DependsOn: []TaskID{TaskUnits}, DefaultEnabled: true, prompt: conclusionPrompt},
	{ID: TaskReferences, Order: 6, Title: "References", DependsOn: []TaskID{TaskUnits}, DefaultEnabled: true, prompt: referencesPrompt},
})

var reviewCatalog = newCatalog(KindReview, []Descriptor{
	{ID: TaskRevision, Order: 1, Title: "Revised Text", DependsOnRawText: true, DefaultEnabled: true, prompt: revisionPrompt},
})
