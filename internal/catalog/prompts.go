// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"strings"
	"text/template"
)

// Persona strings open the system context of every request.
const (
	modulePersona = "You are an assistant specialized in educational design and content creation."
	reviewPersona = "You are an assistant specialized in spelling, grammar and coherence review."
)

// Context is the per-run request context shared by all tasks of a catalogue.
type Context struct {
	SystemPersona  string
	OutputLanguage string
	GroundingText  string
}

// BuildContext assembles the system persona, the output-language directive and
// the grounding text for a run. The grounding text always starts with the
// general topic so that topic-only runs still carry context.
func (c *Catalog) BuildContext(topic, language, rawText string) Context {
	persona := modulePersona
	label := "General topic"
	if c.kind == KindReview {
		persona = reviewPersona
		label = "Context"
	}

	var g strings.Builder
	fmt.Fprintf(&g, "%s: %s", label, strings.TrimSpace(topic))
	if rawText != "" {
		g.WriteString("\n\n")
		g.WriteString(rawText)
	}

	return Context{
		SystemPersona:  fmt.Sprintf("%s Output language: %s.", persona, language),
		OutputLanguage: language,
		GroundingText:  g.String(),
	}
}

func mustPrompt(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

const priorBlock = `{{if .Prior}}

Sections already written for this module:
{{range .Prior}}
### {{.Title}}
{{.Body}}
{{end}}{{end}}`

var summaryPrompt = mustPrompt("summary", `Section 0. In-depth summary

Write an in-depth summary of the material, synthesizing its main points and highlighting practical applications.`)

var introductionPrompt = mustPrompt("introduction", `Section 1. Introduction

Act as an experienced educational content writer. Based on the system content, write an introductory text for an educational module. Follow these rules:

- The text must have at least 3 paragraphs and at most 1,200 characters excluding spaces.
- Encourage the reader to study the topic.
- Use this structure:
  1. An engaging opening paragraph about the general topic of the module.
  2. "In this module, you will learn..." followed by a clear summary of the contents and why they matter to professionals or people interested in the field.
  3. "Another relevant topic is..." and then "Finally, you will have the opportunity to...", closing with how the module broadens the student's repertoire.

End with: **Enjoy your studies!**`)

var unitsPrompt = mustPrompt("units", `Section 2. Learning units

Act as an instructional design specialist. Develop the detailed content of an educational module based on the system content. Follow these guidelines strictly:

1. Unit structure: split the main topics into learning units, each with a clear, descriptive title (for example "Unit 1: Distance Learning and Legislation").
2. Content: for each unit, write a didactic text that explains the essential concepts clearly, objectively and in depth.
3. Grounding: support the concepts with references (books, articles, laws or other credible sources, preferably available online), cited in the text or at the end of each unit.
4. Visual elements: where relevant, suggest visuals using markers such as [Image suggestion: description] or [Highlight box: text].
5. Constraints: each unit has at most 3,000 characters excluding spaces. Ignore any mention of font formatting; focus only on the quality and structure of the text.

Develop as many units as needed to cover the central topics of the base material.`)

var glossaryPrompt = mustPrompt("glossary", `Section 3. Glossary

Based on the text below, identify difficult, technical or unusual words and terms for a general audience. For each term, give a clear and objective explanation. Present the glossary in this format, without blank lines and without repetitions:

No.:	Term:	Definition / meaning:
1	word	definition
2	word	definition

Base text:
{{.Topic}}
{{.SourceText}}`)

var linksPrompt = mustPrompt("links", `Section 4. Links to complementary materials and attachments

Analyze the content below and extract only the links and attachments cited in it. Organize them in a section called "Complementary links and attachments" following the formatting examples below. Do not invent links; use only those that actually appear in the text.

Format examples:

YouTube videos
TITLE OF THE PART. Author of the post (file duration): language. Web address. Access date.

Blog
TITLE OF THE PUBLICATION. Title of the part. Publication date. Web address. Access date.

Podcast
AUTHOR SURNAME, Name. Title of the part. Media duration. Publication date. Web address. Access date.

Base content:
{{.SourceText}}`)

var conclusionPrompt = mustPrompt("conclusion", `Section 5. Conclusion

Act as an experienced educational content writer. Based on the system content, write the closing unit of the module using the same format as the introduction, now recapping everything the student learned:

- At least 3 paragraphs and at most 1,200 characters excluding spaces.
- Synthesize the main points and topics covered, highlighting what the student learned.
- Use phrases such as "In this module, you learned...", "In addition, you were able to understand...", "Finally, you are now able to...".
- Close with a message encouraging the student to apply the knowledge.

End with: **Congratulations on completing the module!**`+priorBlock)

var referencesPrompt = mustPrompt("references", `Section 6. References

Based on the system content, extract and organize every bibliographic reference cited in the module. Use this format for each reference:

SURNAME, Author name. Title. Edition. Place: Publisher, publication date.

List only references actually present in the content, without inventing any. If there are no explicit references, return only: "No references found in the content."

Present the list clearly and without repetitions.`+priorBlock)

var revisionPrompt = mustPrompt("revision", `Spelling and coherence review

Review the text below, correcting spelling, grammar and coherence problems. Keep the original meaning, improve the flow and return only the revised text.

Text:
{{.SourceText}}`)
