// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/pkg/types"
)

func TestBuildDeterministic(t *testing.T) {
	in := types.NormalizedInput{Topic: "Photosynthesis", Language: "Portuguese"}
	ids := []catalog.TaskID{catalog.TaskIntroduction, catalog.TaskGlossary}

	a := Build(in, ids)
	b := Build(in, ids)
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 64)
}

func TestBuildEquivalences(t *testing.T) {
	base := types.NormalizedInput{Topic: "Photosynthesis", Language: "Portuguese"}
	ids := []catalog.TaskID{catalog.TaskIntroduction, catalog.TaskGlossary}
	want := Build(base, ids)

	tests := []struct {
		name  string
		input types.NormalizedInput
		ids   []catalog.TaskID
	}{
		{
			name:  "task order does not matter",
			input: base,
			ids:   []catalog.TaskID{catalog.TaskGlossary, catalog.TaskIntroduction},
		},
		{
			name:  "duplicate tasks do not matter",
			input: base,
			ids:   []catalog.TaskID{catalog.TaskGlossary, catalog.TaskIntroduction, catalog.TaskGlossary},
		},
		{
			name:  "topic is trimmed",
			input: types.NormalizedInput{Topic: "  Photosynthesis\n", Language: "Portuguese"},
			ids:   ids,
		},
		{
			name:  "raw text without a file is ignored",
			input: types.NormalizedInput{Topic: "Photosynthesis", Language: "Portuguese", RawText: "anything"},
			ids:   ids,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, Build(tt.input, tt.ids))
		})
	}
}

func TestBuildDistinctions(t *testing.T) {
	base := types.NormalizedInput{Topic: "Photosynthesis", Language: "Portuguese"}
	ids := []catalog.TaskID{catalog.TaskIntroduction}
	want := Build(base, ids)

	tests := []struct {
		name  string
		input types.NormalizedInput
		ids   []catalog.TaskID
	}{
		{"topic case preserved", types.NormalizedInput{Topic: "photosynthesis", Language: "Portuguese"}, ids},
		{"language differs", types.NormalizedInput{Topic: "Photosynthesis", Language: "English"}, ids},
		{"task set differs", base, []catalog.TaskID{catalog.TaskIntroduction, catalog.TaskUnits}},
		{"file supplied", types.NormalizedInput{Topic: "Photosynthesis", Language: "Portuguese", FileDigest: Digest([]byte("x"))}, ids},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, want, Build(tt.input, tt.ids))
		})
	}
}

func TestBuildFileDigestDominates(t *testing.T) {
	digest := Digest([]byte("%PDF-1.4 original bytes"))
	ids := []catalog.TaskID{catalog.TaskGlossary}

	a := Build(types.NormalizedInput{FileDigest: digest, RawText: "Extracted text.", Language: "English"}, ids)
	b := Build(types.NormalizedInput{FileDigest: digest, RawText: "Extracted   text.\n\n", Language: "English"}, ids)
	assert.Equal(t, a, b, "same digest must share a fingerprint whatever the extracted text")

	c := Build(types.NormalizedInput{FileDigest: Digest([]byte("other bytes")), RawText: "Extracted text.", Language: "English"}, ids)
	assert.NotEqual(t, a, c, "same extracted text from different files must not collide")
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(nil))
}
