// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fingerprint derives the content-addressed key of a generation run.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/pkg/types"
)

// noFile stands in for the file digest when the run has no uploaded artifact.
const noFile = "no-file"

// Build returns the fingerprint for input and the enabled task ids. The raw
// text never contributes: a file is identified by its digest, and a topic-only
// run by its trimmed topic. Task ids are de-duplicated and sorted so the
// selection order does not matter.
func Build(input types.NormalizedInput, ids []catalog.TaskID) types.Fingerprint {
	h := sha256.New()

	source := noFile
	if input.HasFile() {
		source = "sha256:" + strings.ToLower(strings.TrimSpace(input.FileDigest))
	}
	writeField(h, "source", source)
	writeField(h, "topic", strings.TrimSpace(input.Topic))
	writeField(h, "language", strings.TrimSpace(input.Language))
	writeField(h, "tasks", strings.Join(sortedUnique(ids), ","))

	return types.Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Digest returns the hex sha256 of data, the form expected in
// NormalizedInput.FileDigest.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeField length-prefixes each field so adjacent values cannot run together.
func writeField(h hash.Hash, name, value string) {
	fmt.Fprintf(h, "%s:%d:%s\n", name, len(value), value)
}

func sortedUnique(ids []catalog.TaskID) []string {
	seen := make(map[catalog.TaskID]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, string(id))
	}
	sort.Strings(out)
	return out
}
