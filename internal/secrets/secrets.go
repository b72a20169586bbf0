// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads backend API keys from a directory of plain-text files.
// Each file holds one secret: the file name is the key name and the trimmed
// contents are the value.
//
// Recognized key files: openai-api-key, anthropic-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is the secrets directory relative to the working directory.
const DefaultDir = ".secrets"

// Store maps key names to values.
type Store map[string]string

// Get returns the value for name and whether it is set.
func (s Store) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Names returns the loaded key names without their values, for logging.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	return names
}

// Load reads every regular file in dir. A missing directory yields an empty
// Store. Unreadable files are logged and skipped.
func Load(dir string, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}
