// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/modulegen/internal/catalog"
	"github.com/pdiddy/modulegen/pkg/types"
)

func TestSetDefaults_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MODULEGEN_BACKEND_PROVIDER", "static")
	t.Setenv("MODULEGEN_BACKEND_TIMEOUT", "5s")
	t.Setenv("MODULEGEN_RENDER_FORMATS", "pdf,docx")

	v := viper.New()
	v.SetEnvPrefix("MODULEGEN")
	v.SetEnvKeyReplacer(envReplacer())
	v.AutomaticEnv()
	setDefaults(v, types.GenerationConfig{}.WithDefaults())

	var cfg types.GenerationConfig
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, types.ProviderStatic, cfg.Backend.Provider)
	assert.Empty(t, cfg.Backend.Model)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"pdf", "docx"}, cfg.Render.Formats)
	assert.Equal(t, types.DefaultLanguage, cfg.Language)
	assert.Equal(t, types.CacheMemory, cfg.Cache.Driver)
	assert.False(t, cfg.Cache.CacheDiagnostics)
}

func TestModelDefaultFollowsProvider(t *testing.T) {
	tests := []struct {
		provider types.Provider
		want     string
	}{
		{types.ProviderOpenAI, types.DefaultModel},
		{types.ProviderAnthropic, types.DefaultClaudeModel},
		{types.ProviderGemini, types.DefaultGeminiModel},
	}
	for _, tt := range tests {
		cfg := types.GenerationConfig{Backend: types.BackendConfig{Provider: tt.provider}}.WithDefaults()
		assert.Equal(t, tt.want, cfg.Backend.Model, tt.provider)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		topic, file, want string
	}{
		{"Photosynthesis", "notes.pdf", "photosynthesis"},
		{"", "/tmp/Aula 3 - Solos.docx", "aula-3-solos"},
		{"  ", "", "module"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputName(tt.topic, tt.file))
	}
}

func TestPrintCatalog(t *testing.T) {
	var buf bytes.Buffer
	printCatalog(&buf, "generate", catalog.Module())
	out := buf.String()
	for _, d := range catalog.Module().All() {
		assert.Contains(t, out, string(d.ID))
	}
}
