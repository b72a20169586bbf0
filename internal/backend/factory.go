// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/modulegen/pkg/types"
)

// Secret file names looked up in .secrets/ per provider.
const (
	SecretOpenAI    = "openai-api-key"
	SecretAnthropic = "anthropic-api-key"
	SecretGemini    = "gemini-api-key"
)

// SecretName returns the .secrets/ file name holding the key for p.
func SecretName(p types.Provider) string {
	switch p {
	case types.ProviderAnthropic:
		return SecretAnthropic
	case types.ProviderGemini:
		return SecretGemini
	default:
		return SecretOpenAI
	}
}

// New builds the adapter selected by cfg.Provider. An empty cfg.APIKey is
// filled from secrets.
func New(ctx context.Context, cfg types.BackendConfig, secrets map[string]string, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = secrets[SecretName(cfg.Provider)]
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		if apiKey == "" {
			return nil, fmt.Errorf("openai backend: API key not configured (set backend.api_key or .secrets/%s)", SecretOpenAI)
		}
		return &OpenAIBackend{
			BaseURL:     cfg.BaseURL,
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Retries:     cfg.RateLimitRetries,
			Client:      httpClient,
			Logger:      log,
		}, nil
	case types.ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic backend: API key not configured (set backend.api_key or .secrets/%s)", SecretAnthropic)
		}
		return &ClaudeBackend{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Retries:     cfg.RateLimitRetries,
			Client:      httpClient,
			Logger:      log,
		}, nil
	case types.ProviderGemini:
		var (
			b   Backend
			err error
		)
		b, err = NewGenAIBackend(ctx, apiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("gemini backend: %w", err)
		}
		if cfg.Timeout > 0 {
			b = WithTimeout(b, cfg.Timeout)
		}
		return b, nil
	case types.ProviderStatic:
		return StaticBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend provider %q", cfg.Provider)
	}
}

// WithTimeout bounds every Complete call of b by d.
func WithTimeout(b Backend, d time.Duration) Backend {
	return Func(func(ctx context.Context, prompt string, rc RequestContext) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return b.Complete(ctx, prompt, rc)
	})
}
