// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// contentGenerator is the slice of genai.Models the adapter needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIBackend generates text with Google's Gemini API.
type GenAIBackend struct {
	models      contentGenerator
	model       string
	temperature float32
	maxTokens   int32
}

// NewGenAIBackend creates a Gemini adapter.
func NewGenAIBackend(ctx context.Context, apiKey, model string, temperature float64, maxTokens int) (*GenAIBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}

	return &GenAIBackend{
		models:      client.Models,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
	}, nil
}

// Complete sends the instruction as a user turn with the persona and
// grounding text as the system instruction.
func (g *GenAIBackend) Complete(ctx context.Context, prompt string, rc RequestContext) (string, error) {
	const provider = "gemini"

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(rc.System(), genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGenAIError(err)
	}

	if resp == nil {
		return "", responseError(provider, "nil response", nil)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", responseError(provider, "empty response", nil)
	}
	return text, nil
}

func classifyGenAIError(err error) *BackendError {
	const provider = "gemini"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return networkError(provider, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{
			Kind:     KindForStatus(apiErr.Code),
			Provider: provider,
			Detail:   fmt.Sprintf("status %d: %s", apiErr.Code, apiErr.Message),
		}
	}
	return &BackendError{Kind: KindUnknown, Provider: provider, Err: err}
}
