// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/modulegen/internal/httputil"
)

// defaultOpenAIBaseURL is the OpenAI API root. Compatible providers are
// reached by overriding BaseURL.
const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint with a
// system message (persona, language directive and grounding text) and a user
// message (the task instruction).
type OpenAIBackend struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Retries     int
	Client      *http.Client
	Logger      *zap.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string, rc RequestContext) (string, error) {
	const provider = "openai"
	if o.Model == "" {
		return "", &BackendError{Kind: KindConfig, Provider: provider, Detail: "model required"}
	}

	body, err := json.Marshal(chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{Role: "system", Content: rc.System()},
			{Role: "user", Content: prompt},
		},
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	})
	if err != nil {
		return "", &BackendError{Kind: KindConfig, Provider: provider, Detail: "marshaling request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", &BackendError{Kind: KindConfig, Provider: provider, Detail: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, o.client(), req, o.Retries, o.Logger)
	if err != nil {
		return "", networkError(provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", networkError(provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(provider, resp.StatusCode, raw)
	}

	var payload chatResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", responseError(provider, "decoding response", err)
	}
	if payload.Error != nil {
		return "", responseError(provider, payload.Error.Message, nil)
	}
	if len(payload.Choices) == 0 {
		return "", responseError(provider, "empty choices", nil)
	}
	return payload.Choices[0].Message.Content, nil
}

func (o *OpenAIBackend) endpoint() string {
	base := o.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return fmt.Sprintf("%s/chat/completions", base)
}

func (o *OpenAIBackend) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}
