// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend adapts text-generation APIs to the single-request contract
// used by the pipeline. Each adapter owns its own timeout and rate-limit
// policy; callers never retry.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// RequestContext carries the run-wide context of a request.
type RequestContext struct {
	SystemPersona  string
	OutputLanguage string
	GroundingText  string
}

// System joins the persona and grounding text into one system message.
func (rc RequestContext) System() string {
	if rc.GroundingText == "" {
		return rc.SystemPersona
	}
	return rc.SystemPersona + "\n\n" + rc.GroundingText
}

// Backend executes one prompt against a text-generation service. It returns
// the generated text or a *BackendError.
type Backend interface {
	Complete(ctx context.Context, prompt string, rc RequestContext) (string, error)
}

// Func adapts an ordinary function to Backend.
type Func func(ctx context.Context, prompt string, rc RequestContext) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string, rc RequestContext) (string, error) {
	return f(ctx, prompt, rc)
}

// ErrorKind classifies a backend failure.
type ErrorKind string

const (
	KindNetwork  ErrorKind = "network"
	KindAuth     ErrorKind = "auth"
	KindQuota    ErrorKind = "quota"
	KindResponse ErrorKind = "response"
	KindConfig   ErrorKind = "config"
	KindUnknown  ErrorKind = "unknown"
)

// BackendError is the typed failure of a single Complete call.
type BackendError struct {
	Kind     ErrorKind
	Provider string
	Detail   string
	Err      error
}

func (e *BackendError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s error", e.Kind)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BackendError) Unwrap() error { return e.Err }

// AsBackendError returns err as a *BackendError, wrapping foreign errors with
// KindUnknown.
func AsBackendError(err error) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}
	return &BackendError{Kind: KindUnknown, Err: err}
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests, code == http.StatusPaymentRequired:
		return KindQuota
	case code == http.StatusRequestTimeout, code >= 500:
		return KindNetwork
	default:
		return KindResponse
	}
}

// maxDetailBytes bounds the response body quoted in a BackendError.
const maxDetailBytes = 512

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// statusError builds a BackendError for a non-2xx response.
func statusError(provider string, code int, body []byte) *BackendError {
	detail := truncate(strings.TrimSpace(string(body)), maxDetailBytes)
	return &BackendError{
		Kind:     KindForStatus(code),
		Provider: provider,
		Detail:   fmt.Sprintf("status %d: %s", code, detail),
	}
}

func networkError(provider string, err error) *BackendError {
	return &BackendError{Kind: KindNetwork, Provider: provider, Err: err}
}

func responseError(provider, detail string, err error) *BackendError {
	return &BackendError{Kind: KindResponse, Provider: provider, Detail: detail, Err: err}
}
