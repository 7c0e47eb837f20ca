// Package ai talks to the generative text and image providers.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfigured     = errors.New("ai provider is not configured")
	ErrEmptyResponse     = errors.New("ai provider returned an empty response")
	ErrMalformedResponse = errors.New("ai provider returned malformed json")
	ErrUnsupported       = errors.New("operation not supported by ai provider")
)

type Attachment struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	System string
	Prompt string
	// Schema requests JSON output of the given shape; nil means free text.
	Schema *Schema
	// Search enables web search grounding where the provider has it.
	Search bool
	// ThinkingBudget caps reasoning tokens; 0 leaves the provider default.
	ThinkingBudget int
	Temperature    *float32
	Attachments    []Attachment
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Response struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
	Model     string     `json:"model"`
}

type Image struct {
	Data     []byte
	MIMEType string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// DecodeJSON unmarshals model output into out, tolerating a surrounding
// markdown code fence.
func DecodeJSON(text string, out interface{}) error {
	raw := stripFence(strings.TrimSpace(text))
	if raw == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func dedupeCitations(in []Citation) []Citation {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]Citation, 0, len(in))
	for _, c := range in {
		if c.URL == "" {
			continue
		}
		if _, ok := seen[c.URL]; ok {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c)
	}
	return out
}
