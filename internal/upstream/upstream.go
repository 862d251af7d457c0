// Package upstream defines the contract shared by the model providers: a
// normalized result, token accounting, and the typed error surfaced when an
// upstream call fails.
package upstream

import (
	"context"
	"fmt"

	jsonpkg "promptoon-golang/server/internal/pkg/json"
)

// Request carries everything a provider needs for one image-to-prompt call.
type Request struct {
	// ImageBase64 is the (possibly size-reduced) JPEG payload.
	ImageBase64 string
	// APIKey is the already-decrypted provider key.
	APIKey string
	// ModelVersion selects the concrete model, e.g. "gemini-2.5-flash-lite".
	ModelVersion string

	// Prompt and Dialogs come from the prompt configuration files.
	Prompt  string
	Dialogs []Content
}

// Content mirrors the Gemini conversation turn shape. The dialog config file
// uses it directly, so existing default_dialogs.json files keep working.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inline_data,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Result is the normalized provider output embedded in the HTTP response and
// the on-disk artifact.
type Result struct {
	PromptData  map[string]any `json:"prompt_data"`
	RawResponse string         `json:"raw_response"`
	TokenUsage  TokenUsage     `json:"token_usage"`
}

type TokenUsage struct {
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	PromptDetail     map[string]int `json:"prompt_detail"`
	CompletionDetail map[string]int `json:"completion_detail"`
}

// Client is implemented once per provider.
type Client interface {
	GeneratePrompt(ctx context.Context, req *Request) (*Result, error)
}

// APIError reports an upstream failure: a non-2xx status, a timeout, or a
// reply that could not be navigated to the expected text field.
type APIError struct {
	// Status is the HTTP status to relay to the caller.
	Status int
	// Message is the short summary placed under "error".
	Message string
	// Details holds the raw upstream body when it is safe to echo.
	Details string
	// RawResponse is set instead of Details when the reply shape was
	// unexpected and the whole body is returned for debugging.
	RawResponse string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream error %d: %s", e.Status, e.Message)
}

// ParsePromptData interprets the model's answer text. Well-formed JSON
// objects come back as-is; anything else is wrapped under raw_response so a
// chatty model never fails the request.
func ParsePromptData(text string) map[string]any {
	var data map[string]any
	if err := jsonpkg.Unmarshal([]byte(text), &data); err == nil && data != nil {
		return data
	}
	return map[string]any{"raw_response": text}
}
