package doubao

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsonpkg "promptoon-golang/server/internal/pkg/json"
	"promptoon-golang/server/internal/upstream"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
	}
}

func testRequest() *upstream.Request {
	return &upstream.Request{
		ImageBase64:  "aW1hZ2U=",
		APIKey:       "ark-test-key",
		ModelVersion: "doubao-seed-1-6-flash",
		Prompt:       "系统提示词",
	}
}

func completionJSON(content string) string {
	b, _ := jsonpkg.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1724550000,
		"model":   "doubao-seed-1-6-flash",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
	})
	return string(b)
}

func TestGeneratePromptSuccess(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if err := jsonpkg.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionJSON(`{"subject":"blue haired girl"}`))
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).GeneratePrompt(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}

	if gotAuth != "Bearer ark-test-key" {
		t.Fatalf("authorization mismatch: %q", gotAuth)
	}

	// thinking must be disabled on the wire.
	thinking, ok := gotBody["thinking"].(map[string]any)
	if !ok || thinking["type"] != "disabled" {
		t.Fatalf("thinking not disabled in request body: %#v", gotBody["thinking"])
	}

	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected single user turn, got %#v", gotBody["messages"])
	}
	turn := messages[0].(map[string]any)
	if turn["role"] != "user" {
		t.Fatalf("role mismatch: %#v", turn)
	}
	content, ok := turn["content"].([]any)
	if !ok || len(content) != 2 {
		t.Fatalf("expected image + text parts, got %#v", turn["content"])
	}
	imagePart := content[0].(map[string]any)
	if imagePart["type"] != "image_url" {
		t.Fatalf("first part must be the image: %#v", imagePart)
	}
	imageURL := imagePart["image_url"].(map[string]any)
	if imageURL["url"] != "data:image/jpeg;base64,aW1hZ2U=" {
		t.Fatalf("data URI mismatch: %#v", imageURL)
	}

	if res.PromptData["subject"] != "blue haired girl" {
		t.Fatalf("prompt data mismatch: %#v", res.PromptData)
	}
	if res.TokenUsage.PromptTokens != 90 || res.TokenUsage.TotalTokens != 120 {
		t.Fatalf("token usage mismatch: %#v", res.TokenUsage)
	}
}

func TestGeneratePromptNonJSONTextFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionJSON("一段自由发挥的文本"))
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).GeneratePrompt(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GeneratePrompt: %v", err)
	}
	if res.PromptData["raw_response"] != "一段自由发挥的文本" {
		t.Fatalf("expected raw_response fallback, got %#v", res.PromptData)
	}
}

func TestGeneratePromptUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit_exceeded"}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).GeneratePrompt(context.Background(), testRequest())
	var apiErr *upstream.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("status mismatch: %d", apiErr.Status)
	}
	if apiErr.Message != "豆包API错误: 429" {
		t.Fatalf("message mismatch: %q", apiErr.Message)
	}
}
