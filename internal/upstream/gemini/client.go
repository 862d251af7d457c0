// Package gemini implements the conversation-style provider: a single
// generateContent call carrying the instruction prompt, the configured
// example dialogs and the inline image.
package gemini

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"promptoon-golang/server/internal/config"
	"promptoon-golang/server/internal/logger"
	jsonpkg "promptoon-golang/server/internal/pkg/json"
	"promptoon-golang/server/internal/upstream"
)

const (
	maxOutputTokens = 2048
	temperature     = 0.7

	// Fixed turns around the configured dialog examples.
	acknowledgmentText = "我明白了，我会按照您的要求分析图片并生成结构化的提示词..."
	instructionText    = "请分析这张二次元图片并生成提示词:"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
		baseURL: strings.TrimRight(cfg.GeminiBaseURL, "/"),
	}
}

func (c *Client) GeneratePrompt(ctx context.Context, req *upstream.Request) (*upstream.Result, error) {
	payload := generateRequest{
		Contents:         buildContents(req),
		GenerationConfig: generationConfig{MaxOutputTokens: maxOutputTokens, Temperature: temperature},
	}

	body, err := jsonpkg.Marshal(payload)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", req.ModelVersion)
	reqURL := c.baseURL + path + "?key=" + url.QueryEscape(req.APIKey)
	logger.BackendRequest(http.MethodPost, c.baseURL+path+"?key=***", body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	logger.Info("开始请求 Gemini API (%s)...", req.ModelVersion)
	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logger.BackendResponse(resp.StatusCode, time.Since(startTime), string(respBody))

	if resp.StatusCode != http.StatusOK {
		logger.Error("Gemini API 返回错误: %d - %s", resp.StatusCode, string(respBody))
		return nil, &upstream.APIError{
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("Gemini API错误: %d", resp.StatusCode),
			Details: string(respBody),
		}
	}

	var out generateResponse
	if err := jsonpkg.Unmarshal(respBody, &out); err != nil {
		return nil, &upstream.APIError{
			Status:      http.StatusInternalServerError,
			Message:     "无法解析模型响应",
			RawResponse: string(respBody),
		}
	}

	text, ok := out.firstText()
	if !ok {
		logger.Error("解析响应失败: %s", string(respBody))
		return nil, &upstream.APIError{
			Status:      http.StatusInternalServerError,
			Message:     "无法解析模型响应",
			RawResponse: string(respBody),
		}
	}

	return &upstream.Result{
		PromptData:  upstream.ParsePromptData(text),
		RawResponse: text,
		TokenUsage:  extractTokenUsage(out.UsageMetadata),
	}, nil
}

// buildContents assembles the multi-turn conversation: instruction prompt,
// fixed acknowledgment, configured example dialogs, then the image turn.
func buildContents(req *upstream.Request) []upstream.Content {
	contents := make([]upstream.Content, 0, len(req.Dialogs)+3)
	contents = append(contents,
		upstream.Content{Role: "user", Parts: []upstream.Part{{Text: req.Prompt}}},
		upstream.Content{Role: "model", Parts: []upstream.Part{{Text: acknowledgmentText}}},
	)
	contents = append(contents, req.Dialogs...)
	contents = append(contents, upstream.Content{
		Role: "user",
		Parts: []upstream.Part{
			{Text: instructionText},
			{InlineData: &upstream.InlineData{MimeType: "image/jpeg", Data: req.ImageBase64}},
		},
	})
	return contents
}

func extractTokenUsage(meta *usageMetadata) upstream.TokenUsage {
	if meta == nil {
		return upstream.TokenUsage{
			PromptDetail:     map[string]int{},
			CompletionDetail: map[string]int{},
		}
	}
	return upstream.TokenUsage{
		PromptTokens:     meta.PromptTokenCount,
		CompletionTokens: meta.CandidatesTokenCount,
		TotalTokens:      meta.TotalTokenCount,
		PromptDetail:     modalityMap(meta.PromptTokensDetails),
		CompletionDetail: modalityMap(meta.CandidatesTokensDetails),
	}
}

func modalityMap(details []modalityTokenCount) map[string]int {
	out := make(map[string]int, len(details))
	for _, d := range details {
		out[strings.ToLower(d.Modality)] = d.TokenCount
	}
	return out
}
