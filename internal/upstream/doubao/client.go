// Package doubao implements the single-turn provider against the Ark
// OpenAI-compatible chat completions API. The image travels as a data-URI
// content part and model "thinking" is explicitly disabled.
package doubao

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"promptoon-golang/server/internal/config"
	"promptoon-golang/server/internal/logger"
	"promptoon-golang/server/internal/upstream"
)

const instructionText = "请分析这张二次元图片并生成提示词:"

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
		baseURL: strings.TrimRight(cfg.DoubaoBaseURL, "/"),
	}
}

func (c *Client) GeneratePrompt(ctx context.Context, req *upstream.Request) (*upstream.Result, error) {
	// The SDK client is cheap to build and the key changes per request.
	client := openai.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithAPIKey(req.APIKey),
		option.WithHTTPClient(c.httpClient),
		// Every upstream failure is terminal for the request; the SDK's
		// built-in retry would silently violate that.
		option.WithMaxRetries(0),
	)

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: "data:image/jpeg;base64," + req.ImageBase64,
		}),
		openai.TextContentPart(req.Prompt + "\n\n" + instructionText),
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.ModelVersion),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
	}

	logger.Info("开始请求豆包 API (%s)...", req.ModelVersion)
	completion, err := client.Chat.Completions.New(ctx, params,
		option.WithJSONSet("thinking", map[string]string{"type": "disabled"}),
	)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logger.Error("豆包 API 返回错误: %d - %s", apiErr.StatusCode, apiErr.Error())
			return nil, &upstream.APIError{
				Status:  http.StatusInternalServerError,
				Message: fmt.Sprintf("豆包API错误: %d", apiErr.StatusCode),
				Details: apiErr.RawJSON(),
			}
		}
		return nil, err
	}

	if len(completion.Choices) == 0 {
		return nil, &upstream.APIError{
			Status:      http.StatusInternalServerError,
			Message:     "无法解析模型响应",
			RawResponse: completion.RawJSON(),
		}
	}

	text := completion.Choices[0].Message.Content
	return &upstream.Result{
		PromptData:  upstream.ParsePromptData(text),
		RawResponse: text,
		TokenUsage: upstream.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
			PromptDetail:     map[string]int{},
			CompletionDetail: map[string]int{},
		},
	}, nil
}
