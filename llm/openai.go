package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	defaultOpenAIBaseURL = "https://api.deepseek.com/v1"
	defaultOpenAIModel   = "deepseek-chat"
)

// OpenAIClient OpenAI 兼容的 chat/completions 接口（DeepSeek 等）
type OpenAIClient struct {
	opts       Options
	httpClient *http.Client
}

// NewOpenAIClient 创建 OpenAI 兼容客户端
func NewOpenAIClient(opts Options) *OpenAIClient {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultOpenAIBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultOpenAIModel
	}
	return &OpenAIClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

// Complete 调用 /chat/completions 并返回第一条回复内容
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", errors.Wrap(err, "序列化请求失败")
	}

	url := strings.TrimRight(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "创建请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "请求大模型失败")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "读取响应失败")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error.message").String()
		if msg == "" {
			msg = string(data)
		}
		return "", errors.Errorf("大模型返回错误 (%d): %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(data, "choices.0.message.content")
	if !content.Exists() || content.String() == "" {
		return "", ErrEmptyResponse
	}
	return content.String(), nil
}
