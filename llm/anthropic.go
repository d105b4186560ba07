package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicClient Claude Messages API 客户端
type AnthropicClient struct {
	opts   Options
	client anthropic.Client
}

// NewAnthropicClient 创建 Claude 客户端
func NewAnthropicClient(opts Options) *AnthropicClient {
	if opts.Model == "" {
		opts.Model = defaultAnthropicModel
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &AnthropicClient{
		opts:   opts,
		client: anthropic.NewClient(reqOpts...),
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.opts.Model),
		MaxTokens:   int64(c.opts.MaxTokens),
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "claude 调用失败")
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
