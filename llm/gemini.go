package llm

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient Google Gemini 客户端
type GeminiClient struct {
	opts   Options
	client *genai.Client
}

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.Model == "" {
		opts.Model = defaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(err, "创建 gemini 客户端失败")
	}
	return &GeminiClient{opts: opts, client: client}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(c.opts.Temperature)),
		MaxOutputTokens:   int32(c.opts.MaxTokens),
	})
	if err != nil {
		return "", errors.Wrap(err, "gemini 调用失败")
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
