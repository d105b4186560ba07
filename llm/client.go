package llm

import (
	"context"
	"fmt"
	"time"

	"smsledger/config"

	"github.com/pkg/errors"
)

// ErrEmptyResponse 模型未返回任何文本
var ErrEmptyResponse = errors.New("模型返回内容为空")

// Client 大模型文本补全接口
type Client interface {
	// Complete 发送系统提示词与用户消息，返回模型输出的原始文本
	Complete(ctx context.Context, system, user string) (string, error)
}

// Options 各供应商通用的调用参数
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OptionsFromConfig 从配置构造调用参数
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}
}

// NewClient 按 provider 创建客户端
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	opts := OptionsFromConfig(cfg)
	if opts.APIKey == "" {
		return nil, errors.New("未配置大模型 API Key")
	}
	switch cfg.Provider {
	case "openai", "deepseek", "":
		return NewOpenAIClient(opts), nil
	case "anthropic":
		return NewAnthropicClient(opts), nil
	case "gemini":
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("不支持的大模型供应商: %s", cfg.Provider)
	}
}
