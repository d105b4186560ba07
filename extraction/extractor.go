package extraction

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"smsledger/llm"

	"github.com/pkg/errors"
)

// ErrNoJSONBlock 模型响应中没有 JSON 对象
var ErrNoJSONBlock = errors.New("无法从 AI 响应中提取 JSON")

// ExtractJSONBlock 取第一个 { 到最后一个 } 之间的内容，兼容 markdown 代码块包裹
func ExtractJSONBlock(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONBlock
	}
	return s[start : end+1], nil
}

// Extractor 调用大模型并解析出原始 JSON
type Extractor struct {
	client llm.Client
}

// NewExtractor 创建解析器
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract 网络错误、非 2xx、缺少或无法解析的 JSON 均返回错误
func (e *Extractor) Extract(ctx context.Context, rawText string, now time.Time) (Raw, error) {
	content, err := e.client.Complete(ctx, SystemPrompt(now), UserPrompt(rawText))
	if err != nil {
		return Raw{}, err
	}

	block, err := ExtractJSONBlock(content)
	if err != nil {
		return Raw{}, err
	}

	var raw Raw
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Raw{}, errors.Wrap(err, "解析 AI 响应 JSON 失败")
	}
	return raw, nil
}
