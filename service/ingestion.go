package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"smsledger/database"
	"smsledger/extraction"
	"smsledger/llm"
	"smsledger/logger"
	"smsledger/models"
)

const defaultDescription = "待确认"

// WebhookRequest 短信转发请求
type WebhookRequest struct {
	OwnerID    string
	WebhookKey string
	RawText    string
}

// IngestionService 短信解析入库流程
type IngestionService struct {
	repo      database.Repository
	extractor *extraction.Extractor
	matcher   *extraction.Matcher
	timeout   time.Duration
	now       func() time.Time
}

// NewIngestionService 创建解析服务，timeout 为单次大模型调用的超时
func NewIngestionService(repo database.Repository, client llm.Client, timeout time.Duration) *IngestionService {
	return &IngestionService{
		repo:      repo,
		extractor: extraction.NewExtractor(client),
		matcher:   extraction.NewMatcher(repo),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Authenticate 校验 webhook 密钥，用户不存在、未设置密钥或不匹配都返回 ErrUnauthorized
func (s *IngestionService) Authenticate(ctx context.Context, ownerID, key string) (*models.User, error) {
	log := logger.FromContext(ctx)
	if ownerID == "" || key == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.repo.FindUser(ctx, ownerID)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn().Str("owner_id", ownerID).Msg("webhook 用户不存在")
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if user.WebhookKey == "" || subtle.ConstantTimeCompare([]byte(user.WebhookKey), []byte(key)) != 1 {
		log.Warn().Str("owner_id", ownerID).Msg("webhook 密钥不匹配")
		return nil, ErrUnauthorized
	}
	return user, nil
}

// Ingest 认证 -> 调用大模型 -> 归一化 -> 匹配分类 -> 评估置信度 -> 创建待审核项
func (s *IngestionService) Ingest(ctx context.Context, req WebhookRequest) (*models.AiPendingItem, error) {
	user, err := s.Authenticate(ctx, req.OwnerID, req.WebhookKey)
	if err != nil {
		return nil, err
	}
	rawText := strings.TrimSpace(req.RawText)
	if rawText == "" {
		return nil, fmt.Errorf("%w: 短信内容不能为空", ErrValidation)
	}

	log := logger.FromContext(ctx).With().Str("owner_id", user.ID).Logger()
	now := s.now()

	llmCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	raw, err := s.extractor.Extract(llmCtx, rawText, now)
	if err != nil {
		log.Error().Err(err).Msg("AI 解析短信失败")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamExtraction, err)
	}

	ext := extraction.Normalize(raw, now)
	category, err := s.matcher.Match(ctx, ext.CategoryHint, ext.Type)
	if err != nil {
		return nil, fmt.Errorf("匹配分类失败: %w", err)
	}
	confidence := extraction.Score(ext, category != nil)

	item := &models.AiPendingItem{
		UserID:      user.ID,
		RawText:     rawText,
		Type:        ext.Type,
		Amount:      ext.Amount,
		Description: ext.Description,
		ParsedDate:  ext.Date,
		Confidence:  confidence,
		Status:      extraction.InitialStatus(confidence),
	}
	if item.Description == "" {
		item.Description = defaultDescription
	}
	if category != nil {
		item.CategoryID = &category.ID
	}
	if ext.ParseError != "" {
		parseErr := ext.ParseError
		item.ParseError = &parseErr
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("保存待审核项失败: %w", err)
	}
	item.Category = category

	log.Info().
		Str("item_id", item.ID).
		Str("confidence", string(item.Confidence)).
		Str("status", string(item.Status)).
		Msg("已创建待审核项")
	return item, nil
}
