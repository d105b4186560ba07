package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"smsledger/config"
	"smsledger/database"
	"smsledger/logger"
	"smsledger/models"

	"github.com/shopspring/decimal"
)

const (
	uncategorized = "未分类"
	statsWindow   = 7 * 24 * time.Hour
)

// ReviewService 待审核项的查询、修改、确认与拒绝
type ReviewService struct {
	repo            database.Repository
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// NewReviewService 创建审核服务
func NewReviewService(repo database.Repository, cfg config.ReviewConfig) *ReviewService {
	return &ReviewService{
		repo:            repo,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		now:             time.Now,
	}
}

// ListQuery 列表查询参数
type ListQuery struct {
	Status   models.ItemStatus
	Page     int
	PageSize int
}

// ItemPage 分页结果
type ItemPage struct {
	Items      []models.AiPendingItem
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// List 按创建时间倒序分页
func (s *ReviewService) List(ctx context.Context, userID string, q ListQuery) (*ItemPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: 无效的状态 %s", ErrValidation, q.Status)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = s.defaultPageSize
	}
	if s.maxPageSize > 0 && q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}

	items, total, err := s.repo.ListItems(ctx, database.ItemFilter{
		UserID:   userID,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &ItemPage{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: int((total + int64(q.PageSize) - 1) / int64(q.PageSize)),
	}, nil
}

// Get 获取单个待审核项，不属于当前用户时返回 ErrForbidden
func (s *ReviewService) Get(ctx context.Context, userID, id string) (*models.AiPendingItem, error) {
	item, err := s.repo.FindItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrForbidden
	}
	return item, nil
}

// ItemPatch 可修改字段，nil 表示不修改
type ItemPatch struct {
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	Date        *string
	CategoryID  *string
}

func (p ItemPatch) empty() bool {
	return p.Type == nil && p.Amount == nil && p.Description == nil && p.Date == nil && p.CategoryID == nil
}

// Update 修改未终结的待审核项，不改变状态与置信度
func (s *ReviewService) Update(ctx context.Context, userID, id string, patch ItemPatch) (*models.AiPendingItem, error) {
	if patch.empty() {
		return nil, fmt.Errorf("%w: 没有需要更新的字段", ErrValidation)
	}
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item.Status.Terminal() {
		return nil, ErrInvalidStateTransition
	}

	fields := make(map[string]interface{})
	finalType := item.Type
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, fmt.Errorf("%w: 无效的交易类型", ErrValidation)
		}
		finalType = *patch.Type
		fields["type"] = finalType
	}
	if patch.Amount != nil {
		amount := patch.Amount.Round(2)
		if !models.ValidAmount(amount) {
			return nil, fmt.Errorf("%w: 金额必须大于 0 且不超过 %s", ErrValidation, models.MaxAmount)
		}
		fields["amount"] = amount
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Date != nil {
		date, err := parseInputDate(*patch.Date)
		if err != nil {
			return nil, err
		}
		fields["parsed_date"] = date
	}

	finalCategoryID := item.CategoryID
	if patch.CategoryID != nil {
		finalCategoryID = patch.CategoryID
		fields["category_id"] = *patch.CategoryID
	}
	if finalCategoryID != nil && (patch.CategoryID != nil || patch.Type != nil) {
		if _, err := s.categoryFor(ctx, *finalCategoryID, finalType); err != nil {
			return nil, err
		}
	}

	ok, err := s.repo.UpdateOpenItem(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}
	return s.repo.FindItem(ctx, id)
}

// ConfirmInput 确认入账时的最终值，优先于待审核项中保存的值
type ConfirmInput struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        string
	CategoryID  string
}

// ConfirmResult 确认结果
type ConfirmResult struct {
	Transaction *models.Transaction
	Item        *models.AiPendingItem
}

// Confirm 在同一个事务中创建交易记录并将待审核项置为 CONFIRMED
func (s *ReviewService) Confirm(ctx context.Context, userID, id string, in ConfirmInput) (*ConfirmResult, error) {
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if item.Status.Terminal() {
		return nil, ErrInvalidStateTransition
	}

	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: 无效的交易类型", ErrValidation)
	}
	amount := in.Amount.Round(2)
	if !models.ValidAmount(amount) {
		return nil, fmt.Errorf("%w: 金额必须大于 0 且不超过 %s", ErrValidation, models.MaxAmount)
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, fmt.Errorf("%w: 请选择分类", ErrValidation)
	}
	category, err := s.categoryFor(ctx, in.CategoryID, in.Type)
	if err != nil {
		return nil, err
	}
	date := item.ParsedDate
	if strings.TrimSpace(in.Date) != "" {
		if date, err = parseInputDate(in.Date); err != nil {
			return nil, err
		}
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = item.Description
	}

	originID := item.ID
	txn := &models.Transaction{
		UserID:          userID,
		CategoryID:      category.ID,
		Type:            in.Type,
		Amount:          amount,
		Description:     description,
		TransactionDate: date,
		Source:          models.SourceAIExtracted,
		OriginItemID:    &originID,
	}

	err = s.repo.Transaction(ctx, func(tx database.Repository) error {
		ok, err := tx.TransitionItem(ctx, item.ID, models.StatusConfirmed)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidStateTransition
		}
		return tx.CreateTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	item.Status = models.StatusConfirmed
	txn.Category = category
	logger.FromContext(ctx).Info().
		Str("item_id", item.ID).
		Str("transaction_id", txn.ID).
		Msg("待审核项已确认入账")
	return &ConfirmResult{Transaction: txn, Item: item}, nil
}

// Reject 拒绝待审核项，不创建交易；重复拒绝返回 ErrInvalidStateTransition
func (s *ReviewService) Reject(ctx context.Context, userID, id string) error {
	item, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if item.Status.Terminal() {
		return ErrInvalidStateTransition
	}
	ok, err := s.repo.TransitionItem(ctx, id, models.StatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidStateTransition
	}
	logger.FromContext(ctx).Info().Str("item_id", id).Msg("待审核项已拒绝")
	return nil
}

// StatBucket 统计桶
type StatBucket struct {
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Statistics 各状态数量及最近 7 天按日、按分类的汇总
type Statistics struct {
	Total         int64                  `json:"total"`
	Pending       int64                  `json:"pending"`
	Confirmed     int64                  `json:"confirmed"`
	Rejected      int64                  `json:"rejected"`
	NeedsManual   int64                  `json:"needsManual"`
	DailyStats    map[string]*StatBucket `json:"dailyStats"`
	CategoryStats map[string]*StatBucket `json:"categoryStats"`
}

// Statistics 获取统计数据
func (s *ReviewService) Statistics(ctx context.Context, userID string) (*Statistics, error) {
	counts, err := s.repo.CountItemsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats := &Statistics{
		Pending:       counts[models.StatusPending],
		Confirmed:     counts[models.StatusConfirmed],
		Rejected:      counts[models.StatusRejected],
		NeedsManual:   counts[models.StatusNeedsManual],
		DailyStats:    make(map[string]*StatBucket),
		CategoryStats: make(map[string]*StatBucket),
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Rejected + stats.NeedsManual

	recent, err := s.repo.ListItemsSince(ctx, userID, s.now().Add(-statsWindow))
	if err != nil {
		return nil, err
	}
	add := func(m map[string]*StatBucket, key string, amount decimal.Decimal) {
		b, ok := m[key]
		if !ok {
			b = &StatBucket{Amount: decimal.Zero}
			m[key] = b
		}
		b.Count++
		b.Amount = b.Amount.Add(amount)
	}
	for _, item := range recent {
		add(stats.DailyStats, item.CreatedAt.Format("2006-01-02"), item.Amount)
		name := uncategorized
		if item.Category != nil {
			name = item.Category.Name
		}
		add(stats.CategoryStats, name, item.Amount)
	}
	return stats, nil
}

// categoryFor 分类必须存在且类型与交易类型一致
func (s *ReviewService) categoryFor(ctx context.Context, id string, typ models.TransactionType) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: 分类不存在", ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if category.Type != typ {
		return nil, fmt.Errorf("%w: 分类类型与交易类型不一致", ErrValidation)
	}
	return category, nil
}

var inputDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// parseInputDate 人工输入的日期必须是完整日期
func parseInputDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: 日期格式应为 YYYY-MM-DD", ErrValidation)
}
