package database

import (
	"context"
	"errors"
	"time"

	"smsledger/models"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// ItemFilter 待审核项列表筛选条件
type ItemFilter struct {
	UserID   string
	Status   models.ItemStatus
	Page     int
	PageSize int
}

// Repository 审核流程依赖的持久化接口
type Repository interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateWebhookKey(ctx context.Context, userID, key string) error

	FindCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, typ models.TransactionType) ([]models.Category, error)

	CreateItem(ctx context.Context, item *models.AiPendingItem) error
	FindItem(ctx context.Context, id string) (*models.AiPendingItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]models.AiPendingItem, int64, error)
	ListItemsSince(ctx context.Context, userID string, since time.Time) ([]models.AiPendingItem, error)
	CountItemsByStatus(ctx context.Context, userID string) (map[models.ItemStatus]int64, error)
	UpdateOpenItem(ctx context.Context, id string, fields map[string]interface{}) (bool, error)
	TransitionItem(ctx context.Context, id string, to models.ItemStatus) (bool, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// Transaction 在同一个本地事务中执行 fn，fn 返回错误时回滚
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// Store gorm 实现
type Store struct {
	db *gorm.DB
}

// NewStore 创建 gorm 存储
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ? OR email = ?", username, username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// UpdateWebhookKey 覆盖旧密钥，旧密钥立即失效
func (s *Store) UpdateWebhookKey(ctx context.Context, userID, key string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("webhook_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, notFound(err)
	}
	return &cat, nil
}

// ListCategories typ 为空时返回全部分类
func (s *Store) ListCategories(ctx context.Context, typ models.TransactionType) ([]models.Category, error) {
	query := s.db.WithContext(ctx).Model(&models.Category{})
	if typ != "" {
		query = query.Where("type = ?", typ)
	}
	var list []models.Category
	if err := query.Order("type ASC, sort_order ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) CreateItem(ctx context.Context, item *models.AiPendingItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FindItem(ctx context.Context, id string) (*models.AiPendingItem, error) {
	var item models.AiPendingItem
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context, filter ItemFilter) ([]models.AiPendingItem, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AiPendingItem{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.AiPendingItem
	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Preload("Category").Order("created_at DESC").Offset(offset).Limit(filter.PageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Store) ListItemsSince(ctx context.Context, userID string, since time.Time) ([]models.AiPendingItem, error) {
	var list []models.AiPendingItem
	err := s.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (s *Store) CountItemsByStatus(ctx context.Context, userID string) (map[models.ItemStatus]int64, error) {
	var rows []struct {
		Status models.ItemStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.AiPendingItem{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ItemStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// UpdateOpenItem 仅在记录仍处于可审核状态时更新字段，返回是否命中
func (s *Store) UpdateOpenItem(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.AiPendingItem{}).
		Where("id = ? AND status IN ?", id, models.OpenStatuses()).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// TransitionItem 将可审核状态的记录迁移到终态，并发下只有一次能成功
func (s *Store) TransitionItem(ctx context.Context, id string, to models.ItemStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.AiPendingItem{}).
		Where("id = ? AND status IN ?", id, models.OpenStatuses()).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

func (s *Store) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

var _ Repository = (*Store)(nil)
