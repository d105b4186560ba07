package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"smsledger/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLite(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gormDB, mock
}

func newItem(userID string, status models.ItemStatus) *models.AiPendingItem {
	return &models.AiPendingItem{
		UserID:      userID,
		RawText:     "【招商银行】消费 12.00 元",
		Type:        models.TypeExpense,
		Amount:      decimal.RequireFromString("12.00"),
		Description: "测试",
		ParsedDate:  time.Date(2026, 2, 27, 0, 0, 0, 0, time.Local),
		Confidence:  models.ConfidenceHigh,
		Status:      status,
	}
}

func TestSeedCategories_Idempotent(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, SeedCategories(db))

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(models.DefaultCategories())), count)
}

func TestStore_ListCategories(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()

	income, err := store.ListCategories(ctx, models.TypeIncome)
	require.NoError(t, err)
	assert.Len(t, income, 5)
	assert.Equal(t, "工资收入", income[0].Name)

	all, err := store.ListCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestStore_FindItem_NotFound(t *testing.T) {
	store := NewStore(setupSQLite(t))
	_, err := store.FindItem(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ListItems_Pagination(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		item := newItem("u1", models.StatusPending)
		item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.CreateItem(ctx, item))
	}
	require.NoError(t, store.CreateItem(ctx, newItem("u2", models.StatusPending)))
	require.NoError(t, store.CreateItem(ctx, newItem("u1", models.StatusRejected)))

	list, total, err := store.ListItems(ctx, ItemFilter{UserID: "u1", Status: models.StatusPending, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))

	_, total, err = store.ListItems(ctx, ItemFilter{UserID: "u1", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	counts, err := store.CountItemsByStatus(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), counts[models.StatusPending])
	assert.Equal(t, int64(1), counts[models.StatusRejected])
}

func TestStore_TransitionItem_OnlyOnce(t *testing.T) {
	store := NewStore(setupSQLite(t))
	ctx := context.Background()

	item := newItem("u1", models.StatusNeedsManual)
	require.NoError(t, store.CreateItem(ctx, item))

	ok, err := store.TransitionItem(ctx, item.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.TransitionItem(ctx, item.ID, models.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.UpdateOpenItem(ctx, item.ID, map[string]interface{}{"description": "改"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, "测试", got.Description)
}

func TestStore_Transaction_UniqueOrigin(t *testing.T) {
	db := setupSQLite(t)
	store := NewStore(db)
	ctx := context.Background()

	cats, err := store.ListCategories(ctx, models.TypeExpense)
	require.NoError(t, err)
	item := newItem("u1", models.StatusPending)
	require.NoError(t, store.CreateItem(ctx, item))

	newTxn := func() *models.Transaction {
		return &models.Transaction{
			UserID:          "u1",
			CategoryID:      cats[0].ID,
			Type:            models.TypeExpense,
			Amount:          decimal.RequireFromString("12.00"),
			TransactionDate: item.ParsedDate,
			Source:          models.SourceAIExtracted,
			OriginItemID:    &item.ID,
		}
	}

	require.NoError(t, store.Transaction(ctx, func(repo Repository) error {
		return repo.CreateTransaction(ctx, newTxn())
	}))

	// 同一来源第二次写入被唯一索引拒绝，事务整体回滚
	err = store.Transaction(ctx, func(repo Repository) error {
		if _, err := repo.TransitionItem(ctx, item.ID, models.StatusConfirmed); err != nil {
			return err
		}
		return repo.CreateTransaction(ctx, newTxn())
	})
	assert.Error(t, err)

	got, err := store.FindItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStore_Transaction_RollbackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `ai_pending_items` SET `status`=.*WHERE id = \\? AND status IN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	err := store.Transaction(ctx, func(repo Repository) error {
		ok, err := repo.TransitionItem(ctx, "item-1", models.StatusConfirmed)
		if err != nil {
			return err
		}
		assert.True(t, ok)
		return repo.CreateTransaction(ctx, &models.Transaction{
			UserID:     "u1",
			CategoryID: "c1",
			Type:       models.TypeExpense,
			Amount:     decimal.NewFromInt(1),
			Source:     models.SourceAIExtracted,
		})
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateWebhookKey_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET `webhook_key`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.UpdateWebhookKey(context.Background(), "nobody", "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
