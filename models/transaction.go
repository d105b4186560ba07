package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxAmount decimal(12,2) 列可存储的最大金额
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidAmount 金额为正且不超过列宽
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(MaxAmount)
}

// Transaction 账本交易记录，AI 来源的记录只能由确认操作产生
type Transaction struct {
	ID              string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID          string            `json:"user_id" gorm:"type:varchar(36);index;not null"`
	CategoryID      string            `json:"category_id" gorm:"type:varchar(36);index;not null"`
	Type            TransactionType   `json:"type" gorm:"size:16;not null"`
	Amount          decimal.Decimal   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string            `json:"description" gorm:"size:255"`
	TransactionDate time.Time         `json:"transaction_date" gorm:"not null;index"`
	Source          TransactionSource `json:"source" gorm:"size:16;not null"`
	OriginItemID    *string           `json:"origin_item_id" gorm:"type:varchar(36);uniqueIndex"` // 每个待审核项最多产生一条交易
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate 生成 UUID 主键
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
