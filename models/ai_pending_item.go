package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AiPendingItem AI 解析出的待审核交易
type AiPendingItem struct {
	ID          string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID      string          `json:"user_id" gorm:"type:varchar(36);index:idx_item_user_status;not null"`
	RawText     string          `json:"raw_text" gorm:"type:text;not null"`
	Type        TransactionType `json:"type" gorm:"size:16;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description string          `json:"description" gorm:"size:255"`
	ParsedDate  time.Time       `json:"parsed_date" gorm:"not null"`
	CategoryID  *string         `json:"category_id" gorm:"type:varchar(36);index"`
	Confidence  Confidence      `json:"confidence" gorm:"size:16;not null"`
	Status      ItemStatus      `json:"status" gorm:"size:16;not null;index:idx_item_user_status"`
	ParseError  *string         `json:"parse_error" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (AiPendingItem) TableName() string {
	return "ai_pending_items"
}

// BeforeCreate 生成 UUID 主键
func (i *AiPendingItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
