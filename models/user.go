package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User 用户模型
type User struct {
	ID         string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username   string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Password   string         `json:"-" gorm:"size:255;not null"`
	Email      string         `json:"email" gorm:"size:100"`
	WebhookKey string         `json:"-" gorm:"size:64;index"` // 短信转发 Webhook 专属密钥
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate 生成 UUID 主键
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// GenerateWebhookKey 生成 64 位十六进制随机密钥
func GenerateWebhookKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
