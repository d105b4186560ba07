package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 交易分类（系统维护，按 名称+类型 唯一）
type Category struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string          `json:"name" gorm:"size:50;not null;uniqueIndex:idx_category_name_type"`
	Type       TransactionType `json:"type" gorm:"size:16;not null;uniqueIndex:idx_category_name_type;index"`
	Icon       string          `json:"icon" gorm:"size:50"`
	ColorClass string          `json:"color_class" gorm:"size:50"`
	SortOrder  int             `json:"sort_order" gorm:"default:0;index"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 生成 UUID 主键
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DefaultCategories 系统预置分类
func DefaultCategories() []Category {
	return []Category{
		{Name: "餐饮美食", Type: TypeExpense, Icon: "restaurant", ColorClass: "text-orange-500", SortOrder: 1},
		{Name: "购物消费", Type: TypeExpense, Icon: "shopping_bag", ColorClass: "text-pink-500", SortOrder: 2},
		{Name: "交通出行", Type: TypeExpense, Icon: "directions_car", ColorClass: "text-blue-500", SortOrder: 3},
		{Name: "生活缴费", Type: TypeExpense, Icon: "lightbulb", ColorClass: "text-yellow-500", SortOrder: 4},
		{Name: "医疗健康", Type: TypeExpense, Icon: "favorite", ColorClass: "text-red-500", SortOrder: 5},
		{Name: "娱乐休闲", Type: TypeExpense, Icon: "sports_esports", ColorClass: "text-purple-500", SortOrder: 6},
		{Name: "学习教育", Type: TypeExpense, Icon: "school", ColorClass: "text-indigo-500", SortOrder: 7},
		{Name: "人情往来", Type: TypeExpense, Icon: "card_giftcard", ColorClass: "text-rose-500", SortOrder: 8},
		{Name: "转账", Type: TypeExpense, Icon: "swap_horiz", ColorClass: "text-cyan-500", SortOrder: 9},
		{Name: "其他支出", Type: TypeExpense, Icon: "inventory_2", ColorClass: "text-gray-500", SortOrder: 10},
		{Name: "工资收入", Type: TypeIncome, Icon: "account_balance_wallet", ColorClass: "text-green-500", SortOrder: 1},
		{Name: "兼职收入", Type: TypeIncome, Icon: "work", ColorClass: "text-teal-500", SortOrder: 2},
		{Name: "投资收益", Type: TypeIncome, Icon: "trending_up", ColorClass: "text-emerald-500", SortOrder: 3},
		{Name: "红包礼金", Type: TypeIncome, Icon: "card_giftcard", ColorClass: "text-red-500", SortOrder: 4},
		{Name: "其他收入", Type: TypeIncome, Icon: "attach_money", ColorClass: "text-lime-500", SortOrder: 5},
	}
}
