package extraction

import (
	"context"
	"strings"

	"smsledger/models"
)

// CategoryLookup 分类目录查询
type CategoryLookup interface {
	ListCategories(ctx context.Context, typ models.TransactionType) ([]models.Category, error)
}

// Matcher 根据分类提示匹配分类
type Matcher struct {
	lookup CategoryLookup
}

// NewMatcher 创建分类匹配器
func NewMatcher(lookup CategoryLookup) *Matcher {
	return &Matcher{lookup: lookup}
}

// Match 按关键词表顺序在指定类型的分类中查找第一个命中项，
// 目录中不在关键词表里的分类以其名称作为关键词。未命中返回 nil。
func (m *Matcher) Match(ctx context.Context, hint string, typ models.TransactionType) (*models.Category, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" || !typ.Valid() {
		return nil, nil
	}

	catalog, err := m.lookup.ListCategories(ctx, typ)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*models.Category, len(catalog))
	for i := range catalog {
		byName[catalog[i].Name] = &catalog[i]
	}

	for _, entry := range keywordTable {
		if !entry.Matchable {
			continue
		}
		cat, ok := byName[entry.Name]
		if !ok {
			continue
		}
		if containsAny(hint, entry.Keywords) {
			return cat, nil
		}
	}

	for i := range catalog {
		if _, known := lookupKeywords(catalog[i].Name); known {
			continue
		}
		if containsAny(hint, []string{catalog[i].Name}) {
			return &catalog[i], nil
		}
	}
	return nil, nil
}
