package models

// TransactionType 交易类型，金额始终为非负数，方向只由类型区分
type TransactionType string

const (
	TypeExpense TransactionType = "EXPENSE"
	TypeIncome  TransactionType = "INCOME"
)

// Valid 是否为合法的交易类型
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Confidence 解析置信度
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Valid 是否为合法的置信度
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// ItemStatus 待审核项状态
type ItemStatus string

const (
	StatusPending     ItemStatus = "PENDING"
	StatusNeedsManual ItemStatus = "NEEDS_MANUAL"
	StatusConfirmed   ItemStatus = "CONFIRMED"
	StatusRejected    ItemStatus = "REJECTED"
)

// Valid 是否为合法的状态
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusPending, StatusNeedsManual, StatusConfirmed, StatusRejected:
		return true
	}
	return false
}

// Terminal 已确认或已拒绝的记录不可再变更
func (s ItemStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// OpenStatuses 可被确认或拒绝的状态
func OpenStatuses() []ItemStatus {
	return []ItemStatus{StatusPending, StatusNeedsManual}
}

// TransactionSource 交易来源
type TransactionSource string

const (
	SourceManual      TransactionSource = "MANUAL"
	SourceAIExtracted TransactionSource = "AI_EXTRACTED"
)
