package extraction

import (
	"fmt"
	"strings"
	"time"
)

const promptKeywordsPerCategory = 8

const systemPromptHeader = `你是一个专业的银行短信解析助手。请从短信中提取交易信息，返回 JSON 格式。

## 输出格式
返回严格的 JSON 格式，不要包含任何其他文字：
{
  "type": "EXPENSE" | "INCOME",
  "amount": 数字或null,
  "description": "商户名称或交易描述",
  "date": "YYYY-MM-DD格式日期",
  "categoryHint": "分类名称",
  "confidence": "HIGH" | "MEDIUM" | "LOW",
  "parseError": "错误原因（仅在无法解析时填写）"
}

## 交易类型判断规则
1. EXPENSE（支出）：消费、付款、支付、扣款、购买、支出、转账、汇款、还款
2. INCOME（收入）：收入、入账、到账、收款、工资、奖金、退款

## 金额提取规则
1. 提取纯数字，不带货币符号
2. 如果有多种金额（如手续费），取主要交易金额
3. 如果无法确定金额，设为 null，confidence 设为 LOW
`

const systemPromptFooter = `
## 置信度评估规则
- HIGH：金额明确、分类清晰、日期完整
- MEDIUM：信息基本完整，但有部分不确定
- LOW：信息不完整、无法确定金额或分类、短信格式异常

## 无法解析的情况
如果短信不是银行交易短信或无法解析：
- type 设为 "EXPENSE"（默认）
- amount 设为 null
- confidence 设为 "LOW"
- parseError 填写具体原因`

// SystemPrompt 生成系统提示词，分类列表取自本地关键词表
func SystemPrompt(now time.Time) string {
	var sb strings.Builder
	sb.WriteString(systemPromptHeader)

	sb.WriteString("\n## 日期处理规则\n")
	sb.WriteString("1. 如果有完整日期，直接使用\n")
	fmt.Fprintf(&sb, "2. 如果只有月日（如\"02月27日\"），补充当前年份 %d\n", now.Year())
	fmt.Fprintf(&sb, "3. 如果没有日期，使用今天日期 %s\n", now.Format("2006-01-02"))

	sb.WriteString("\n## 分类匹配（categoryHint）\n")
	sb.WriteString("根据交易描述匹配最合适的分类：\n")
	for _, entry := range keywordTable {
		kws := entry.Keywords
		if len(kws) > promptKeywordsPerCategory {
			kws = kws[:promptKeywordsPerCategory]
		}
		fmt.Fprintf(&sb, "- %s：%s等", entry.Name, strings.Join(kws, "、"))
		if !entry.Matchable {
			sb.WriteString("（注意：转账属于支出类型）")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(systemPromptFooter)
	return sb.String()
}

// UserPrompt 包装原始短信
func UserPrompt(rawText string) string {
	return fmt.Sprintf("请解析以下短信内容，提取交易信息：\n\n\"%s\"\n\n请只返回 JSON，不要其他文字。", rawText)
}
