package extraction

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"smsledger/models"

	"github.com/shopspring/decimal"
)

const (
	parseErrUnknownType = "无法确定交易类型"
	parseErrBadAmount   = "无法提取有效金额"

	typeTransfer = "TRANSFER"
)

// Raw 模型返回的原始 JSON 结构
type Raw struct {
	Type         string          `json:"type"`
	Amount       json.RawMessage `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	CategoryHint string          `json:"categoryHint"`
	Confidence   string          `json:"confidence"`
	ParseError   string          `json:"parseError"`
}

// TypeVerdict 原始交易类型的判定结果
type TypeVerdict int

const (
	TypeRecognized TypeVerdict = iota
	TypeLegacyTransfer
	TypeUnrecognized
)

// Extraction 归一化后的解析结果，字段均可直接落库
type Extraction struct {
	Type         models.TransactionType
	TypeVerdict  TypeVerdict
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	CategoryHint string
	Confidence   models.Confidence
	ParseError   string
}

// Normalize 校验并修复模型输出：类型、金额、日期依次处理，结果总是可用的
func Normalize(raw Raw, now time.Time) Extraction {
	e := Extraction{
		Description:  strings.TrimSpace(raw.Description),
		CategoryHint: strings.TrimSpace(raw.CategoryHint),
		Confidence:   normalizeConfidence(raw.Confidence),
		ParseError:   strings.TrimSpace(raw.ParseError),
	}

	switch t := models.TransactionType(strings.ToUpper(strings.TrimSpace(raw.Type))); {
	case t.Valid():
		e.Type = t
		e.TypeVerdict = TypeRecognized
	case string(t) == typeTransfer:
		e.Type = models.TypeExpense
		e.TypeVerdict = TypeLegacyTransfer
	default:
		e.Type = models.TypeExpense
		e.TypeVerdict = TypeUnrecognized
		e.Confidence = models.ConfidenceLow
		e.ParseError = parseErrUnknownType
	}

	amount, ok := parseAmount(raw.Amount)
	if ok {
		e.Amount = amount
	} else {
		e.Amount = decimal.Zero
		e.Confidence = models.ConfidenceLow
		if e.ParseError == "" {
			e.ParseError = parseErrBadAmount
		}
	}

	e.Date = ParseDate(raw.Date, now)
	return e
}

// normalizeConfidence 缺失或非法的置信度按 MEDIUM 处理，交由本地评分决定
func normalizeConfidence(s string) models.Confidence {
	c := models.Confidence(strings.ToUpper(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return models.ConfidenceMedium
}

var amountReplacer = strings.NewReplacer(",", "", "，", "", "元", "", "¥", "", "￥", "", "RMB", "", "CNY", "", " ", "")

// parseAmount 接受数字或数字字符串，保留两位小数；只有不超过列宽的正数才有效
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero, false
		}
		s = amountReplacer.Replace(strings.TrimSpace(unquoted))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	d = d.Round(2)
	if !models.ValidAmount(d) {
		return decimal.Zero, false
	}
	return d, true
}

var fullDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

var (
	cnFullDateRe  = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日`)
	cnShortDateRe = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日`)
	shortDateRe   = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})$`)
)

// ParseDate 解析日期，只有月日时补当前年份，无法解析时取当天
func ParseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if s == "" {
		return today
	}

	for _, layout := range fullDateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
	}
	if m := cnFullDateRe.FindStringSubmatch(s); m != nil {
		if t, ok := buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), loc); ok {
			return t
		}
	}
	for _, re := range []*regexp.Regexp{cnShortDateRe, shortDateRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			if t, ok := buildDate(now.Year(), atoi(m[1]), atoi(m[2]), loc); ok {
				return t
			}
		}
	}
	return today
}

func buildDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// 02-30 之类的日期会被 time.Date 进位，视为非法
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
