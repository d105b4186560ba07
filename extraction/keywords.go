package extraction

import (
	"strings"

	"smsledger/models"
)

// CategoryKeywords 分类名称与其关键词
type CategoryKeywords struct {
	Name     string
	Type     models.TransactionType
	Keywords []string
	// Matchable 为 false 的分类只出现在提示词中，不参与本地匹配
	Matchable bool
}

var keywordTable = []CategoryKeywords{
	{Name: "餐饮美食", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"餐饮", "外卖", "美团", "饿了么", "餐厅", "咖啡", "奶茶", "食品", "肯德基", "麦当劳",
		"星巴克", "瑞幸", "必胜客", "海底捞", "点餐", "吃饭", "午餐", "晚餐", "早餐", "夜宵",
	}},
	{Name: "购物消费", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"购物", "淘宝", "京东", "拼多多", "超市", "便利店", "天猫", "商店", "百货", "优衣库",
		"沃尔玛", "盒马", "商城", "下单",
	}},
	{Name: "交通出行", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"交通", "打车", "滴滴", "加油", "停车", "地铁", "高铁", "火车", "机票", "航班",
		"出行", "乘车", "出租车", "网约车", "公交", "共享单车", "哈啰", "高德",
	}},
	{Name: "生活缴费", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"缴费", "水电", "燃气", "物业", "话费", "宽带", "电费", "水费", "充值", "移动",
		"联通", "电信", "天然气",
	}},
	{Name: "医疗健康", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"医疗", "医院", "药店", "体检", "药房", "诊所", "健康", "挂号", "门诊", "医保",
		"齿科", "眼科",
	}},
	{Name: "娱乐休闲", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"娱乐", "游戏", "电影", "KTV", "音乐", "视频", "休闲", "爱奇艺", "腾讯视频", "优酷",
		"Netflix", "Steam", "剧本杀", "密室",
	}},
	{Name: "学习教育", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"教育", "培训", "课程", "学习", "书店", "学校", "网课", "知识付费", "得到", "知乎",
		"VIP", "会员",
	}},
	{Name: "人情往来", Type: models.TypeExpense, Matchable: true, Keywords: []string{
		"红包", "礼金", "人情", "礼物", "请客", "生日", "结婚", "份子钱",
	}},
	{Name: "转账", Type: models.TypeExpense, Matchable: false, Keywords: []string{
		"转账", "汇款", "还款", "转出", "转入", "借条", "还钱",
	}},
	{Name: "工资收入", Type: models.TypeIncome, Matchable: true, Keywords: []string{
		"工资", "薪资", "代发", "薪酬", "月薪", "工资发放", "工资到账",
	}},
	{Name: "投资收益", Type: models.TypeIncome, Matchable: true, Keywords: []string{
		"理财", "收益", "分红", "利息", "基金", "股票", "股息", "红利", "盈利",
	}},
	{Name: "奖金收入", Type: models.TypeIncome, Matchable: true, Keywords: []string{
		"奖金", "提成", "绩效", "年终奖", "奖金发放",
	}},
	{Name: "兼职收入", Type: models.TypeIncome, Matchable: true, Keywords: []string{
		"兼职", "副业", "外快", "劳务费", "稿费",
	}},
}

// KeywordTable 返回关键词表的副本，调用方修改不会影响匹配
func KeywordTable() []CategoryKeywords {
	out := make([]CategoryKeywords, len(keywordTable))
	for i, e := range keywordTable {
		e.Keywords = append([]string(nil), e.Keywords...)
		out[i] = e
	}
	return out
}

func lookupKeywords(name string) (CategoryKeywords, bool) {
	for _, e := range keywordTable {
		if e.Name == name {
			return e, true
		}
	}
	return CategoryKeywords{}, false
}

// containsAny 大小写不敏感的子串匹配
func containsAny(hint string, keywords []string) bool {
	lower := strings.ToLower(hint)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
