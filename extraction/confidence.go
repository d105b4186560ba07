package extraction

import "smsledger/models"

const (
	scoreHint        = 30
	scoreMatched     = 40
	scoreAmount      = 20
	scoreDescription = 10

	thresholdHigh   = 80
	thresholdMedium = 50
)

// Score 结合模型自评与本地匹配结果给出最终置信度。
// 模型自评 LOW 为硬下限；自评 HIGH 只有在本地匹配到分类时才保留。
func Score(e Extraction, matched bool) models.Confidence {
	if e.Confidence == models.ConfidenceLow {
		return models.ConfidenceLow
	}

	score := 0
	if e.CategoryHint != "" {
		score += scoreHint
	}
	if matched {
		score += scoreMatched
	}
	if e.Amount.IsPositive() {
		score += scoreAmount
	}
	if e.Description != "" {
		score += scoreDescription
	}

	if e.Confidence == models.ConfidenceHigh {
		if matched {
			return models.ConfidenceHigh
		}
		return models.ConfidenceMedium
	}

	switch {
	case score >= thresholdHigh:
		return models.ConfidenceHigh
	case score >= thresholdMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// InitialStatus LOW 置信度的记录进入人工处理，其余进入待确认
func InitialStatus(c models.Confidence) models.ItemStatus {
	if c == models.ConfidenceLow {
		return models.StatusNeedsManual
	}
	return models.StatusPending
}
