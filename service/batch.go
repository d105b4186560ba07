package service

import (
	"context"
	"fmt"

	"smsledger/config"
	"smsledger/logger"
	"smsledger/models"

	"golang.org/x/sync/errgroup"
)

// BatchEntry 批量确认中的一项
type BatchEntry struct {
	ItemID string
	ConfirmInput
}

// BatchItemResult 单项确认结果
type BatchItemResult struct {
	ItemID      string              `json:"itemId"`
	Success     bool                `json:"success"`
	Error       string              `json:"error,omitempty"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// BatchResult 批量确认汇总，Results 与输入顺序一致
type BatchResult struct {
	SuccessCount int               `json:"successCount"`
	FailedCount  int               `json:"failedCount"`
	Results      []BatchItemResult `json:"results"`
}

// BatchConfirmer 并发确认多个待审核项，每项独立成败
type BatchConfirmer struct {
	review   *ReviewService
	workers  int
	maxBatch int
}

// NewBatchConfirmer 并发度不超过 workers
func NewBatchConfirmer(review *ReviewService, cfg config.ReviewConfig) *BatchConfirmer {
	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &BatchConfirmer{review: review, workers: workers, maxBatch: cfg.MaxBatchSize}
}

// ConfirmAll 单项失败只记录在结果中，不影响其他项
func (b *BatchConfirmer) ConfirmAll(ctx context.Context, userID string, entries []BatchEntry) (*BatchResult, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: 至少需要一条待确认记录", ErrValidation)
	}
	if b.maxBatch > 0 && len(entries) > b.maxBatch {
		return nil, fmt.Errorf("%w: 单次最多确认 %d 条", ErrValidation, b.maxBatch)
	}

	results := make([]BatchItemResult, len(entries))
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, entry := range entries {
		g.Go(func() error {
			res := BatchItemResult{ItemID: entry.ItemID}
			out, err := b.review.Confirm(ctx, userID, entry.ItemID, entry.ConfirmInput)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Success = true
				res.Transaction = out.Transaction
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	out := &BatchResult{Results: results}
	for _, r := range results {
		if r.Success {
			out.SuccessCount++
		} else {
			out.FailedCount++
		}
	}
	logger.FromContext(ctx).Info().
		Int("success", out.SuccessCount).
		Int("failed", out.FailedCount).
		Msg("批量确认完成")
	return out, nil
}
