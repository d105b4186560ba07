package api

import (
	"strconv"
	"strings"

	"smsledger/middleware"
	"smsledger/models"
	"smsledger/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AiItemHandler 短信解析与待审核项
type AiItemHandler struct {
	ingestion *service.IngestionService
	review    *service.ReviewService
	batch     *service.BatchConfirmer
}

// NewAiItemHandler 创建处理器
func NewAiItemHandler(ingestion *service.IngestionService, review *service.ReviewService, batch *service.BatchConfirmer) *AiItemHandler {
	return &AiItemHandler{ingestion: ingestion, review: review, batch: batch}
}

// WebhookRequest 短信转发请求，userId 与 ownerId 任填其一
type WebhookRequest struct {
	RawText    string `json:"rawText" binding:"required" example:"【招商银行】您尾号8888的账户于02月27日14:30支出128.50元，商户名称:美团外卖。"`
	UserID     string `json:"userId" example:"uuid"`
	OwnerID    string `json:"ownerId"`
	WebhookKey string `json:"webhookKey" binding:"required" example:"64位十六进制字符串"`
}

// UpdateAiItemRequest 修改待审核项，未传的字段不修改
type UpdateAiItemRequest struct {
	Type        *models.TransactionType `json:"type" binding:"omitempty,oneof=EXPENSE INCOME"`
	Amount      *decimal.Decimal        `json:"amount"`
	Description *string                 `json:"description"`
	Date        *string                 `json:"date" example:"2026-02-27"`
	CategoryID  *string                 `json:"categoryId"`
}

// ConfirmAiItemRequest 确认入账
type ConfirmAiItemRequest struct {
	Type        models.TransactionType `json:"type" binding:"required,oneof=EXPENSE INCOME"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	Date        string                 `json:"date" example:"2026-02-27"`
	CategoryID  string                 `json:"categoryId"`
}

func (r ConfirmAiItemRequest) input() service.ConfirmInput {
	return service.ConfirmInput{
		Type:        r.Type,
		Amount:      r.Amount,
		Description: r.Description,
		Date:        r.Date,
		CategoryID:  r.CategoryID,
	}
}

// BatchConfirmItem 批量确认中的单项
type BatchConfirmItem struct {
	ID string `json:"id"`
	ConfirmAiItemRequest
}

// BatchConfirmRequest 批量确认
type BatchConfirmRequest struct {
	Items []BatchConfirmItem `json:"items" binding:"required"`
}

// ConfirmResponse 确认结果
type ConfirmResponse struct {
	Transaction *models.Transaction   `json:"transaction"`
	AiItem      *models.AiPendingItem `json:"aiItem"`
}

// Webhook 接收短信并解析
// @Summary 短信 Webhook
// @Description 使用用户专属 Webhook Key 认证，解析短信并创建待审核项。LOW 置信度的记录进入 NEEDS_MANUAL
// @Tags AI 记账
// @Accept json
// @Produce json
// @Param request body WebhookRequest true "短信内容"
// @Success 200 {object} Response{data=models.AiPendingItem} "解析成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "无效的 Webhook Key 或用户不存在"
// @Failure 502 {object} Response "AI 解析服务调用失败"
// @Router /api/v1/ai-items/webhook [post]
func (h *AiItemHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = req.OwnerID
	}
	if ownerID == "" {
		BadRequest(c, "参数错误: userId 不能为空")
		return
	}

	item, err := h.ingestion.Ingest(c.Request.Context(), service.WebhookRequest{
		OwnerID:    ownerID,
		WebhookKey: req.WebhookKey,
		RawText:    req.RawText,
	})
	if err != nil {
		writeServiceError(c, err, "解析短信失败")
		return
	}
	Success(c, item)
}

// List 待审核列表
// @Summary 获取待审核列表
// @Tags AI 记账
// @Produce json
// @Security BearerAuth
// @Param status query string false "状态" Enums(PENDING, NEEDS_MANUAL, CONFIRMED, REJECTED)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} Response{data=PageResponse{list=[]models.AiPendingItem}}
// @Router /api/v1/ai-items [get]
func (h *AiItemHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize == 0 {
		pageSize, _ = strconv.Atoi(c.Query("pageSize"))
	}

	result, err := h.review.List(c.Request.Context(), middleware.GetCurrentUserID(c), service.ListQuery{
		Status:   models.ItemStatus(strings.ToUpper(c.Query("status"))),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		writeServiceError(c, err, "查询失败")
		return
	}
	Page(c, result.Total, result.Page, result.PageSize, result.Items)
}

// Statistics 统计数据
// @Summary 获取 AI 解析统计数据
// @Description 各状态数量，以及最近 7 天按日期、按分类的数量与金额
// @Tags AI 记账
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Statistics}
// @Router /api/v1/ai-items/statistics [get]
func (h *AiItemHandler) Statistics(c *gin.Context) {
	stats, err := h.review.Statistics(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		writeServiceError(c, err, "获取统计数据失败")
		return
	}
	Success(c, stats)
}

// Get 单个待审核项
// @Summary 获取单个待审核项
// @Tags AI 记账
// @Produce json
// @Security BearerAuth
// @Param id path string true "待审核项 ID"
// @Success 200 {object} Response{data=models.AiPendingItem}
// @Failure 403 {object} Response "无权访问"
// @Failure 404 {object} Response "不存在"
// @Router /api/v1/ai-items/{id} [get]
func (h *AiItemHandler) Get(c *gin.Context) {
	item, err := h.review.Get(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "查询失败")
		return
	}
	Success(c, item)
}

// Update 修改待审核项
// @Summary 更新待审核项
// @Description 仅 PENDING / NEEDS_MANUAL 状态可修改，不改变状态与置信度
// @Tags AI 记账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "待审核项 ID"
// @Param request body UpdateAiItemRequest true "修改内容"
// @Success 200 {object} Response{data=models.AiPendingItem}
// @Failure 400 {object} Response "参数错误"
// @Failure 409 {object} Response "状态不允许修改"
// @Router /api/v1/ai-items/{id} [patch]
func (h *AiItemHandler) Update(c *gin.Context) {
	var req UpdateAiItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	item, err := h.review.Update(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), service.ItemPatch{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        req.Date,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeServiceError(c, err, "更新失败")
		return
	}
	SuccessWithMessage(c, "更新成功", item)
}

// Confirm 确认入账
// @Summary 确认入账
// @Description 在同一事务中创建交易记录并将待审核项置为 CONFIRMED
// @Tags AI 记账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "待审核项 ID"
// @Param request body ConfirmAiItemRequest true "最终值"
// @Success 200 {object} Response{data=ConfirmResponse}
// @Failure 400 {object} Response "参数错误"
// @Failure 409 {object} Response "已确认或已拒绝"
// @Router /api/v1/ai-items/{id}/confirm [post]
func (h *AiItemHandler) Confirm(c *gin.Context) {
	var req ConfirmAiItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	result, err := h.review.Confirm(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id"), req.input())
	if err != nil {
		writeServiceError(c, err, "确认失败")
		return
	}
	SuccessWithMessage(c, "确认成功", ConfirmResponse{Transaction: result.Transaction, AiItem: result.Item})
}

// BatchConfirm 批量确认入账
// @Summary 批量确认入账
// @Description 每项独立确认，单项失败不影响其他项
// @Tags AI 记账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchConfirmRequest true "待确认列表"
// @Success 200 {object} Response{data=service.BatchResult}
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/ai-items/batch-confirm [post]
func (h *AiItemHandler) BatchConfirm(c *gin.Context) {
	var req BatchConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	entries := make([]service.BatchEntry, 0, len(req.Items))
	for _, it := range req.Items {
		entries = append(entries, service.BatchEntry{ItemID: it.ID, ConfirmInput: it.input()})
	}

	result, err := h.batch.ConfirmAll(c.Request.Context(), middleware.GetCurrentUserID(c), entries)
	if err != nil {
		writeServiceError(c, err, "批量确认失败")
		return
	}
	Success(c, result)
}

// Reject 拒绝待审核项
// @Summary 删除待审核项（标记为拒绝）
// @Tags AI 记账
// @Produce json
// @Security BearerAuth
// @Param id path string true "待审核项 ID"
// @Success 200 {object} Response "已删除"
// @Failure 409 {object} Response "已确认或已拒绝"
// @Router /api/v1/ai-items/{id} [delete]
func (h *AiItemHandler) Reject(c *gin.Context) {
	if err := h.review.Reject(c.Request.Context(), middleware.GetCurrentUserID(c), c.Param("id")); err != nil {
		writeServiceError(c, err, "删除失败")
		return
	}
	SuccessWithMessage(c, "已删除", nil)
}
