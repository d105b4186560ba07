package api

import (
	"strings"

	"smsledger/database"
	"smsledger/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 分类目录
type CategoryHandler struct {
	repo database.Repository
}

func NewCategoryHandler(repo database.Repository) *CategoryHandler {
	return &CategoryHandler{repo: repo}
}

// List 列出分类
// @Summary 获取分类列表
// @Description 按类型筛选，按排序字段升序
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param type query string false "交易类型" Enums(EXPENSE, INCOME)
// @Success 200 {object} Response{data=[]models.Category}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	typ := models.TransactionType(strings.ToUpper(c.Query("type")))
	if typ != "" && !typ.Valid() {
		BadRequest(c, "无效的交易类型")
		return
	}
	list, err := h.repo.ListCategories(c.Request.Context(), typ)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}
