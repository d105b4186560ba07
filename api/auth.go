package api

import (
	"smsledger/config"
	"smsledger/middleware"
	"smsledger/models"
	"smsledger/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg      *config.Config
	accounts *service.AccountService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{cfg: cfg, accounts: accounts}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"testuser"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"test@example.com"`
}

// LoginRequest 登录请求（支持用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"testuser"` // 可为用户名或邮箱
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// WebhookKeyResponse webhook 密钥
type WebhookKeyResponse struct {
	UserID     string `json:"userId"`
	WebhookKey string `json:"webhookKey"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号，同时生成短信转发专用的 Webhook Key
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "用户名已存在"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(c, err, "创建用户失败")
		return
	}
	SuccessWithMessage(c, "注册成功", user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 用户登录获取 JWT token
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "用户名或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(c, err, "登录失败")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}
	SuccessWithMessage(c, "登录成功", LoginResponse{Token: token, UserInfo: *user})
}

// GetWebhookKey 获取当前用户的 Webhook Key
// @Summary 获取 Webhook Key
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=WebhookKeyResponse}
// @Router /api/v1/auth/webhook-key [get]
func (h *AuthHandler) GetWebhookKey(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	key, err := h.accounts.WebhookKey(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "用户不存在")
		return
	}
	Success(c, WebhookKeyResponse{UserID: userID, WebhookKey: key})
}

// RegenerateWebhookKey 重新生成 Webhook Key
// @Summary 重新生成 Webhook Key
// @Description 旧密钥立即失效；配置了邮件服务时会发送通知
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=WebhookKeyResponse}
// @Router /api/v1/auth/webhook-key/regenerate [post]
func (h *AuthHandler) RegenerateWebhookKey(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	key, err := h.accounts.RegenerateWebhookKey(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err, "用户不存在")
		return
	}
	SuccessWithMessage(c, "Webhook Key 已重新生成", WebhookKeyResponse{UserID: userID, WebhookKey: key})
}
