package service

import "errors"

var (
	// ErrUnauthorized webhook 密钥错误或用户不存在
	ErrUnauthorized = errors.New("webhook 认证失败")
	// ErrUpstreamExtraction 大模型不可用或返回内容无法解析
	ErrUpstreamExtraction = errors.New("AI 解析服务调用失败")
	// ErrValidation 参数不合法
	ErrValidation = errors.New("参数校验失败")
	// ErrInvalidStateTransition 终态记录不允许再次确认、拒绝或修改
	ErrInvalidStateTransition = errors.New("待审核项状态不允许此操作")
	ErrNotFound               = errors.New("待审核项不存在")
	ErrForbidden              = errors.New("无权访问此待审核项")

	ErrConflict           = errors.New("用户名或邮箱已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
)
