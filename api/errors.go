package api

import (
	"errors"

	"smsledger/config"
	"smsledger/database"
	"smsledger/logger"
	"smsledger/service"

	"github.com/gin-gonic/gin"
)

// writeServiceError 将业务错误映射为 HTTP 状态码
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrUpstreamExtraction):
		BadGateway(c, SafeErrorMessage(err, service.ErrUpstreamExtraction.Error()))
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidStateTransition), errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, database.ErrNotFound):
		NotFound(c, fallback)
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	default:
		logger.FromContext(c.Request.Context()).Error().Err(err).Msg(fallback)
		InternalError(c, SafeErrorMessage(err, fallback))
	}
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
