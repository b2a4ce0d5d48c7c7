// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "club-knowledge-api/pkg/errors"
)

// ErrorResponse 错误响应，detail 字段与管理端前端约定一致
type ErrorResponse struct {
	Detail  string `json:"detail"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, code apperrors.ErrorCode, detail string) {
	c.JSON(httpCode, ErrorResponse{
		Detail:  detail,
		Code:    string(code),
		TraceID: c.GetString("trace_id"),
	})
}

// Abort 返回错误响应并终止后续处理
func Abort(c *gin.Context, httpCode int, code apperrors.ErrorCode, detail string) {
	c.AbortWithStatusJSON(httpCode, ErrorResponse{
		Detail:  detail,
		Code:    string(code),
		TraceID: c.GetString("trace_id"),
	})
}

// FromError AppError 按其状态码返回，其余错误一律 500
func FromError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Detail != "" {
			detail = appErr.Detail
		}
		Error(c, appErr.HTTPStatus, appErr.Code, detail)
		return
	}
	InternalError(c, err.Error())
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, apperrors.CodeInvalidParam, detail)
}

// InternalError 返回 500 错误
func InternalError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, apperrors.CodeInternalError, detail)
}
