package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），方便客户端判断错误类型
// 2. HTTP状态码由errors.HTTPStatus根据业务码推导，Handler不手写
// 3. Data是业务数据，成功时返回，失败时为null
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Accepted 已受理响应（202，用于触发了后台任务的操作）
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := bookService.Add(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
//
// 内部错误(Err字段)只进日志，响应体里只有用户友好的Message
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		slog.Error("request failed",
			"path", c.FullPath(),
			"code", appErr.Code,
			"err", appErr.Err)
	}

	c.JSON(apperrors.HTTPStatus(appErr.Code), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(apperrors.HTTPStatus(code), Response{
		Code:    code,
		Message: message,
		Data:    nil,
	})
}

// BindError 参数绑定失败响应（400）
func BindError(c *gin.Context, err error) {
	ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}
