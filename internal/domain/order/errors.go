package order

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.ErrInvalidOrderStatus

	// ErrNotPending 仅待处理订单可取消
	ErrNotPending = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "仅待处理订单可以取消")

	// ErrInvalidStatus 未知的订单状态
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的订单状态")

	// ErrEmptyBookList 订单图书列表为空
	ErrEmptyBookList = apperrors.New(apperrors.ErrCodeInvalidParams, "订单图书列表不能为空")
)
