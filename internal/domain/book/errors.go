package book

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrEmptyUpdate 更新载荷为空
	ErrEmptyUpdate = apperrors.New(apperrors.ErrCodeInvalidParams, "更新内容不能为空")

	// ErrBookReserved 图书已被预订
	ErrBookReserved = apperrors.ErrBookReserved
)
