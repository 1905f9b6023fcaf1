package user

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.ErrUserNotFound

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	// ErrInvalidUsername 用户名长度不合规
	ErrInvalidUsername = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度不合规")

	// ErrPasswordMismatch 两次输入的密码不一致
	ErrPasswordMismatch = apperrors.New(apperrors.ErrCodeInvalidParams, "两次输入的密码不一致")

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.ErrWeakPassword

	// ErrInvalidCredentials 邮箱或密码错误(登录)
	// 邮箱不存在与密码错误对外是同一个错误,不暴露账号是否注册
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials

	// ErrInactiveAccount 账号已停用
	ErrInactiveAccount = apperrors.ErrInactiveAccount
)
