package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// RegisterUseCase 用户注册用例
// 设计说明：
// 1. 校验与加密在领域服务中完成,用例层负责编排与DTO转换
// 2. 注册成功上报业务指标
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email          string
	Username       string
	Password       string
	RepeatPassword string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Username, req.Password, req.RepeatPassword)
	if err != nil {
		return nil, err
	}

	metrics.UsersRegisteredTotal.Inc()

	return toUserInfo(u), nil
}

// UserInfo 用户信息DTO(密码哈希不外露)
type UserInfo struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Privilege string `json:"privilege"`
	Status    string `json:"status"`
}

func toUserInfo(u *user.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Privilege: string(u.Privilege),
		Status:    string(u.Status),
	}
}
