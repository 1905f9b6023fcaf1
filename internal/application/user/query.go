package user

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

// QueryUseCase 用户查询用例(列表/详情/当前用户)
type QueryUseCase struct {
	userService user.Service
}

// NewQueryUseCase 创建用户查询用例
func NewQueryUseCase(userService user.Service) *QueryUseCase {
	return &QueryUseCase{userService: userService}
}

// List 分页查询用户列表(管理员)
func (uc *QueryUseCase) List(ctx context.Context, p *paginator.Paginator) ([]*UserInfo, error) {
	users, err := uc.userService.List(ctx, p)
	if err != nil {
		return nil, err
	}

	infos := make([]*UserInfo, len(users))
	for i, u := range users {
		infos[i] = toUserInfo(u)
	}
	return infos, nil
}

// GetByID 根据ID查询用户(管理员)
func (uc *QueryUseCase) GetByID(ctx context.Context, id uint) (*UserInfo, error) {
	u, err := uc.userService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// Current 当前登录用户
// 身份已由认证中间件解析,这里只做DTO转换
func (uc *QueryUseCase) Current(u *user.User) *UserInfo {
	return toUserInfo(u)
}
