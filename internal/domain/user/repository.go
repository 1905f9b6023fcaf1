package user

import (
	"context"

	"github.com/xiebiao/bookshop/pkg/paginator"
)

// Repository 用户仓储接口
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql层
// 3. 便于单元测试（Mock此接口）
type Repository interface {
	// Create 创建用户
	// 注意：如果邮箱已存在，应返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 根据ID查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 根据邮箱查找用户
	// 如果不存在，返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List 分页查询用户列表
	List(ctx context.Context, p *paginator.Paginator) ([]*User, error)
}
