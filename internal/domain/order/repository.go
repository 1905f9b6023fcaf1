package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建订单(含图书关联)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(含图书ID列表)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindActiveByUserID 查询用户的活跃订单(未取消、未送达)
	FindActiveByUserID(ctx context.Context, userID uint) ([]*Order, error)

	// Update 更新订单(主要用于状态更新)
	Update(ctx context.Context, order *Order) error

	// Delete 删除订单记录(清理任务使用)
	Delete(ctx context.Context, id uint) error
}
