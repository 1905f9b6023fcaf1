package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// CancelOrderUseCase 取消订单用例(用户路径)
// 业务规则:
// 1. 只能取消自己的订单
// 2. 仅Pending状态可取消,否则是用户侧错误(400),不静默忽略
// 3. 取消成功后异步触发清理(释放预订、删除订单记录)
type CancelOrderUseCase struct {
	orderRepo order.Repository
	cleanup   *CleanupTask
	publisher mq.EventPublisher
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(orderRepo order.Repository, cleanup *CleanupTask, publisher mq.EventPublisher) *CancelOrderUseCase {
	return &CancelOrderUseCase{orderRepo: orderRepo, cleanup: cleanup, publisher: publisher}
}

// Execute 执行取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, userID, orderID uint) error {
	// 1. 加载订单
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	// 2. 归属检查
	if !o.IsOwnedBy(userID) {
		return apperrors.ErrForbidden
	}

	// 3. 状态机校验(仅Pending可取消)
	if err := o.Cancel(); err != nil {
		return err
	}

	// 4. 持久化新状态
	if err := uc.orderRepo.Update(ctx, o); err != nil {
		return err
	}

	metrics.OrdersCancelledTotal.Inc()
	uc.publisher.PublishOrderEvent(ctx, mq.RouteOrderCancelled, mq.OrderEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  string(o.Status),
	})

	// 5. 异步清理,响应先行返回
	uc.cleanup.Dispatch(o.ID)
	return nil
}

// UpdateOrderStatusUseCase 更新订单状态用例(管理员路径)
// 管理员可任意改状态,无Pending限制;无论目标状态如何都触发清理任务
// (清理任务内部重新确认Cancelled,非取消状态是no-op)
type UpdateOrderStatusUseCase struct {
	orderRepo order.Repository
	cleanup   *CleanupTask
	publisher mq.EventPublisher
}

// NewUpdateOrderStatusUseCase 创建状态更新用例
func NewUpdateOrderStatusUseCase(orderRepo order.Repository, cleanup *CleanupTask, publisher mq.EventPublisher) *UpdateOrderStatusUseCase {
	return &UpdateOrderStatusUseCase{orderRepo: orderRepo, cleanup: cleanup, publisher: publisher}
}

// Execute 执行状态更新
func (uc *UpdateOrderStatusUseCase) Execute(ctx context.Context, orderID uint, target order.Status) (*OrderInfo, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.ForceTransitionTo(target); err != nil {
		return nil, err
	}

	if err := uc.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	uc.publisher.PublishOrderEvent(ctx, mq.RouteOrderUpdated, mq.OrderEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  string(o.Status),
	})

	// 目标状态无论是什么都触发,由任务自行判断
	uc.cleanup.Dispatch(o.ID)
	return toOrderInfo(o), nil
}

// ActiveOrdersUseCase 查询用户活跃订单用例
type ActiveOrdersUseCase struct {
	orderRepo order.Repository
}

// NewActiveOrdersUseCase 创建活跃订单查询用例
func NewActiveOrdersUseCase(orderRepo order.Repository) *ActiveOrdersUseCase {
	return &ActiveOrdersUseCase{orderRepo: orderRepo}
}

// Execute 查询活跃订单(未取消、未送达)
func (uc *ActiveOrdersUseCase) Execute(ctx context.Context, userID uint) ([]*OrderInfo, error) {
	orders, err := uc.orderRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toOrderInfos(orders), nil
}
