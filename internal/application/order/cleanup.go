package order

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// CleanupTask 取消订单的后台清理任务
// 设计说明:
// 1. fire-and-forget:HTTP响应返回后异步执行,失败不回传客户端,不重试(至多一次)
// 2. 幂等:任务内部重新确认订单处于Cancelled,不满足则no-op
//    (管理员改状态也会触发本任务,目标状态未必是Cancelled)
// 3. 释放预订与删除订单记录在同一事务中
type CleanupTask struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	txManager *mysql.TxManager
	publisher mq.EventPublisher

	// timeout 单次清理的执行上限
	timeout time.Duration
}

// NewCleanupTask 创建清理任务
func NewCleanupTask(
	orderRepo order.Repository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
	publisher mq.EventPublisher,
) *CleanupTask {
	return &CleanupTask{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
		timeout:   30 * time.Second,
	}
}

// Dispatch 异步触发清理(响应已返回,不等待结果)
func (t *CleanupTask) Dispatch(orderID uint) {
	go t.Run(orderID)
}

// Run 执行清理
// 不使用请求的context:请求在响应后即结束,清理需要独立的生命周期
func (t *CleanupTask) Run(orderID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	// 1. 重新加载订单并确认状态
	o, err := t.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		// 订单已被清理过,no-op
		if errors.Is(err, order.ErrOrderNotFound) {
			metrics.OrderCleanupsTotal.WithLabelValues("skipped").Inc()
			return
		}
		slog.Error("清理任务加载订单失败", "order_id", orderID, "error", err)
		metrics.OrderCleanupsTotal.WithLabelValues("failed").Inc()
		return
	}
	if !o.IsCancelled() {
		// 目标状态不是Cancelled,本次触发是no-op
		metrics.OrderCleanupsTotal.WithLabelValues("skipped").Inc()
		return
	}

	// 2. 释放预订并删除订单记录
	err = t.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := t.bookRepo.SetReserved(txCtx, o.BookIDs, false); err != nil {
			return err
		}
		return t.orderRepo.Delete(txCtx, o.ID)
	})
	if err != nil {
		slog.Error("清理任务执行失败", "order_id", orderID, "error", err)
		metrics.OrderCleanupsTotal.WithLabelValues("failed").Inc()
		return
	}

	metrics.OrderCleanupsTotal.WithLabelValues("cleaned").Inc()
	t.publisher.PublishOrderEvent(ctx, mq.RouteOrderCleaned, mq.OrderEvent{
		OrderID: o.ID,
		UserID:  o.UserID,
	})
	slog.Info("已清理取消的订单", "order_id", orderID, "released_books", len(o.BookIDs))
}
