package order

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// CreateOrderUseCase 创建订单用例
// 设计说明:
// 1. 下单即预订:订单引用的图书全部置位Reserved
// 2. 预订与订单创建在同一事务中,要么全成功要么全失败
// 3. 订单事件发布是尽力而为,不参与事务
type CreateOrderUseCase struct {
	orderRepo order.Repository
	bookRepo  book.Repository
	txManager *mysql.TxManager
	publisher mq.EventPublisher
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	orderRepo order.Repository,
	bookRepo book.Repository,
	txManager *mysql.TxManager,
	publisher mq.EventPublisher,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		bookRepo:  bookRepo,
		txManager: txManager,
		publisher: publisher,
	}
}

// Execute 执行下单
// 步骤:
// 1. 参数校验(图书列表非空)
// 2. 事务内:确认图书存在且未被预订 → 置位预订标记 → 创建订单
// 3. 发布order.created事件
func (uc *CreateOrderUseCase) Execute(ctx context.Context, userID uint, bookIDs []uint) (*OrderInfo, error) {
	if len(bookIDs) == 0 {
		return nil, order.ErrEmptyBookList
	}

	newOrder := order.NewOrder(userID, bookIDs)

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 确认图书全部存在
		books, err := uc.bookRepo.FindByIDs(txCtx, bookIDs)
		if err != nil {
			return err
		}
		if len(books) != len(bookIDs) {
			return book.ErrBookNotFound
		}

		// 2. 已预订的图书不能再下单
		// 先收集全部冲突ID再报错,一次性告诉调用方哪些图书不可得
		var reservedIDs []uint
		for _, b := range books {
			if b.Reserved {
				reservedIDs = append(reservedIDs, b.ID)
			}
		}
		if len(reservedIDs) > 0 {
			return apperrors.Newf(apperrors.ErrCodeBookReserved, "以下图书已被预订: %v", reservedIDs)
		}

		// 3. 置位预订标记,按价格合计订单总额
		var total int64
		for _, b := range books {
			if err := b.Reserve(); err != nil {
				return err
			}
			total += b.Price
		}
		newOrder.Total = total

		// 4. 落库预订标记并创建订单(同一事务,失败全部回滚)
		if err := uc.bookRepo.SetReserved(txCtx, bookIDs, true); err != nil {
			return err
		}
		return uc.orderRepo.Create(txCtx, newOrder)
	})
	if err != nil {
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	uc.publisher.PublishOrderEvent(ctx, mq.RouteOrderCreated, mq.OrderEvent{
		OrderID: newOrder.ID,
		UserID:  newOrder.UserID,
		Status:  string(newOrder.Status),
	})

	return toOrderInfo(newOrder), nil
}

// =========================================
// 应用层DTO
// =========================================

// OrderInfo 订单信息
type OrderInfo struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	BookIDs   []uint `json:"book_ids"`
	Total     int64  `json:"total"` // 总额(分)
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toOrderInfo(o *order.Order) *OrderInfo {
	return &OrderInfo{
		ID:        o.ID,
		UserID:    o.UserID,
		BookIDs:   o.BookIDs,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toOrderInfos(orders []*order.Order) []*OrderInfo {
	infos := make([]*OrderInfo, len(orders))
	for i, o := range orders {
		infos[i] = toOrderInfo(o)
	}
	return infos
}
