package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 订单主记录与图书关联行在同一事务中写入
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := &OrderModel{
			UserID: o.UserID,
			Total:  o.Total,
			Status: string(o.Status),
		}
		if err := tx.Create(model).Error; err != nil {
			return apperrors.Wrap(err, "创建订单失败")
		}

		links := make([]OrderBookModel, len(o.BookIDs))
		for i, bookID := range o.BookIDs {
			links[i] = OrderBookModel{OrderID: model.ID, BookID: bookID}
		}
		if len(links) > 0 {
			if err := tx.Create(&links).Error; err != nil {
				return apperrors.Wrap(err, "创建订单图书关联失败")
			}
		}

		o.ID = model.ID
		o.CreatedAt = model.CreatedAt
		o.UpdatedAt = model.UpdatedAt
		return nil
	})
}

// FindByID 根据ID查找订单(含图书ID列表)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	o := toOrderEntity(&model)
	if err := r.attachBookIDs(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// FindActiveByUserID 查询用户的活跃订单(未取消、未送达)
func (r *orderRepository) FindActiveByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	var models []OrderModel
	err := getDB(ctx, r.db).
		Where("user_id = ?", userID).
		Where("status NOT IN ?", []string{string(order.StatusCancelled), string(order.StatusDelivered)}).
		Order("id").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询活跃订单失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	if err := r.attachBookIDs(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Update 更新订单(主要用于状态更新)
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"status":     string(o.Status),
			"updated_at": o.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete 删除订单记录及图书关联(清理任务使用)
// 删除不存在的订单是no-op,保证清理任务可重入
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&OrderBookModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除订单图书关联失败")
		}
		if err := tx.Delete(&OrderModel{}, id).Error; err != nil {
			return apperrors.Wrap(err, "删除订单失败")
		}
		return nil
	})
}

// =========================================
// 辅助函数:模型转换与关联装配
// =========================================

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	return &order.Order{
		ID:        model.ID,
		UserID:    model.UserID,
		Total:     model.Total,
		Status:    order.Status(model.Status),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// attachBookIDs 批量装配订单的图书ID列表(一次IN查询,避免N+1)
func (r *orderRepository) attachBookIDs(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint, len(orders))
	index := make(map[uint]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = o
	}

	var links []OrderBookModel
	if err := getDB(ctx, r.db).Where("order_id IN ?", ids).Order("id").Find(&links).Error; err != nil {
		return apperrors.Wrap(err, "查询订单图书关联失败")
	}

	for _, link := range links {
		if o, ok := index[link.OrderID]; ok {
			o.BookIDs = append(o.BookIDs, link.BookID)
		}
	}
	return nil
}
