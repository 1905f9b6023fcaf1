package order

import (
	"time"
)

// Status 订单状态
// 设计说明:
// 1. 定义为string类型,接口层直接透出,无需额外翻译
// 2. 状态机:Pending → {InDelivery, Cancelled},InDelivery → Delivered
// 3. Cancelled与Delivered是终态
type Status string

const (
	StatusPending    Status = "pending"
	StatusInDelivery Status = "in_delivery"
	StatusCancelled  Status = "cancelled"
	StatusDelivered  Status = "delivered"
)

// Valid 状态是否在封闭集合内
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInDelivery, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. BookIDs记录订单预订的图书,不直接引用Book对象(避免跨聚合引用)
// 2. 状态流转通过TransitionTo统一校验,防止非法跳转
type Order struct {
	ID        uint
	UserID    uint
	BookIDs   []uint
	Total     int64 // 订单总额(分),下单时按图书价格合计
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为Pending
func NewOrder(userID uint, bookIDs []uint) *Order {
	now := time.Now()
	return &Order{
		UserID:    userID,
		BookIDs:   bookIDs,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// 合法的状态转换表
var transitions = map[Status][]Status{
	StatusPending:    {StatusInDelivery, StatusCancelled},
	StatusInDelivery: {StatusDelivered},
	StatusCancelled:  {}, // 终态
	StatusDelivered:  {}, // 终态
}

// CanTransitionTo 检查是否可以转换到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
// 非法跳转返回ErrInvalidStatusTransition
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// ForceTransitionTo 无视状态机强制设置状态(仅管理员路径使用)
func (o *Order) ForceTransitionTo(target Status) error {
	if !target.Valid() {
		return ErrInvalidStatus
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel 取消订单(领域行为)
// 业务规则:仅Pending状态可由用户取消
func (o *Order) Cancel() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	return o.TransitionTo(StatusCancelled)
}

// IsCancelled 是否已取消
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}
