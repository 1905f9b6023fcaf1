package dto

// NewOrderRequest HTTP创建订单请求
type NewOrderRequest struct {
	BookIDs []uint `json:"book_ids" binding:"required,min=1" example:"1,2,3"`
}

// UpdateOrderRequest HTTP订单状态更新请求(管理员)
type UpdateOrderRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_delivery cancelled delivered" example:"in_delivery"`
}
