package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createUseCase *apporder.CreateOrderUseCase
	cancelUseCase *apporder.CancelOrderUseCase
	updateUseCase *apporder.UpdateOrderStatusUseCase
	activeUseCase *apporder.ActiveOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createUseCase *apporder.CreateOrderUseCase,
	cancelUseCase *apporder.CancelOrderUseCase,
	updateUseCase *apporder.UpdateOrderStatusUseCase,
	activeUseCase *apporder.ActiveOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		createUseCase: createUseCase,
		cancelUseCase: cancelUseCase,
		updateUseCase: updateUseCase,
		activeUseCase: activeUseCase,
	}
}

// New 创建订单
// @Summary      创建订单
// @Description  预订一批图书;任何一本已被预订则整单失败,所有预订在同一事务内生效
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.NewOrderRequest true "图书ID列表"
// @Success      201 {object} response.Response{data=apporder.OrderInfo}
// @Failure      400 {object} response.Response "图书列表为空"
// @Failure      404 {object} response.Response "部分图书不存在或已被预订"
// @Router       /order/new/ [post]
func (h *OrderHandler) New(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	info, err := h.createUseCase.Execute(c.Request.Context(), u.ID, req.BookIDs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, info)
}

// Active 进行中的订单
// @Summary      进行中的订单
// @Description  返回当前用户所有未取消、未送达的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]apporder.OrderInfo}
// @Failure      401 {object} response.Response "未登录"
// @Router       /order/active [get]
func (h *OrderHandler) Active(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	orders, err := h.activeUseCase.Execute(c.Request.Context(), u.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, orders)
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  只能取消自己的待处理订单;释放图书与删除订单由后台任务异步完成,接口立即返回202
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      202 {object} response.Response
// @Failure      400 {object} response.Response "订单已不是待处理状态"
// @Failure      403 {object} response.Response "不是自己的订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /order/cancel/{id} [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.cancelUseCase.Execute(c.Request.Context(), u.ID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Accepted(c, gin.H{"id": id})
}

// Update 更新订单状态
// @Summary      更新订单状态
// @Description  管理员将订单置为任意合法状态,不受状态机限制;置为已取消时触发同样的后台清理
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.UpdateOrderRequest true "目标状态"
// @Success      200 {object} response.Response{data=apporder.OrderInfo}
// @Failure      400 {object} response.Response "状态非法"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /order/update/{id} [patch]
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	info, err := h.updateUseCase.Execute(c.Request.Context(), id, order.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, info)
}
