package controller

import (
	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/service"
)

type OrderController struct {
	orderService *service.OrderService
}

func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// ==================== 用户侧 ====================

// CreateOrder 创建订单
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := ctrl.orderService.Create(c.Request.Context(), user, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, resp)
}

// ListMyOrders 当前用户的订单列表
func (ctrl *OrderController) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, err)
		return
	}

	orders, total, err := ctrl.orderService.ListByUser(c.Request.Context(), userID, &q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, orders, NewPagination(q.Page, q.Limit, total))
}

// GetOrder 订单详情，非管理员只能看自己的
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	order, err := ctrl.orderService.GetByID(c.Request.Context(), id, user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// CancelOrder 取消订单并回补库存
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.orderService.Cancel(c.Request.Context(), id, user); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "order cancelled")
}

// ==================== 管理端 ====================

// ListOrders 订单列表（管理端）
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	var q dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, err)
		return
	}

	orders, total, err := ctrl.orderService.ListAll(c.Request.Context(), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, orders, NewPagination(q.Page, q.Limit, total))
}

// UpdateOrderStatus 订单状态流转（管理端）
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := ctrl.orderService.UpdateStatus(c.Request.Context(), id, req.Status, user); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "order status updated")
}

// UpdatePaymentStatus 更新支付状态（管理端）
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := ctrl.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "payment status updated")
}

// GetSalesStats 销售统计（管理端）
func (ctrl *OrderController) GetSalesStats(c *gin.Context) {
	stats, err := ctrl.orderService.GetSalesStats(c.Request.Context(), c.Query("timeframe"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}
