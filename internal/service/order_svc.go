package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"gorm.io/gorm"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== 配置 ====================

// ShippingPolicy 运费策略：subtotal 超过阈值免运费，否则收固定运费
type ShippingPolicy struct {
	FreeThreshold float64
	Fee           float64
}

// FeeFor 计算运费
func (p ShippingPolicy) FeeFor(subtotal float64) float64 {
	if subtotal > p.FreeThreshold {
		return 0
	}
	return p.Fee
}

// ==================== OrderService ====================

// OrderService 订单生命周期服务：创建扣库存、状态机流转、取消回补、销售统计
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	shipping    ShippingPolicy
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	shipping ShippingPolicy,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		shipping:    shipping,
	}
}

// ==================== 创建订单 ====================

// Create 创建订单
// 库存校验、扣减与订单写入在同一事务内完成：任何一项失败则整单回滚。
// 每个条目的扣减是一条带库存条件的 UPDATE，两个并发请求抢最后一件库存时
// 只有一个能成功，另一个收到 InsufficientStock。
func (s *OrderService) Create(ctx context.Context, user *model.User, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, errs.Validationf("order items are required")
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, errs.Validationf("quantity must be positive for product %d", it.ProductID)
		}
	}

	address := req.ShippingAddress.String()
	if address == "" {
		return nil, errs.Validationf("shipping address is required")
	}

	order := &model.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          &user.ID,
		CustomerEmail:   user.Email,
		CustomerName:    user.Name,
		CustomerPhone:   user.Phone,
		ShippingAddress: address,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "cash_on_delivery"
	}
	if ci := req.CustomerInfo; ci != nil {
		if ci.Email != "" {
			order.CustomerEmail = ci.Email
		}
		if ci.Name != "" {
			order.CustomerName = ci.Name
		}
		if ci.Phone != "" {
			order.CustomerPhone = ci.Phone
		}
	}

	err := s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		productTx := s.productRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		var subtotal float64
		items := make([]model.OrderItem, 0, len(req.Items))

		for _, it := range req.Items {
			product, err := productTx.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NotFoundf("product %d not found", it.ProductID)
				}
				return errs.Internal("failed to load product", err)
			}

			ok, err := productTx.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return errs.Internal("failed to update stock", err)
			}
			if !ok {
				return errs.Validationf("insufficient stock for %s: available %d, requested %d",
					product.Name, product.StockQuantity, it.Quantity)
			}

			line := model.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  it.Quantity,
				Image:     product.ImageURL,
				ItemTotal: product.Price * float64(it.Quantity),
			}
			subtotal += line.ItemTotal
			items = append(items, line)
		}

		order.Subtotal = subtotal
		order.ShippingFee = s.shipping.FeeFor(subtotal)
		order.TotalAmount = subtotal + order.ShippingFee
		order.Items = items

		if err := orderTx.Create(ctx, order); err != nil {
			return errs.Internal("failed to create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.CreateOrderResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
	}, nil
}

// generateOrderNumber 订单号：KF + 毫秒时间戳 + 5 位随机后缀
// 唯一索引兜底，碰撞概率可忽略
func generateOrderNumber() string {
	const charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = charset[rand.Intn(len(charset))]
	}
	return "KF" + strconv.FormatInt(time.Now().UnixMilli(), 10) + string(suffix)
}

// ==================== 查询 ====================

// GetByID 订单详情，非管理员只能看自己的订单
func (s *OrderService) GetByID(ctx context.Context, orderID int64, actor *model.User) (*model.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !order.IsOwnedBy(actor.ID) {
		return nil, errs.Forbiddenf("access denied")
	}
	return order, nil
}

// ListByUser 用户自己的订单列表
func (s *OrderService) ListByUser(ctx context.Context, userID int64, q *dto.ListOrdersQuery) ([]model.Order, int64, error) {
	filter := repository.OrderFilter{
		UserID:   &userID,
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.Limit,
	}
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errs.Internal("failed to list orders", err)
	}
	return orders, total, nil
}

// ListAll 管理端订单列表，支持状态与日期范围过滤
func (s *OrderService) ListAll(ctx context.Context, q *dto.ListOrdersQuery) ([]model.Order, int64, error) {
	filter := repository.OrderFilter{
		Status:   q.Status,
		Page:     q.Page,
		PageSize: q.Limit,
	}
	if q.Limit <= 0 {
		filter.PageSize = 20
	}
	if q.StartDate != "" {
		if t, err := time.Parse("2006-01-02", q.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if q.EndDate != "" {
		if t, err := time.Parse("2006-01-02", q.EndDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errs.Internal("failed to list orders", err)
	}
	return orders, total, nil
}

// ==================== 状态流转 ====================

// UpdateStatus 订单状态流转
// 状态机强制生效：非法流转返回 InvalidState 而不是悄悄覆盖。
// 取消走独立的取消路径，保证库存回补永远不会被绕过。
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus string, actor *model.User) error {
	if !model.ValidOrderStatus(newStatus) {
		return errs.Validationf("invalid order status: %s", newStatus)
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if newStatus == model.OrderStatusCancelled {
		return s.cancel(ctx, order, actor)
	}

	// 取消以外的流转只有管理员可以执行
	if !actor.IsAdmin() {
		return errs.Forbiddenf("only admin can update order status")
	}
	if !order.CanTransitionTo(newStatus) {
		return errs.InvalidStatef("cannot transition order from %s to %s", order.Status, newStatus)
	}

	ok, err := s.orderRepo.UpdateStatusFrom(ctx, orderID, newStatus, order.Status)
	if err != nil {
		return errs.Internal("failed to update order status", err)
	}
	if !ok {
		// 读取后状态被并发修改
		return errs.InvalidStatef("order status changed concurrently, retry")
	}
	return nil
}

// UpdatePaymentStatus 更新支付状态（管理端）
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) error {
	if !model.ValidPaymentStatus(status) {
		return errs.Validationf("invalid payment status: %s", status)
	}
	ok, err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status)
	if err != nil {
		return errs.Internal("failed to update payment status", err)
	}
	if !ok {
		return errs.NotFoundf("order %d not found", orderID)
	}
	return nil
}

// ==================== 取消订单 ====================

// Cancel 取消订单并回补库存
func (s *OrderService) Cancel(ctx context.Context, orderID int64, actor *model.User) error {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return s.cancel(ctx, order, actor)
}

// cancel 取消的公共路径
// 状态翻转与库存回补在同一事务内；翻转用条件 UPDATE 防止并发双重回补。
func (s *OrderService) cancel(ctx context.Context, order *model.Order, actor *model.User) error {
	if !actor.IsAdmin() && !order.IsOwnedBy(actor.ID) {
		return errs.Forbiddenf("access denied")
	}

	// 业务规则：普通用户只能取消 pending；管理员可从任意非终态取消
	var allowedFrom []string
	if actor.IsAdmin() {
		if order.IsTerminal() {
			return errs.InvalidStatef("order is already %s", order.Status)
		}
		allowedFrom = []string{model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusShipped}
	} else {
		if order.Status != model.OrderStatusPending {
			return errs.InvalidStatef("only pending orders can be cancelled")
		}
		allowedFrom = []string{model.OrderStatusPending}
	}

	return s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		orderTx := s.orderRepo.WithTx(tx)
		productTx := s.productRepo.WithTx(tx)

		ok, err := orderTx.UpdateStatusFrom(ctx, order.ID, model.OrderStatusCancelled, allowedFrom...)
		if err != nil {
			return errs.Internal("failed to cancel order", err)
		}
		if !ok {
			// 并发下第二次取消走到这里：不回补库存
			return errs.InvalidStatef("order can no longer be cancelled")
		}

		// 回补快照数量；商品已删除时 RestoreStock 静默跳过
		for _, item := range order.Items {
			if item.ProductID == 0 {
				continue
			}
			if err := productTx.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
				return errs.Internal("failed to restore stock", err)
			}
		}
		return nil
	})
}

// ==================== 销售统计 ====================

// 统计时间窗
const (
	TimeframeToday = "today"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
	TimeframeYear  = "year"
)

// GetSalesStats 销售统计，只统计已支付订单；timeframe 缺省为 month
func (s *OrderService) GetSalesStats(ctx context.Context, timeframe string) (*repository.SalesStats, error) {
	now := time.Now()
	var since *time.Time

	switch timeframe {
	case TimeframeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		since = &start
	case TimeframeWeek:
		start := now.AddDate(0, 0, -7)
		since = &start
	case TimeframeMonth, "":
		start := now.AddDate(0, 0, -30)
		since = &start
	case TimeframeYear:
		start := now.AddDate(-1, 0, 0)
		since = &start
	default:
		return nil, errs.Validationf("invalid timeframe: %s", timeframe)
	}

	stats, err := s.orderRepo.GetSalesStats(ctx, since)
	if err != nil {
		return nil, errs.Internal("failed to compute sales stats", err)
	}
	return stats, nil
}

// ==================== 辅助 ====================

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("order %d not found", orderID)
		}
		return nil, errs.Internal("failed to load order", err)
	}
	return order, nil
}
