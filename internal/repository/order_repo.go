package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kibanda_backend/internal/model"
)

// ==================== 接口定义 ====================

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)

	// 状态流转
	UpdateStatusFrom(ctx context.Context, id int64, newStatus string, from ...string) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status string) (bool, error)

	// 统计
	GetSalesStats(ctx context.Context, since *time.Time) (*SalesStats, error)
	Count(ctx context.Context) (int64, error)
	PaidRevenue(ctx context.Context) (float64, error)
	ListRecent(ctx context.Context, limit int) ([]RecentOrder, error)

	// 事务
	WithTx(tx *gorm.DB) OrderRepository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ==================== 过滤与统计结构 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	UserID    *int64
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// SalesStats 销售统计（只统计 payment_status = paid 的订单）
type SalesStats struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
	CompletedOrders   int64   `json:"completed_orders"`
}

// RecentOrder 后台仪表盘的订单行，带下单用户的实时姓名
type RecentOrder struct {
	ID           int64     `json:"id"`
	OrderNumber  string    `json:"order_number"`
	CustomerName string    `json:"customer_name"`
	UserName     string    `json:"user_name"`
	TotalAmount  float64   `json:"total_amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ==================== 仓储实现 ====================

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

// Create 保存订单及其订单项（gorm 关联一并写入）
func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id ASC")
		}).
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// UpdateStatusFrom 条件状态流转：仅当当前状态在 from 集合内才更新
// 返回 false 表示订单不存在或状态已被并发修改
func (r *orderRepo) UpdateStatusFrom(ctx context.Context, id int64, newStatus string, from ...string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", newStatus)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", id).
		Update("payment_status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) GetSalesStats(ctx context.Context, since *time.Time) (*SalesStats, error) {
	var stats SalesStats

	query := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusPaid)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	err := query.
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(total_amount), 0) AS total_revenue, "+
				"COALESCE(AVG(total_amount), 0) AS average_order_value, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_orders",
			model.OrderStatusDelivered,
		).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error
	return total, err
}

func (r *orderRepo) PaidRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("payment_status = ?", model.PaymentStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]RecentOrder, error) {
	var rows []RecentOrder
	err := r.db.WithContext(ctx).
		Table("orders o").
		Select("o.id, o.order_number, o.customer_name, COALESCE(u.name, '') AS user_name, o.total_amount, o.status, o.created_at").
		Joins("LEFT JOIN users u ON u.id = o.user_id").
		Order("o.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{db: tx}
}

func (r *orderRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
