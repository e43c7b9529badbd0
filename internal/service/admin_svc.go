package service

import (
	"context"

	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/repository"
)

// ==================== AdminService ====================

// DashboardStats 管理端概览
type DashboardStats struct {
	TotalProducts int64                    `json:"total_products"`
	TotalOrders   int64                    `json:"total_orders"`
	TotalUsers    int64                    `json:"total_users"`
	TotalRevenue  float64                  `json:"total_revenue"`
	RecentOrders  []repository.RecentOrder `json:"recent_orders"`
}

// AdminService 管理端概览服务
type AdminService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
}

// NewAdminService 创建管理端服务
func NewAdminService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
) *AdminService {
	return &AdminService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// 概览里的最近订单条数
const recentOrderLimit = 5

// GetDashboard 概览统计：总量、已支付营收、最近订单
func (s *AdminService) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, errs.Internal("failed to count products", err)
	}
	orders, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, errs.Internal("failed to count orders", err)
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, errs.Internal("failed to count users", err)
	}
	revenue, err := s.orderRepo.PaidRevenue(ctx)
	if err != nil {
		return nil, errs.Internal("failed to compute revenue", err)
	}
	recent, err := s.orderRepo.ListRecent(ctx, recentOrderLimit)
	if err != nil {
		return nil, errs.Internal("failed to list recent orders", err)
	}

	return &DashboardStats{
		TotalProducts: products,
		TotalOrders:   orders,
		TotalUsers:    users,
		TotalRevenue:  revenue,
		RecentOrders:  recent,
	}, nil
}
