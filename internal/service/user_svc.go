package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== UserService ====================

// UserService 用户服务：收藏夹、用户侧统计与管理端用户管理
type UserService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository, productRepo repository.ProductRepository) *UserService {
	return &UserService{userRepo: userRepo, productRepo: productRepo}
}

// ==================== 收藏 ====================

// ListWishlist 收藏列表，按加入时间倒序
func (s *UserService) ListWishlist(ctx context.Context, userID int64) ([]model.Product, error) {
	products, err := s.userRepo.ListWishlist(ctx, userID)
	if err != nil {
		return nil, errs.Internal("failed to list wishlist", err)
	}
	return products, nil
}

// AddToWishlist 加入收藏，重复加入静默幂等
func (s *UserService) AddToWishlist(ctx context.Context, userID, productID int64) error {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("product %d not found", productID)
		}
		return errs.Internal("failed to load product", err)
	}
	if err := s.userRepo.AddToWishlist(ctx, userID, productID); err != nil {
		return errs.Internal("failed to add to wishlist", err)
	}
	return nil
}

// RemoveFromWishlist 移出收藏
func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID int64) error {
	removed, err := s.userRepo.RemoveFromWishlist(ctx, userID, productID)
	if err != nil {
		return errs.Internal("failed to remove from wishlist", err)
	}
	if !removed {
		return errs.NotFoundf("product %d is not in wishlist", productID)
	}
	return nil
}

// InWishlist 检查商品是否已收藏
func (s *UserService) InWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	in, err := s.userRepo.InWishlist(ctx, userID, productID)
	if err != nil {
		return false, errs.Internal("failed to check wishlist", err)
	}
	return in, nil
}

// ==================== 统计 ====================

// GetStats 用户侧统计：订单数与收藏数
func (s *UserService) GetStats(ctx context.Context, userID int64) (*repository.UserStats, error) {
	stats, err := s.userRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, errs.Internal("failed to load user stats", err)
	}
	return stats, nil
}

// ==================== 管理端 ====================

// List 用户列表（管理端）
func (s *UserService) List(ctx context.Context, q *dto.ListUsersQuery) ([]model.User, int64, error) {
	filter := repository.UserFilter{
		Search:   q.Search,
		Page:     q.Page,
		PageSize: q.Limit,
	}
	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errs.Internal("failed to list users", err)
	}
	return users, total, nil
}

// UpdateRole 更新用户角色（管理端），不允许改自己的角色
func (s *UserService) UpdateRole(ctx context.Context, targetID int64, role string, actor *model.User) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, errs.Validationf("invalid role: %s", role)
	}
	if targetID == actor.ID {
		return nil, errs.Forbiddenf("cannot change your own role")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("user %d not found", targetID)
		}
		return nil, errs.Internal("failed to load user", err)
	}

	if err := s.userRepo.UpdateFields(ctx, targetID, map[string]interface{}{"role": role}); err != nil {
		return nil, errs.Internal("failed to update role", err)
	}
	user.Role = role
	return user, nil
}

// Delete 删除用户（管理端），不允许删除自己
// 收藏记录一并清理，历史订单保留并与用户解绑
func (s *UserService) Delete(ctx context.Context, targetID int64, actor *model.User) error {
	if targetID == actor.ID {
		return errs.Forbiddenf("cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("user %d not found", targetID)
		}
		return errs.Internal("failed to delete user", err)
	}
	return nil
}
