package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kibanda_backend/internal/model"
)

// ==================== 接口定义 ====================

// UserRepository 用户仓储接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)

	// 管理员引导：按邮箱幂等创建
	EnsureAdmin(ctx context.Context, name, email, hashedPassword string) error

	// 收藏
	ListWishlist(ctx context.Context, userID int64) ([]model.Product, error)
	AddToWishlist(ctx context.Context, userID, productID int64) error
	RemoveFromWishlist(ctx context.Context, userID, productID int64) (bool, error)
	InWishlist(ctx context.Context, userID, productID int64) (bool, error)

	// 统计
	GetStats(ctx context.Context, userID int64) (*UserStats, error)
	Count(ctx context.Context) (int64, error)
}

// UserFilter 用户列表过滤条件
type UserFilter struct {
	Search   string
	Page     int
	PageSize int
}

// UserStats 用户侧统计
type UserStats struct {
	TotalOrders     int64 `json:"total_orders"`
	CompletedOrders int64 `json:"completed_orders"`
	PendingOrders   int64 `json:"pending_orders"`
	WishlistCount   int64 `json:"wishlist_count"`
}

// ==================== 仓储实现 ====================

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除用户：收藏级联清理，历史订单保留（user_id 置空）
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Order{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *userRepo) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Search != "" {
		kw := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", kw, kw)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&users).Error

	return users, total, err
}

// EnsureAdmin 幂等创建管理员：邮箱唯一索引保证重复启动安全
func (r *userRepo) EnsureAdmin(ctx context.Context, name, email, hashedPassword string) error {
	admin := model.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Role:     model.RoleAdmin,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&admin).Error
}

// ==================== 收藏 ====================

func (r *userRepo) ListWishlist(ctx context.Context, userID int64) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Table("products p").
		Select("p.*").
		Joins("JOIN wishlist w ON w.product_id = p.id").
		Where("w.user_id = ?", userID).
		Order("w.created_at DESC").
		Find(&products).Error
	return products, err
}

// AddToWishlist 幂等添加，二次添加不报错
func (r *userRepo) AddToWishlist(ctx context.Context, userID, productID int64) error {
	item := model.WishlistItem{UserID: userID, ProductID: productID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&item).Error
}

func (r *userRepo) RemoveFromWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) InWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

// ==================== 统计 ====================

func (r *userRepo) GetStats(ctx context.Context, userID int64) (*UserStats, error) {
	var stats UserStats

	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("user_id = ?", userID).
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_orders",
			model.OrderStatusDelivered, model.OrderStatusPending,
		).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&stats.WishlistCount).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error
	return total, err
}
