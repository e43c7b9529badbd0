package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kibanda_backend/internal/model"
)

// ==================== 接口定义 ====================

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 列表查询
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListFeatured(ctx context.Context, limit int) ([]model.Product, error)
	ListNewArrivals(ctx context.Context, limit int) ([]model.Product, error)
	ListOnSale(ctx context.Context, limit int) ([]model.Product, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)
	Search(ctx context.Context, keyword string, limit int) ([]model.Product, error)

	// 库存与评分
	DecrementStock(ctx context.Context, id int64, quantity int) (bool, error)
	RestoreStock(ctx context.Context, id int64, quantity int) error
	UpdateRating(ctx context.Context, id int64, rating float64) error

	// 统计
	Count(ctx context.Context) (int64, error)

	// 事务
	WithTx(tx *gorm.DB) ProductRepository
}

// ==================== 过滤条件 ====================

// 排序方式
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortFeatured  = "featured"
)

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Category string
	Keyword  string
	Sort     string
	Featured *bool
	Badge    string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

// newArrivalWindow badge=new 以外的新品窗口
const newArrivalWindow = 7 * 24 * time.Hour

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete 硬删除商品并级联清理收藏（订单快照不受影响）
func (r *productRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.WishlistItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR brand LIKE ?", kw, kw, kw)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if filter.Badge != "" {
		query = query.Where("badge = ?", filter.Badge)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case SortPriceLow:
		query = query.Order("price ASC")
	case SortPriceHigh:
		query = query.Order("price DESC")
	case SortRating:
		query = query.Order("rating DESC")
	case SortFeatured:
		query = query.Order("featured DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 12
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *productRepo) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListNewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	since := time.Now().Add(-newArrivalWindow)
	err := r.db.WithContext(ctx).
		Where("badge = ? OR created_at >= ?", model.BadgeNew, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListOnSale(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("badge = ? OR original_price IS NOT NULL", model.BadgeSale).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Search 关键词搜索：名称命中排最前，品牌其次，其余按时间倒序
func (r *productRepo) Search(ctx context.Context, keyword string, limit int) ([]model.Product, error) {
	var products []model.Product
	kw := "%" + keyword + "%"
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ? OR category LIKE ? OR brand LIKE ?", kw, kw, kw, kw).
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN name LIKE ? THEN 1 WHEN brand LIKE ? THEN 2 ELSE 3 END, created_at DESC",
				Vars:               []interface{}{kw, kw},
				WithoutParentheses: true,
			},
		}).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// DecrementStock 条件扣减库存，库存不足时返回 false 且不做任何修改
// 并发安全的关键：校验与扣减在同一条 UPDATE 中完成
func (r *productRepo) DecrementStock(ctx context.Context, id int64, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RestoreStock 回补库存，商品已删除时静默跳过（影响行数为 0）
func (r *productRepo) RestoreStock(ctx context.Context, id int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}

// UpdateRating 把新评分并入平均分并递增评论计数
// 两个表达式都基于更新前的行值求值，单条 UPDATE 内无需担心先后
func (r *productRepo) UpdateRating(ctx context.Context, id int64, rating float64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":       gorm.Expr("(rating * review_count + ?) / (review_count + 1)", rating),
			"review_count": gorm.Expr("review_count + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error
	return total, err
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{db: tx}
}
