package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== ProductService ====================

// ProductService 商品目录服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// 专区列表默认条数
const sectionLimit = 8

// ==================== 查询 ====================

// List 商品列表，支持分类 / 搜索 / 排序 / 精选 / 角标过滤
func (s *ProductService) List(ctx context.Context, q *dto.ListProductsQuery) ([]model.Product, int64, error) {
	if q.Badge != "" && !model.ValidBadge(q.Badge) {
		return nil, 0, errs.Validationf("invalid badge: %s", q.Badge)
	}

	filter := repository.ProductFilter{
		Category: q.Category,
		Keyword:  strings.TrimSpace(q.Search),
		Sort:     q.Sort,
		Featured: q.Featured,
		Badge:    q.Badge,
		Page:     q.Page,
		PageSize: q.Limit,
	}
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, errs.Internal("failed to list products", err)
	}
	return products, total, nil
}

// GetByID 商品详情
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("product %d not found", id)
		}
		return nil, errs.Internal("failed to load product", err)
	}
	return product, nil
}

// ListCategories 所有分类名
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, errs.Internal("failed to list categories", err)
	}
	return categories, nil
}

// ListFeatured 精选商品
func (s *ProductService) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = sectionLimit
	}
	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, errs.Internal("failed to list featured products", err)
	}
	return products, nil
}

// ListNewArrivals 新品：badge=new 或最近上架
func (s *ProductService) ListNewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = sectionLimit
	}
	products, err := s.productRepo.ListNewArrivals(ctx, limit)
	if err != nil {
		return nil, errs.Internal("failed to list new arrivals", err)
	}
	return products, nil
}

// ListOnSale 促销商品：badge=sale 或原价高于现价
func (s *ProductService) ListOnSale(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = sectionLimit
	}
	products, err := s.productRepo.ListOnSale(ctx, limit)
	if err != nil {
		return nil, errs.Internal("failed to list sale products", err)
	}
	return products, nil
}

// ListByCategory 按分类取商品
func (s *ProductService) ListByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	if category == "" {
		return nil, errs.Validationf("category is required")
	}
	if limit <= 0 {
		limit = 20
	}
	products, err := s.productRepo.ListByCategory(ctx, category, limit)
	if err != nil {
		return nil, errs.Internal("failed to list products by category", err)
	}
	return products, nil
}

// Search 关键词搜索，名称命中排在品牌命中前
func (s *ProductService) Search(ctx context.Context, keyword string, limit int) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errs.Validationf("search keyword is required")
	}
	if limit <= 0 {
		limit = 20
	}
	products, err := s.productRepo.Search(ctx, keyword, limit)
	if err != nil {
		return nil, errs.Internal("failed to search products", err)
	}
	return products, nil
}

// ==================== 管理端 ====================

// Create 创建商品（管理端）
func (s *ProductService) Create(ctx context.Context, form *dto.CreateProductForm, imageURL string) (*model.Product, error) {
	if form.Badge != "" && !model.ValidBadge(form.Badge) {
		return nil, errs.Validationf("invalid badge: %s", form.Badge)
	}

	gallery, err := parseStringList(form.ImageGallery)
	if err != nil {
		return nil, errs.Validationf("image_gallery must be a JSON array of strings")
	}
	sizes, err := parseStringList(form.Sizes)
	if err != nil {
		return nil, errs.Validationf("sizes must be a JSON array of strings")
	}
	colors, err := parseStringList(form.Colors)
	if err != nil {
		return nil, errs.Validationf("colors must be a JSON array of strings")
	}

	product := &model.Product{
		Name:          form.Name,
		Description:   form.Description,
		Price:         form.Price,
		OriginalPrice: form.OriginalPrice,
		Category:      form.Category,
		Subcategory:   form.Subcategory,
		Brand:         form.Brand,
		ImageURL:      form.ImageURL,
		ImageGallery:  gallery,
		Sizes:         sizes,
		Colors:        colors,
		StockQuantity: form.StockQuantity,
		Featured:      form.Featured,
		Badge:         form.Badge,
	}
	if imageURL != "" {
		product.ImageURL = imageURL
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, errs.Internal("failed to create product", err)
	}
	return product, nil
}

// Update 更新商品，只更新提交的字段（管理端）
func (s *ProductService) Update(ctx context.Context, id int64, form *dto.UpdateProductForm, imageURL string) (*model.Product, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if form.Name != nil {
		fields["name"] = *form.Name
	}
	if form.Description != nil {
		fields["description"] = *form.Description
	}
	if form.Price != nil {
		if *form.Price < 0 {
			return nil, errs.Validationf("price must not be negative")
		}
		fields["price"] = *form.Price
	}
	if form.OriginalPrice != nil {
		fields["original_price"] = *form.OriginalPrice
	}
	if form.Category != nil {
		fields["category"] = *form.Category
	}
	if form.Subcategory != nil {
		fields["subcategory"] = *form.Subcategory
	}
	if form.Brand != nil {
		fields["brand"] = *form.Brand
	}
	if form.ImageURL != nil {
		fields["image_url"] = *form.ImageURL
	}
	if form.ImageGallery != nil {
		gallery, err := parseStringList(*form.ImageGallery)
		if err != nil {
			return nil, errs.Validationf("image_gallery must be a JSON array of strings")
		}
		fields["image_gallery"] = gallery
	}
	if form.Sizes != nil {
		sizes, err := parseStringList(*form.Sizes)
		if err != nil {
			return nil, errs.Validationf("sizes must be a JSON array of strings")
		}
		fields["sizes"] = sizes
	}
	if form.Colors != nil {
		colors, err := parseStringList(*form.Colors)
		if err != nil {
			return nil, errs.Validationf("colors must be a JSON array of strings")
		}
		fields["colors"] = colors
	}
	if form.StockQuantity != nil {
		if *form.StockQuantity < 0 {
			return nil, errs.Validationf("stock_quantity must not be negative")
		}
		fields["stock_quantity"] = *form.StockQuantity
	}
	if form.Featured != nil {
		fields["featured"] = *form.Featured
	}
	if form.Badge != nil {
		if *form.Badge != "" && !model.ValidBadge(*form.Badge) {
			return nil, errs.Validationf("invalid badge: %s", *form.Badge)
		}
		fields["badge"] = *form.Badge
	}
	if imageURL != "" {
		fields["image_url"] = imageURL
	}

	if len(fields) > 0 {
		if err := s.productRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, errs.Internal("failed to update product", err)
		}
	}
	return s.GetByID(ctx, id)
}

// Delete 删除商品，同时清理收藏记录（管理端）
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("product %d not found", id)
		}
		return errs.Internal("failed to delete product", err)
	}
	return nil
}

// Rate 提交评分，累积到平均分
func (s *ProductService) Rate(ctx context.Context, id int64, rating float64) (*model.Product, error) {
	if rating < 0 || rating > 5 {
		return nil, errs.Validationf("rating must be between 0 and 5")
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateRating(ctx, id, rating); err != nil {
		return nil, errs.Internal("failed to update rating", err)
	}
	return s.GetByID(ctx, id)
}

// parseStringList 解析表单里的 JSON 数组字段，空串视为空数组
func parseStringList(raw string) (datatypes.JSONSlice[string], error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return datatypes.JSONSlice[string]{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return datatypes.JSONSlice[string](list), nil
}
