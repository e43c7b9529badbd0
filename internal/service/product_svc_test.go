package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== 测试辅助 ====================

func setupProductTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.Product{}, &model.WishlistItem{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func newProductTestService(db *gorm.DB) *ProductService {
	return NewProductService(repository.NewProductRepository(db))
}

func floatPtr(v float64) *float64 { return &v }

// ==================== 列表 ====================

func TestProductService_List_Filters(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	seed := []model.Product{
		{Name: "Air Runner", Brand: "Nike", Category: "Shoes", Price: 4500, Featured: true, StockQuantity: 5},
		{Name: "Classic Loafer", Brand: "Clarks", Category: "Shoes", Price: 6000, StockQuantity: 3},
		{Name: "Denim Jacket", Brand: "Levis", Category: "Jackets", Price: 3500, Badge: model.BadgeSale, StockQuantity: 8},
		{Name: "Silk Scarf", Brand: "Gucci", Category: "Accessories", Price: 9000, Featured: true, StockQuantity: 2},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("写入测试数据失败: %v", err)
		}
	}

	// 分类过滤
	products, total, err := svc.List(ctx, &dto.ListProductsQuery{Category: "Shoes"})
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Errorf("shoes = %d/%d, want 2/2", len(products), total)
	}

	// 关键词命中名称/品牌/描述
	products, _, err = svc.List(ctx, &dto.ListProductsQuery{Search: "Nike"})
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Air Runner" {
		t.Errorf("keyword hit = %v, want Air Runner", products)
	}

	// 精选过滤
	featured := true
	_, total, err = svc.List(ctx, &dto.ListProductsQuery{Featured: &featured})
	if err != nil {
		t.Fatalf("精选过滤失败: %v", err)
	}
	if total != 2 {
		t.Errorf("featured = %d, want 2", total)
	}

	// 角标过滤
	products, _, err = svc.List(ctx, &dto.ListProductsQuery{Badge: model.BadgeSale})
	if err != nil {
		t.Fatalf("角标过滤失败: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Denim Jacket" {
		t.Errorf("badge hit = %v, want Denim Jacket", products)
	}

	// 非法角标
	if _, _, err := svc.List(ctx, &dto.ListProductsQuery{Badge: "clearance"}); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}
}

func TestProductService_List_SortAndPaging(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	prices := []float64{300, 100, 200}
	for i, p := range prices {
		db.Create(&model.Product{Name: "P", Category: "C", Price: p, Rating: float64(i)})
	}

	products, _, err := svc.List(ctx, &dto.ListProductsQuery{Sort: repository.SortPriceLow})
	if err != nil {
		t.Fatalf("排序失败: %v", err)
	}
	if products[0].Price != 100 || products[2].Price != 300 {
		t.Errorf("price-low order = %v/%v, want 100..300", products[0].Price, products[2].Price)
	}

	products, _, err = svc.List(ctx, &dto.ListProductsQuery{Sort: repository.SortPriceHigh})
	if err != nil {
		t.Fatalf("排序失败: %v", err)
	}
	if products[0].Price != 300 {
		t.Errorf("price-high first = %v, want 300", products[0].Price)
	}

	products, _, err = svc.List(ctx, &dto.ListProductsQuery{Sort: repository.SortRating})
	if err != nil {
		t.Fatalf("排序失败: %v", err)
	}
	if products[0].Rating != 2 {
		t.Errorf("rating first = %v, want 2", products[0].Rating)
	}

	// 分页
	products, total, err := svc.List(ctx, &dto.ListProductsQuery{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if total != 3 || len(products) != 1 {
		t.Errorf("page 2 = %d/%d, want 1/3", len(products), total)
	}
}

// ==================== 专区 ====================

func TestProductService_Sections(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	old := time.Now().Add(-30 * 24 * time.Hour)
	db.Create(&model.Product{Name: "Old Plain", Category: "C", Price: 100})
	db.Model(&model.Product{}).Where("name = ?", "Old Plain").Update("created_at", old)

	db.Create(&model.Product{Name: "Old Badged", Category: "C", Price: 100, Badge: model.BadgeNew})
	db.Model(&model.Product{}).Where("name = ?", "Old Badged").Update("created_at", old)

	db.Create(&model.Product{Name: "Fresh", Category: "C", Price: 100})
	db.Create(&model.Product{Name: "Discounted", Category: "C", Price: 80, OriginalPrice: floatPtr(120)})
	db.Create(&model.Product{Name: "Starred", Category: "C", Price: 100, Featured: true})

	// 新品：badge=new 或最近上架
	arrivals, err := svc.ListNewArrivals(ctx, 10)
	if err != nil {
		t.Fatalf("新品失败: %v", err)
	}
	names := map[string]bool{}
	for _, p := range arrivals {
		names[p.Name] = true
	}
	if !names["Old Badged"] || !names["Fresh"] || names["Old Plain"] {
		t.Errorf("new arrivals = %v, want badged + fresh only", names)
	}

	// 促销：badge=sale 或设置了原价
	sale, err := svc.ListOnSale(ctx, 10)
	if err != nil {
		t.Fatalf("促销失败: %v", err)
	}
	if len(sale) != 1 || sale[0].Name != "Discounted" {
		t.Errorf("sale = %v, want Discounted", sale)
	}
	if !sale[0].IsOnSale() {
		t.Error("IsOnSale should be true when original price exceeds price")
	}

	featured, err := svc.ListFeatured(ctx, 10)
	if err != nil {
		t.Fatalf("精选失败: %v", err)
	}
	if len(featured) != 1 || featured[0].Name != "Starred" {
		t.Errorf("featured = %v, want Starred", featured)
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("分类失败: %v", err)
	}
	if len(categories) != 1 || categories[0] != "C" {
		t.Errorf("categories = %v, want [C]", categories)
	}
}

// ==================== 搜索 ====================

func TestProductService_Search_Ranking(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Plain Tee", Brand: "Safari", Category: "C", Price: 100})
	db.Create(&model.Product{Name: "Safari Boot", Brand: "Timberland", Category: "C", Price: 100})
	db.Create(&model.Product{Name: "Trail Sandal", Brand: "C", Category: "C", Price: 100, Description: "safari ready"})

	results, err := svc.Search(ctx, "Safari", 10)
	if err != nil {
		t.Fatalf("搜索失败: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	// 名称命中最前，品牌其次
	if results[0].Name != "Safari Boot" {
		t.Errorf("first = %s, want Safari Boot", results[0].Name)
	}
	if results[1].Name != "Plain Tee" {
		t.Errorf("second = %s, want Plain Tee (brand match)", results[1].Name)
	}

	if _, err := svc.Search(ctx, "   ", 10); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("err = %v, want validation for empty keyword", err)
	}
}

// ==================== 管理端 ====================

func TestProductService_CreateUpdateDelete(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	product, err := svc.Create(ctx, &dto.CreateProductForm{
		Name:          "Canvas Sneaker",
		Price:         2500,
		Category:      "Shoes",
		Sizes:         `["40","41","42"]`,
		Colors:        `["white","black"]`,
		StockQuantity: 10,
	}, "/uploads/products/abc.jpg")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if product.ImageURL != "/uploads/products/abc.jpg" {
		t.Errorf("image = %s, want uploaded url", product.ImageURL)
	}
	if len(product.Sizes) != 3 || product.Sizes[0] != "40" {
		t.Errorf("sizes = %v, want parsed list", product.Sizes)
	}

	// JSON 数组字段格式错误
	_, err = svc.Create(ctx, &dto.CreateProductForm{
		Name: "Bad", Price: 1, Category: "C", Sizes: "40,41",
	}, "")
	if !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}

	// 部分更新
	newPrice := 2000.0
	badge := model.BadgeSale
	updated, err := svc.Update(ctx, product.ID, &dto.UpdateProductForm{
		Price: &newPrice,
		Badge: &badge,
	}, "")
	if err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if updated.Price != 2000 || updated.Badge != model.BadgeSale {
		t.Errorf("updated = %v/%s, want 2000/sale", updated.Price, updated.Badge)
	}
	if updated.Name != "Canvas Sneaker" {
		t.Errorf("name = %s, 未提交字段不应被修改", updated.Name)
	}

	if _, err := svc.Update(ctx, 999, &dto.UpdateProductForm{}, ""); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	// 删除连同收藏记录
	db.Create(&model.WishlistItem{UserID: 1, ProductID: product.ID})
	if err := svc.Delete(ctx, product.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	var wishCount int64
	db.Model(&model.WishlistItem{}).Where("product_id = ?", product.ID).Count(&wishCount)
	if wishCount != 0 {
		t.Errorf("wishlist rows = %d, want 0", wishCount)
	}
	if err := svc.Delete(ctx, product.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("err = %v, want not found on second delete", err)
	}
}

func TestProductService_Rate(t *testing.T) {
	db := setupProductTestDB(t)
	svc := newProductTestService(db)
	ctx := context.Background()

	product, err := svc.Create(ctx, &dto.CreateProductForm{Name: "Tee", Price: 500, Category: "C"}, "")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	rated, err := svc.Rate(ctx, product.ID, 4)
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}
	if rated.ReviewCount != 1 || rated.Rating != 4 {
		t.Errorf("after first rate = %v/%d, want 4/1", rated.Rating, rated.ReviewCount)
	}

	rated, err = svc.Rate(ctx, product.ID, 2)
	if err != nil {
		t.Fatalf("评分失败: %v", err)
	}
	if rated.ReviewCount != 2 || rated.Rating != 3 {
		t.Errorf("after second rate = %v/%d, want 3/2 (running average)", rated.Rating, rated.ReviewCount)
	}

	if _, err := svc.Rate(ctx, product.ID, 6); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}
	if _, err := svc.Rate(ctx, 999, 3); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
