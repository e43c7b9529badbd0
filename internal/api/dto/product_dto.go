package dto

// ==================== 查询参数 ====================

// ListProductsQuery 商品列表查询参数
type ListProductsQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Featured *bool  `form:"featured"`
	Badge    string `form:"badge"`
}

// ==================== 管理端表单 ====================

// CreateProductForm 创建商品（multipart 表单，数组字段为 JSON 字符串）
type CreateProductForm struct {
	Name          string   `form:"name" binding:"required"`
	Description   string   `form:"description"`
	Price         float64  `form:"price" binding:"required,gte=0"`
	OriginalPrice *float64 `form:"original_price"`
	Category      string   `form:"category" binding:"required"`
	Subcategory   string   `form:"subcategory"`
	Brand         string   `form:"brand"`
	ImageURL      string   `form:"image_url"`
	ImageGallery  string   `form:"image_gallery"`
	Sizes         string   `form:"sizes"`
	Colors        string   `form:"colors"`
	StockQuantity int      `form:"stock_quantity" binding:"gte=0"`
	Featured      bool     `form:"featured"`
	Badge         string   `form:"badge"`
}

// UpdateProductForm 更新商品，只更新提交的字段
type UpdateProductForm struct {
	Name          *string  `form:"name"`
	Description   *string  `form:"description"`
	Price         *float64 `form:"price"`
	OriginalPrice *float64 `form:"original_price"`
	Category      *string  `form:"category"`
	Subcategory   *string  `form:"subcategory"`
	Brand         *string  `form:"brand"`
	ImageURL      *string  `form:"image_url"`
	ImageGallery  *string  `form:"image_gallery"`
	Sizes         *string  `form:"sizes"`
	Colors        *string  `form:"colors"`
	StockQuantity *int     `form:"stock_quantity"`
	Featured      *bool    `form:"featured"`
	Badge         *string  `form:"badge"`
}

// RateProductRequest 商品评分请求
type RateProductRequest struct {
	Rating float64 `json:"rating" binding:"required,gte=0,lte=5"`
}
