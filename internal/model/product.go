package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 商品徽章常量 ====================

// Badge 商品营销标签，决定 new-arrivals / sale 等列表的归属
const (
	BadgeNone = ""
	BadgeNew  = "new"
	BadgeSale = "sale"
	BadgeHot  = "hot"
)

// ValidBadge 校验徽章取值
func ValidBadge(badge string) bool {
	switch badge {
	case BadgeNone, BadgeNew, BadgeSale, BadgeHot:
		return true
	}
	return false
}

// ==================== Product 商品主表 ====================

// Product 商品
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// 价格，original_price 仅在打折展示时存在
	Price         float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	OriginalPrice *float64 `gorm:"type:decimal(10,2)" json:"original_price,omitempty"`

	// 分类
	Category    string `gorm:"size:100;not null;index" json:"category"`
	Subcategory string `gorm:"size:100" json:"subcategory"`
	Brand       string `gorm:"size:100" json:"brand"`

	// 图片
	ImageURL     string                      `gorm:"size:500" json:"image_url"`
	ImageGallery datatypes.JSONSlice[string] `json:"image_gallery"`

	// 规格（无序字符串集合）
	Sizes  datatypes.JSONSlice[string] `json:"sizes"`
	Colors datatypes.JSONSlice[string] `json:"colors"`

	// 库存，只允许订单生命周期修改
	StockQuantity int `gorm:"default:0" json:"stock_quantity"`

	// 营销
	Featured bool   `gorm:"default:false;index" json:"featured"`
	Badge    string `gorm:"size:10;default:'';index" json:"badge"`

	// 评分聚合，review_count 单调不减
	Rating      float64 `gorm:"type:decimal(2,1);default:0.0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// IsOnSale 是否属于促销列表（badge=sale 或存在原价）
func (p *Product) IsOnSale() bool {
	return p.Badge == BadgeSale || p.OriginalPrice != nil
}

// ==================== WishlistItem 收藏 ====================

// WishlistItem 用户收藏，(user, product) 唯一
type WishlistItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (WishlistItem) TableName() string {
	return "wishlist"
}
