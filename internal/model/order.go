package model

import "time"

// ==================== 订单状态常量 ====================

// OrderStatus 订单状态
const (
	OrderStatusPending   = "pending"   // 待确认
	OrderStatusConfirmed = "confirmed" // 已确认
	OrderStatusShipped   = "shipped"   // 已发货
	OrderStatusDelivered = "delivered" // 已签收（终态）
	OrderStatusCancelled = "cancelled" // 已取消（终态）
)

// PaymentStatus 支付状态
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// ValidOrderStatus 校验订单状态取值
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus 校验支付状态取值
func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// statusTransitions 状态机：只允许前向流转，取消是唯一的旁路
var statusTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
}

// ==================== Order 订单主表 ====================

// Order 订单，创建后永不硬删除
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber string `gorm:"size:50;uniqueIndex;not null" json:"order_number"`

	// 下单用户，用户删除后置空保留订单
	UserID *int64 `gorm:"index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`

	// 下单时的客户快照，与用户表解耦
	CustomerEmail string `gorm:"size:255;not null" json:"customer_email"`
	CustomerName  string `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`

	// 收货地址，边界层归一化为字符串存储
	ShippingAddress string `gorm:"type:text;not null" json:"shipping_address"`

	// 金额，total_amount == subtotal + shipping_fee，创建后不变
	Subtotal    float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	ShippingFee float64 `gorm:"type:decimal(10,2);default:0" json:"shipping_fee"`
	TotalAmount float64 `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Status        string `gorm:"size:20;index;default:pending" json:"status"`
	PaymentMethod string `gorm:"size:50" json:"payment_method"`
	PaymentStatus string `gorm:"size:20;default:pending" json:"payment_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 订单项快照
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (*Order) TableName() string {
	return "orders"
}

// IsTerminal 是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// CanTransitionTo 状态机校验
func (o *Order) CanTransitionTo(next string) bool {
	for _, s := range statusTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// IsOwnedBy 是否属于指定用户
func (o *Order) IsOwnedBy(userID int64) bool {
	return o.UserID != nil && *o.UserID == userID
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项：下单时刻的商品快照，商品后续变更不回溯历史订单
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"index;not null" json:"order_id"`

	// 商品引用 + 快照字段
	ProductID int64   `gorm:"index" json:"product_id"`
	Name      string  `gorm:"size:255;not null" json:"name"`
	Price     float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Image     string  `gorm:"size:500" json:"image"`
	ItemTotal float64 `gorm:"type:decimal(10,2);not null" json:"item_total"`

	CreatedAt time.Time `json:"created_at"`
}

func (*OrderItem) TableName() string {
	return "order_items"
}
