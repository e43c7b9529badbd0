package dto

import "encoding/json"

// ==================== 请求 ====================

// OrderItemInput 下单条目
type OrderItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// ShippingAddress 收货地址，接受字符串或 JSON 对象，统一归一化为字符串
type ShippingAddress string

func (a *ShippingAddress) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = ShippingAddress(s)
		return nil
	}

	// 结构化地址：原样序列化一次，之后业务层只见字符串
	var obj map[string]interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	normalized, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	*a = ShippingAddress(normalized)
	return nil
}

func (a ShippingAddress) String() string {
	return string(a)
}

// CustomerInfo 客户联系方式快照，缺省回退到登录用户资料
type CustomerInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddress  `json:"shippingAddress" binding:"required"`
	PaymentMethod   string           `json:"paymentMethod"`
	CustomerInfo    *CustomerInfo    `json:"customerInfo"`
}

// UpdateOrderStatusRequest 状态流转请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdatePaymentStatusRequest 支付状态更新请求
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// ListOrdersQuery 订单列表查询参数
type ListOrdersQuery struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Status    string `form:"status"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// ==================== 响应 ====================

// CreateOrderResponse 创建订单响应
type CreateOrderResponse struct {
	OrderID     int64   `json:"orderId"`
	OrderNumber string  `json:"orderNumber"`
	TotalAmount float64 `json:"totalAmount"`
}
