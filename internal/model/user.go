package model

import "time"

// ==================== 角色常量 ====================

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// ValidRole 校验角色取值
func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

// ==================== User 用户 ====================

// User 用户账号
type User struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`

	// 哈希密码，永不序列化到响应
	Password string `gorm:"size:255;not null" json:"-"`

	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"type:text" json:"address"`
	Avatar  string `gorm:"size:500" json:"avatar"`

	Role string `gorm:"size:20;default:customer" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
