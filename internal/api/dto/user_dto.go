package dto

import "kibanda_backend/internal/model"

// ==================== 认证 ====================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// ==================== 资料 ====================

// UpdateProfileRequest 更新资料，只更新提交的字段
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ChangePasswordRequest 修改密码，必须先校验当前密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ==================== 管理端 ====================

// ListUsersQuery 用户列表查询参数
type ListUsersQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

// UpdateRoleRequest 更新用户角色
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
