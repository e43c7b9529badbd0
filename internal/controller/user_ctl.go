package controller

import (
	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/service"
)

type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ==================== 收藏 ====================

// ListWishlist 收藏列表
func (ctrl *UserController) ListWishlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	products, err := ctrl.userService.ListWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// AddToWishlist 加入收藏
func (ctrl *UserController) AddToWishlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.userService.AddToWishlist(c.Request.Context(), userID, productID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "added to wishlist")
}

// RemoveFromWishlist 移出收藏
func (ctrl *UserController) RemoveFromWishlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.userService.RemoveFromWishlist(c.Request.Context(), userID, productID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "removed from wishlist")
}

// CheckWishlist 检查商品是否已收藏
func (ctrl *UserController) CheckWishlist(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	productID, err := parseIDParam(c, "productId")
	if err != nil {
		respondError(c, err)
		return
	}

	in, err := ctrl.userService.InWishlist(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"in_wishlist": in})
}

// ==================== 统计 ====================

// GetStats 当前用户的订单与收藏统计
func (ctrl *UserController) GetStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	stats, err := ctrl.userService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// ==================== 管理端 ====================

// ListUsers 用户列表（管理端）
func (ctrl *UserController) ListUsers(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, err)
		return
	}

	users, total, err := ctrl.userService.List(c.Request.Context(), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, users, NewPagination(q.Page, q.Limit, total))
}

// UpdateUserRole 更新用户角色（管理端）
func (ctrl *UserController) UpdateUserRole(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := ctrl.userService.UpdateRole(c.Request.Context(), targetID, req.Role, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// DeleteUser 删除用户（管理端）
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.userService.Delete(c.Request.Context(), targetID, actor); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "user deleted")
}
