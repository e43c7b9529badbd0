package controller

import (
	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/service"
)

type AuthController struct {
	authService   *service.AuthService
	uploadService *service.UploadService
}

func NewAuthController(authService *service.AuthService, uploadService *service.UploadService) *AuthController {
	return &AuthController{
		authService:   authService,
		uploadService: uploadService,
	}
}

// ==================== 注册 / 登录 ====================

// Register 注册
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := ctrl.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, resp)
}

// Login 登录
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	resp, err := ctrl.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// ==================== 个人资料 ====================

// GetProfile 获取当前用户资料
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}
	respondOK(c, user)
}

// UpdateProfile 更新当前用户资料
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := ctrl.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}

// ChangePassword 修改密码
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := ctrl.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "password updated")
}

// UploadAvatar 上传头像
func (ctrl *AuthController) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, errs.Authf("authentication required"))
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		respondError(c, errs.Validationf("avatar file is required"))
		return
	}

	url, err := ctrl.uploadService.SaveImage(c.Request.Context(), file, service.UploadAvatar)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := ctrl.authService.UpdateAvatar(c.Request.Context(), userID, url)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user)
}
