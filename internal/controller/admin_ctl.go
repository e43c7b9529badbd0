package controller

import (
	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/service"
)

type AdminController struct {
	adminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{adminService: adminService}
}

// GetDashboard 管理端概览
func (ctrl *AdminController) GetDashboard(c *gin.Context) {
	stats, err := ctrl.adminService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}
