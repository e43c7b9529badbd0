package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/errs"
)

// ==================== 统一响应 ====================

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination 计算分页信息
func NewPagination(page, limit int, total int64) *Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// respondOK 成功响应
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// respondCreated 创建成功响应
func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// respondMessage 无数据的成功响应
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// respondList 带分页的列表响应
func respondList(c *gin.Context, data interface{}, p *Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": p})
}

// respondError 错误响应
// 状态码与对外文案由错误类型决定，内部错误细节只进日志
func respondError(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(errs.HTTPStatus(err), gin.H{"success": false, "error": errs.PublicMessage(err)})
}

// respondValidation 请求体绑定失败
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}
