package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/service"
)

type ProductController struct {
	productService *service.ProductService
	uploadService  *service.UploadService
}

func NewProductController(productService *service.ProductService, uploadService *service.UploadService) *ProductController {
	return &ProductController{
		productService: productService,
		uploadService:  uploadService,
	}
}

// ==================== 查询接口 ====================

// ListProducts 商品列表
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	var q dto.ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, err)
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), &q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, products, NewPagination(q.Page, q.Limit, total))
}

// GetProduct 商品详情
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// SearchProducts 关键词搜索
func (ctrl *ProductController) SearchProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	products, err := ctrl.productService.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// ListCategories 分类列表
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

// ListFeatured 精选商品
func (ctrl *ProductController) ListFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	products, err := ctrl.productService.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// ListNewArrivals 新品
func (ctrl *ProductController) ListNewArrivals(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	products, err := ctrl.productService.ListNewArrivals(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// ListOnSale 促销商品
func (ctrl *ProductController) ListOnSale(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	products, err := ctrl.productService.ListOnSale(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// ListByCategory 按分类取商品
func (ctrl *ProductController) ListByCategory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	products, err := ctrl.productService.ListByCategory(c.Request.Context(), c.Param("category"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, products)
}

// RateProduct 提交评分
func (ctrl *ProductController) RateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.RateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	product, err := ctrl.productService.Rate(c.Request.Context(), id, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// ==================== 管理端 ====================

// CreateProduct 创建商品（multipart 表单，可附带图片）
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var form dto.CreateProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}

	imageURL, err := ctrl.saveFormImage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), &form, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, product)
}

// UpdateProduct 更新商品
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var form dto.UpdateProductForm
	if err := c.ShouldBind(&form); err != nil {
		respondValidation(c, err)
		return
	}

	imageURL, err := ctrl.saveFormImage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), id, &form, imageURL)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, product)
}

// DeleteProduct 删除商品
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "product deleted")
}

// saveFormImage 保存表单里的可选商品图片，未提交时返回空串
func (ctrl *ProductController) saveFormImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	return ctrl.uploadService.SaveImage(c.Request.Context(), file, service.UploadProductImage)
}

// parseIDParam 解析路径里的数字ID
func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Validationf("invalid %s", name)
	}
	return id, nil
}
