package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kibanda_backend/internal/controller"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/model"
)

// Controllers 路由依赖的所有控制器
type Controllers struct {
	Auth    *controller.AuthController
	Product *controller.ProductController
	Order   *controller.OrderController
	User    *controller.UserController
	Admin   *controller.AdminController
}

// Options 路由选项
type Options struct {
	// UploadDir 非空时挂载 /uploads 静态目录（本地存储）
	UploadDir string
	// Users 供鉴权中间件按 token 加载用户
	Users middleware.UserProvider
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctrls *Controllers, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if opts.UploadDir != "" {
		r.Static("/uploads", opts.UploadDir)
	}

	authed := middleware.JWTAuth(opts.Users)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctrls.Auth.Register)
			auth.POST("/login", ctrls.Auth.Login)

			auth.GET("/profile", authed, ctrls.Auth.GetProfile)
			auth.PUT("/profile", authed, ctrls.Auth.UpdateProfile)
			auth.PUT("/password", authed, ctrls.Auth.ChangePassword)
			auth.POST("/avatar", authed, ctrls.Auth.UploadAvatar)
		}

		// product 商品组，列表与详情公开
		products := api.Group("/products")
		{
			products.GET("", ctrls.Product.ListProducts)
			products.GET("/search", ctrls.Product.SearchProducts)
			products.GET("/categories", ctrls.Product.ListCategories)
			products.GET("/featured", ctrls.Product.ListFeatured)
			products.GET("/new-arrivals", ctrls.Product.ListNewArrivals)
			products.GET("/sale", ctrls.Product.ListOnSale)
			products.GET("/category/:category", ctrls.Product.ListByCategory)
			products.GET("/:id", ctrls.Product.GetProduct)

			products.POST("/:id/rate", authed, ctrls.Product.RateProduct)
		}

		// order 订单组
		orders := api.Group("/orders", authed)
		{
			orders.POST("", ctrls.Order.CreateOrder)
			orders.GET("/my-orders", ctrls.Order.ListMyOrders)
			orders.GET("/:id", ctrls.Order.GetOrder)
			orders.PUT("/:id/cancel", ctrls.Order.CancelOrder)
		}

		// user 用户组：收藏与统计
		users := api.Group("/users", authed)
		{
			users.GET("/wishlist", ctrls.User.ListWishlist)
			users.POST("/wishlist/:productId", ctrls.User.AddToWishlist)
			users.DELETE("/wishlist/:productId", ctrls.User.RemoveFromWishlist)
			users.GET("/wishlist/:productId/check", ctrls.User.CheckWishlist)
			users.GET("/stats", ctrls.User.GetStats)
		}

		// admin 管理组
		admin := api.Group("/admin", authed, adminOnly)
		{
			admin.GET("/stats", ctrls.Admin.GetDashboard)

			admin.POST("/products", ctrls.Product.CreateProduct)
			admin.PUT("/products/:id", ctrls.Product.UpdateProduct)
			admin.DELETE("/products/:id", ctrls.Product.DeleteProduct)

			admin.GET("/orders", ctrls.Order.ListOrders)
			admin.GET("/orders/stats", ctrls.Order.GetSalesStats)
			admin.PUT("/orders/:id/status", ctrls.Order.UpdateOrderStatus)
			admin.PUT("/orders/:id/payment", ctrls.Order.UpdatePaymentStatus)

			admin.GET("/users", ctrls.User.ListUsers)
			admin.PUT("/users/:id/role", ctrls.User.UpdateUserRole)
			admin.DELETE("/users/:id", ctrls.User.DeleteUser)
		}
	}
}
