package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kibanda_backend/internal/controller"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
	"kibanda_backend/internal/router"
	"kibanda_backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试环境 ====================

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// setupAPITest 装配完整依赖链：sqlite 内存库 + 真实仓储/服务/控制器
func setupAPITest(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.Product{}, &model.WishlistItem{},
		&model.Order{}, &model.OrderItem{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	storage, err := service.NewLocalStorage(&service.StorageConfig{UploadDir: t.TempDir()})
	if err != nil {
		t.Fatalf("初始化本地存储失败: %v", err)
	}
	uploadSvc := service.NewUploadService(storage)

	authSvc := service.NewAuthService(userRepo)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo,
		service.ShippingPolicy{FreeThreshold: 5000, Fee: 300})
	userSvc := service.NewUserService(userRepo, productRepo)
	adminSvc := service.NewAdminService(productRepo, orderRepo, userRepo)

	r := gin.New()
	router.InitRoutes(r, &router.Controllers{
		Auth:    controller.NewAuthController(authSvc, uploadSvc),
		Product: controller.NewProductController(productSvc, uploadSvc),
		Order:   controller.NewOrderController(orderSvc),
		User:    controller.NewUserController(userSvc),
		Admin:   controller.NewAdminController(adminSvc),
	}, router.Options{Users: userRepo})

	return &testEnv{db: db, router: r}
}

func (e *testEnv) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v / %s", err, w.Body.String())
	}
	return body
}

// registerUser 注册并返回令牌
func (e *testEnv) registerUser(t *testing.T, email, password string) string {
	w := e.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Test User", "email": email, "password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("注册失败: %d %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	return body["data"].(map[string]interface{})["token"].(string)
}

// makeAdmin 把邮箱对应的用户提升为管理员
func (e *testEnv) makeAdmin(t *testing.T, email string) {
	if err := e.db.Model(&model.User{}).Where("email = ?", email).
		Update("role", model.RoleAdmin).Error; err != nil {
		t.Fatalf("提升管理员失败: %v", err)
	}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64, stock int) *model.Product {
	p := &model.Product{Name: name, Price: price, Category: "Shoes", StockQuantity: stock}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("写入商品失败: %v", err)
	}
	return p
}

// ==================== 测试 ====================

func TestAPI_HealthAndPublicCatalog(t *testing.T) {
	env := setupAPITest(t)
	env.seedProduct(t, "Air Runner", 4500, 5)

	w := env.request(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 1)
	pagination := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])

	// 详情与 404
	w = env.request(http.MethodGet, "/api/products/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.request(http.MethodGet, "/api/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestAPI_AuthFlow(t *testing.T) {
	env := setupAPITest(t)

	token := env.registerUser(t, "wanjiku@example.com", "secret123")

	// 登录
	w := env.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "wanjiku@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 错误凭证
	w = env.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "wanjiku@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 请求体缺字段被 binding 拦截
	w = env.request(http.MethodPost, "/api/auth/register", "", gin.H{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 鉴权路由
	w = env.request(http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.request(http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	profile := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "wanjiku@example.com", profile["email"])
	// 密码字段绝不下发
	_, hasPassword := profile["password"]
	assert.False(t, hasPassword)
}

func TestAPI_OrderFlow(t *testing.T) {
	env := setupAPITest(t)
	product := env.seedProduct(t, "Jacket", 2000, 5)
	token := env.registerUser(t, "buyer@example.com", "secret123")

	// 未登录下单被拒
	w := env.request(http.MethodPost, "/api/orders", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 下单
	w = env.request(http.MethodPost, "/api/orders", token, gin.H{
		"items":           []gin.H{{"productId": product.ID, "quantity": 2}},
		"shippingAddress": "12 Moi Avenue, Nairobi",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 4300, data["totalAmount"]) // 4000 + 300 运费
	orderID := int64(data["orderId"].(float64))

	// 结构化地址同样可用
	w = env.request(http.MethodPost, "/api/orders", token, gin.H{
		"items":           []gin.H{{"productId": product.ID, "quantity": 1}},
		"shippingAddress": gin.H{"street": "Moi Avenue", "city": "Nairobi"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// 库存不足
	w = env.request(http.MethodPost, "/api/orders", token, gin.H{
		"items":           []gin.H{{"productId": product.ID, "quantity": 10}},
		"shippingAddress": "Nairobi",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 我的订单
	w = env.request(http.MethodGet, "/api/orders/my-orders", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 2)

	// 取消并回补库存
	w = env.request(http.MethodPut, "/api/orders/1/cancel", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var p model.Product
	env.db.First(&p, product.ID)
	assert.Equal(t, 4, p.StockQuantity) // 5 - 2 - 1 + 2

	// 他人订单不可见
	otherToken := env.registerUser(t, "other@example.com", "secret123")
	w = env.request(http.MethodGet, "/api/orders/1", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_ = orderID
}

func TestAPI_AdminGate(t *testing.T) {
	env := setupAPITest(t)
	product := env.seedProduct(t, "Jacket", 2000, 5)

	customerToken := env.registerUser(t, "customer@example.com", "secret123")
	adminToken := env.registerUser(t, "admin@example.com", "secret123")
	env.makeAdmin(t, "admin@example.com")

	// 普通用户被管理路由拒绝
	w := env.request(http.MethodGet, "/api/admin/stats", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.request(http.MethodDelete, "/api/admin/products/1", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员下单后看概览
	w = env.request(http.MethodPost, "/api/orders", adminToken, gin.H{
		"items":           []gin.H{{"productId": product.ID, "quantity": 1}},
		"shippingAddress": "Nairobi",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	orderData := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := int(orderData["orderId"].(float64))

	w = env.request(http.MethodPut, "/api/admin/orders/1/payment", adminToken,
		gin.H{"payment_status": "paid"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodGet, "/api/admin/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_products"])
	assert.EqualValues(t, 1, stats["total_orders"])
	assert.EqualValues(t, 2, stats["total_users"])
	assert.EqualValues(t, 2300, stats["total_revenue"])

	// 状态机经 HTTP 生效：pending→shipped 被拒，pending→confirmed 通过
	w = env.request(http.MethodPut, "/api/admin/orders/1/status", adminToken,
		gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.request(http.MethodPut, "/api/admin/orders/1/status", adminToken,
		gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)
	_ = orderID
}

func TestAPI_Wishlist(t *testing.T) {
	env := setupAPITest(t)
	product := env.seedProduct(t, "Jacket", 2000, 5)
	token := env.registerUser(t, "buyer@example.com", "secret123")

	w := env.request(http.MethodPost, "/api/users/wishlist/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodGet, "/api/users/wishlist", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 1)

	w = env.request(http.MethodGet, "/api/users/wishlist/1/check", token, nil)
	check := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, check["in_wishlist"])

	w = env.request(http.MethodDelete, "/api/users/wishlist/1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.request(http.MethodDelete, "/api/users/wishlist/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_ = product
}
