package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kibanda_backend/internal/config"
	"kibanda_backend/internal/controller"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
	"kibanda_backend/internal/router"
	"kibanda_backend/internal/service"
	"kibanda_backend/pkg/database"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(cfg, db)

	// 4. 启动时幂等创建管理员
	if err := deps.Services.Auth.EnsureAdmin(context.Background(),
		cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("管理员初始化失败: %v", err)
	}

	// 5. 初始化路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	uploadDir := ""
	if cfg.Storage.Provider == "local" || cfg.Storage.Provider == "" {
		uploadDir = cfg.Storage.UploadDir
	}
	router.InitRoutes(r, deps.Controllers, router.Options{
		UploadDir: uploadDir,
		Users:     deps.Repos.User,
	})

	// 6. 启动服务
	startServer(cfg, r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Product repository.ProductRepository
	Order   repository.OrderRepository
	User    repository.UserRepository
}

// Services 服务集合
type Services struct {
	Auth    *service.AuthService
	Product *service.ProductService
	Order   *service.OrderService
	User    *service.UserService
	Upload  *service.UploadService
	Admin   *service.AdminService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(
		cfg.Postgres.DSN(),
		cfg.AppEnv != "production",
		&model.User{},
		&model.Product{},
		&model.WishlistItem{},
		&model.Order{},
		&model.OrderItem{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	// JWT 全局配置
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey: cfg.JWT.Secret,
		TokenTTL:  cfg.JWT.TTL,
		Issuer:    cfg.JWT.Issuer,
	})

	// -------- Repo 层 --------
	repos := &Repositories{
		Product: repository.NewProductRepository(db),
		Order:   repository.NewOrderRepository(db),
		User:    repository.NewUserRepository(db),
	}

	// -------- 存储 --------
	storage, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  cfg.Storage.Provider,
		UploadDir: cfg.Storage.UploadDir,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		CDNDomain: cfg.Storage.CDNDomain,
		BasePath:  cfg.Storage.BasePath,
	})
	if err != nil {
		log.Fatalf("存储初始化失败: %v", err)
	}

	// -------- 业务服务 --------
	services := &Services{
		Auth:    service.NewAuthService(repos.User),
		Product: service.NewProductService(repos.Product),
		Order: service.NewOrderService(repos.Order, repos.Product, service.ShippingPolicy{
			FreeThreshold: cfg.Shipping.FreeThreshold,
			Fee:           cfg.Shipping.Fee,
		}),
		User:   service.NewUserService(repos.User, repos.Product),
		Upload: service.NewUploadService(storage),
		Admin:  service.NewAdminService(repos.Product, repos.Order, repos.User),
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:    controller.NewAuthController(services.Auth, services.Upload),
		Product: controller.NewProductController(services.Product, services.Upload),
		Order:   controller.NewOrderController(services.Order),
		User:    controller.NewUserController(services.User),
		Admin:   controller.NewAdminController(services.Admin),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
