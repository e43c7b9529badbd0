package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kibanda_backend/internal/api/dto"
	"kibanda_backend/internal/errs"
	"kibanda_backend/internal/middleware"
	"kibanda_backend/internal/model"
	"kibanda_backend/internal/repository"
)

// ==================== 测试辅助 ====================

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func newAuthTestService(db *gorm.DB) *AuthService {
	return NewAuthService(repository.NewUserRepository(db))
}

// ==================== 注册 / 登录 ====================

func TestAuthService_Register(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:     "Wanjiku",
		Email:    "Wanjiku@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if resp.Token == "" {
		t.Error("注册应返回令牌")
	}
	// 邮箱归一化为小写
	if resp.User.Email != "wanjiku@example.com" {
		t.Errorf("email = %s, want lowercase", resp.User.Email)
	}
	if resp.User.Role != model.RoleCustomer {
		t.Errorf("role = %s, want customer", resp.User.Role)
	}
	// 密码必须存哈希
	if resp.User.Password == "secret123" {
		t.Error("密码不应明文存储")
	}
	if bcrypt.CompareHashAndPassword([]byte(resp.User.Password), []byte("secret123")) != nil {
		t.Error("存储的哈希应能校验原密码")
	}

	// 令牌能解析回用户ID
	claims, err := middleware.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("解析令牌失败: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("claims user_id = %d, want %d", claims.UserID, resp.User.ID)
	}

	// 重复邮箱（大小写不同也算重复）
	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Name: "Other", Email: "WANJIKU@example.com", Password: "another1",
	})
	if !errs.IsKind(err, errs.KindConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(db)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Wanjiku", Email: "wanjiku@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "wanjiku@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}
	if resp.Token == "" {
		t.Error("登录应返回令牌")
	}

	// 密码错误与用户不存在给同一文案，不暴露账号是否存在
	_, errWrongPass := svc.Login(ctx, &dto.LoginRequest{Email: "wanjiku@example.com", Password: "wrong"})
	_, errNoUser := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	for _, err := range []error{errWrongPass, errNoUser} {
		if !errs.IsKind(err, errs.KindAuth) {
			t.Errorf("err = %v, want auth error", err)
		}
	}
	if errWrongPass.Error() != errNoUser.Error() {
		t.Error("两种失败应返回相同文案")
	}
}

// ==================== 资料与密码 ====================

func TestAuthService_UpdateProfile(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Wanjiku", Email: "wanjiku@example.com", Password: "secret123", Phone: "0711",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	newName := "Wanjiku N."
	newAddress := "Westlands, Nairobi"
	user, err := svc.UpdateProfile(ctx, resp.User.ID, &dto.UpdateProfileRequest{
		Name:    &newName,
		Address: &newAddress,
	})
	if err != nil {
		t.Fatalf("更新资料失败: %v", err)
	}
	if user.Name != "Wanjiku N." || user.Address != "Westlands, Nairobi" {
		t.Errorf("profile = %s/%s, want updated", user.Name, user.Address)
	}
	// 未提交字段不变
	if user.Phone != "0711" {
		t.Errorf("phone = %s, want unchanged", user.Phone)
	}

	empty := "  "
	if _, err := svc.UpdateProfile(ctx, resp.User.ID, &dto.UpdateProfileRequest{Name: &empty}); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("err = %v, want validation for blank name", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(db)
	ctx := context.Background()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Wanjiku", Email: "wanjiku@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	// 当前密码错误时拒绝
	err = svc.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "newpass123",
	})
	if !errs.IsKind(err, errs.KindAuth) {
		t.Errorf("err = %v, want auth error", err)
	}

	if err := svc.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "newpass123",
	}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "wanjiku@example.com", Password: "newpass123"}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "wanjiku@example.com", Password: "secret123"}); err == nil {
		t.Error("旧密码不应再可用")
	}
}

// ==================== 管理员引导 ====================

func TestAuthService_EnsureAdmin(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthTestService(db)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "Boss", "admin@kibanda.co.ke", "admin123"); err != nil {
		t.Fatalf("管理员引导失败: %v", err)
	}

	var admin model.User
	if err := db.Where("email = ?", "admin@kibanda.co.ke").First(&admin).Error; err != nil {
		t.Fatalf("管理员未创建: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("role = %s, want admin", admin.Role)
	}

	// 重复执行幂等，不覆盖已有账号
	if err := svc.EnsureAdmin(ctx, "Other", "admin@kibanda.co.ke", "changed456"); err != nil {
		t.Fatalf("二次引导失败: %v", err)
	}
	var count int64
	db.Model(&model.User{}).Where("email = ?", "admin@kibanda.co.ke").Count(&count)
	if count != 1 {
		t.Errorf("admins = %d, want 1", count)
	}
	var again model.User
	db.Where("email = ?", "admin@kibanda.co.ke").First(&again)
	if bcrypt.CompareHashAndPassword([]byte(again.Password), []byte("admin123")) != nil {
		t.Error("已有管理员密码不应被覆盖")
	}

	// 未配置凭据时静默跳过
	if err := svc.EnsureAdmin(ctx, "", "", ""); err != nil {
		t.Errorf("空配置应跳过: %v", err)
	}
}
